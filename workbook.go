// Package twbedit edits Tableau workbooks (.twb documents and .twbx
// packages) without the authoring application.
//
// A Workbook owns the parsed document tree and the registry of ids used in
// it. Every mutation checks all of its preconditions before changing the
// tree, so a failed call leaves the document as it was. A Workbook is not
// safe for concurrent use.
//
// Basic usage:
//
//	wb, err := twbedit.Open("sales.twbx")
//	if err != nil { ... }
//	if err := wb.RenameField("Orders", "Profit", "Net Profit"); err != nil { ... }
//	if _, err := wb.Save(twbedit.WithPath("sales-edited.twbx")); err != nil { ... }
package twbedit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/javajack/twbedit/component"
	"github.com/javajack/twbedit/extract"
	"github.com/javajack/twbedit/twbx"
	"github.com/javajack/twbedit/xmldoc"
)

// Source records where a workbook was loaded from.
type Source struct {
	Path     string
	Packaged bool
	// Package is the decoded container of a packaged source. Its assets
	// are written back unchanged on save.
	Package *twbx.Package
}

// Workbook is an editable workbook document.
type Workbook struct {
	doc      *etree.Document
	root     *etree.Element
	ids      *xmldoc.Registry
	source   Source
	original snapshot
	log      *slog.Logger
	extracts extract.Inspector
}

// Open loads a .twb or .twbx file.
func Open(path string, opts ...OpenOption) (*Workbook, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	switch {
	case twbx.IsPackagePath(abs):
		pkg, err := twbx.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("open workbook %q: %w", path, err)
		}
		return newWorkbook(pkg.Workbook.Data, Source{Path: abs, Packaged: true, Package: pkg}, opts)
	case twbx.IsDocumentPath(abs):
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("open workbook %q: %w", path, err)
		}
		return newWorkbook(data, Source{Path: abs}, opts)
	default:
		return nil, fmt.Errorf("%w: %q (expected %s or %s)", ErrUnsupportedFormat, path, twbx.DocumentExt, twbx.PackageExt)
	}
}

// Parse loads a bare workbook document from memory. The result has no
// source path, so Save needs WithPath.
func Parse(data []byte, opts ...OpenOption) (*Workbook, error) {
	return newWorkbook(data, Source{}, opts)
}

func newWorkbook(data []byte, src Source, opts []OpenOption) (*Workbook, error) {
	o := defaultOpenOptions()
	for _, opt := range opts {
		opt(o)
	}
	doc, err := xmldoc.Load(data)
	if err != nil {
		return nil, err
	}
	serialized, err := xmldoc.Dump(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	wb := &Workbook{
		doc:      doc,
		root:     doc.Root(),
		ids:      xmldoc.NewRegistry(doc.Root()),
		source:   src,
		original: takeSnapshot(serialized),
		log:      o.logger,
		extracts: o.inspector,
	}
	wb.log.Debug("workbook loaded", "path", src.Path, "packaged", src.Packaged, "bytes", len(data))
	return wb, nil
}

// Source returns where the workbook was loaded from.
func (wb *Workbook) Source() Source { return wb.source }

// Root returns the live root element of the document.
func (wb *Workbook) Root() *etree.Element { return wb.root }

// Worksheets lists worksheet names in document order.
func (wb *Workbook) Worksheets() []string { return component.WorksheetNames(wb.root) }

// Dashboards lists dashboard names in document order.
func (wb *Workbook) Dashboards() []string { return component.DashboardNames(wb.root) }

// Datasources lists datasource names (or captions) in document order.
func (wb *Workbook) Datasources() []string { return component.DatasourceNames(wb.root) }

// Parameters lists parameter names in document order.
func (wb *Workbook) Parameters() []string { return component.ParameterNames(wb.root) }

// Version returns the workbook's version stamp, if any.
func (wb *Workbook) Version() (string, bool) { return component.Version(wb.root) }

// ListZones returns the id of each top-level zone of a dashboard.
func (wb *Workbook) ListZones(dashboard string) ([]string, error) {
	d, err := wb.dashboard(dashboard)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, z := range component.Zones(d) {
		ids = append(ids, z.SelectAttrValue("id", ""))
	}
	return ids, nil
}

// DeviceLayouts returns the device layout names of a dashboard.
func (wb *Workbook) DeviceLayouts(dashboard string) ([]string, error) {
	d, err := wb.dashboard(dashboard)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, l := range component.DeviceLayouts(d) {
		names = append(names, l.SelectAttrValue("name", ""))
	}
	return names, nil
}

// Serialize returns the current document as it would be saved.
func (wb *Workbook) Serialize() ([]byte, error) {
	return xmldoc.Dump(wb.doc)
}

func (wb *Workbook) datasource(name string) (*etree.Element, error) {
	ds := component.FindDatasource(wb.root, name)
	if ds == nil {
		return nil, fmt.Errorf("%w: datasource %q", ErrNotFound, name)
	}
	return ds, nil
}

func (wb *Workbook) column(ds *etree.Element, dsName, field string) (*etree.Element, error) {
	col := component.FindColumn(ds, field)
	if col == nil {
		return nil, fmt.Errorf("%w: field %q in datasource %q", ErrNotFound, field, dsName)
	}
	return col, nil
}

func (wb *Workbook) dashboard(name string) (*etree.Element, error) {
	d := component.FindDashboard(wb.root, name)
	if d == nil {
		return nil, fmt.Errorf("%w: dashboard %q", ErrNotFound, name)
	}
	return d, nil
}
