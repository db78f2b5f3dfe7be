package twbedit

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/javajack/twbedit/calc"
	"github.com/javajack/twbedit/component"
	"github.com/javajack/twbedit/xmldoc"
)

// DefaultCalculationType is the datatype of a calculation added without one.
const DefaultCalculationType = "string"

// AppendIndex places a new zone after all existing zones.
const AppendIndex = -1

// ZonePlacement controls where AddSheetToDashboard places the new zone.
type ZonePlacement = component.ZonePlacement

// FieldMapping pairs a source field with the target field a filter action
// filters.
type FieldMapping = component.FieldMapping

// ZoneGeometry holds the coordinates MoveZone changes. Nil fields are left
// as they are.
type ZoneGeometry struct {
	X, Y, W, H *int
}

// ConnectionFields holds the connection settings SetConnection changes.
// Nil fields are never written.
type ConnectionFields struct {
	Server *string
	DB     *string
	Schema *string
	Table  *string
}

// RenameField renames a field of a datasource and rewrites references to it:
// ref and column attributes and formulas in the datasource and in every
// worksheet, the field's copies in datasource-dependencies blocks,
// references qualified by the datasource name anywhere in the workbook, and
// filter-action mappings that mention its caption.
//
// Formula text is rewritten by literal replacement of the bracketed name,
// so "[Sales]" inside "[Orders].[Sales]" is rewritten too.
func (wb *Workbook) RenameField(datasource, old, new string) error {
	ds, err := wb.datasource(datasource)
	if err != nil {
		return err
	}
	col, err := wb.column(ds, datasource, old)
	if err != nil {
		return err
	}
	newRef := calc.Bracket(new)
	newCaption := calc.Unbracket(newRef)
	if other := component.FindColumn(ds, newCaption); other != nil && other != col {
		return fmt.Errorf("%w: field %q in datasource %q", ErrExists, newCaption, datasource)
	}

	oldRef := component.EnsureColumnName(col)
	oldCaption := col.SelectAttrValue("caption", "")
	if oldCaption == "" {
		oldCaption = calc.Unbracket(oldRef)
	}
	col.CreateAttr("name", newRef)
	col.CreateAttr("caption", newCaption)

	refs := component.UpdateFieldReference(ds, oldRef, newRef)
	formulas := component.RewriteFormulas(ds, oldRef, newRef)
	for _, name := range component.WorksheetNames(wb.root) {
		ws := component.FindWorksheet(wb.root, name)
		if ws == nil {
			continue
		}
		refs += component.UpdateFieldReference(ws, oldRef, newRef)
		formulas += component.RewriteFormulas(ws, oldRef, newRef)
	}
	dsName := ds.SelectAttrValue("name", datasource)
	deps := component.RenameDependencyColumns(wb.root, dsName, oldRef, newRef, newCaption)
	qualified := component.RewriteQualifiedReferences(wb.root, dsName, oldRef, newRef)
	actions := component.RewriteMappings(wb.root, oldCaption, newCaption)

	wb.log.Debug("rename field",
		"datasource", datasource, "old", oldRef, "new", newRef,
		"references", refs, "formulas", formulas, "dependencies", deps,
		"qualified", qualified, "actions", actions)
	return nil
}

// AddCalculation appends a calculated field to a datasource. The formula is
// stored as given after a parenthesis and field-bracket balance check; it is
// not evaluated. An empty dataType means DefaultCalculationType.
func (wb *Workbook) AddCalculation(datasource, name, formula, dataType string) error {
	if res := calc.Lint(formula); !res.OK {
		return fmt.Errorf("%w: %s", ErrInvalidFormula, res.Message)
	}
	ds, err := wb.datasource(datasource)
	if err != nil {
		return err
	}
	if dataType == "" {
		dataType = DefaultCalculationType
	}
	component.AppendCalculatedColumn(ds, name, formula, dataType)
	wb.log.Debug("add calculation", "datasource", datasource, "name", name, "datatype", dataType)
	return nil
}

// SetParameter creates the named parameter or updates its datatype and
// current value in place. Other attributes of an existing parameter are
// kept.
func (wb *Workbook) SetParameter(name, dataType, value string, opts ...ParameterOption) {
	var o parameterOptions
	for _, opt := range opts {
		opt(&o)
	}
	p := component.FindParameter(wb.root, name)
	created := p == nil
	if created {
		p = component.CreateParameter(wb.root, name, dataType, value)
	} else {
		p.CreateAttr("datatype", dataType)
		p.CreateAttr("current-value", value)
	}
	if o.setAllowable {
		component.SetAllowableValues(p, o.allowable)
	}
	if o.displayFormat != nil {
		p.CreateAttr("display-format", *o.displayFormat)
	}
	wb.log.Debug("set parameter", "name", name, "created", created, "allowable", len(o.allowable))
}

// AddSheetToDashboard places a worksheet zone on a dashboard and returns
// the new zone's id. Index in the placement counts top-level zones; use
// AppendIndex to append.
func (wb *Workbook) AddSheetToDashboard(dashboard, sheet string, at ZonePlacement) (string, error) {
	if component.FindWorksheet(wb.root, sheet) == nil {
		return "", fmt.Errorf("%w: worksheet %q", ErrNotFound, sheet)
	}
	d, err := wb.dashboard(dashboard)
	if err != nil {
		return "", err
	}
	zone := component.AppendSheetZone(d, sheet, wb.ids, at)
	id := zone.SelectAttrValue("id", "")
	wb.log.Debug("add sheet to dashboard", "dashboard", dashboard, "sheet", sheet, "zone", id, "index", at.Index)
	return id, nil
}

// MoveZone updates the supplied coordinates of a zone. The zone may be
// nested in a layout container.
func (wb *Workbook) MoveZone(dashboard, zoneID string, g ZoneGeometry) error {
	d, err := wb.dashboard(dashboard)
	if err != nil {
		return err
	}
	zone := component.FindZone(d, zoneID)
	if zone == nil {
		return fmt.Errorf("%w: zone %q in dashboard %q", ErrNotFound, zoneID, dashboard)
	}
	component.UpdateZoneGeometry(zone, g.X, g.Y, g.W, g.H)
	wb.log.Debug("move zone", "dashboard", dashboard, "zone", zoneID)
	return nil
}

// AddFilterAction appends a filter action from source to target. Existing
// actions are never deduplicated.
func (wb *Workbook) AddFilterAction(source, target string, mapping ...FieldMapping) {
	component.CreateFilterAction(wb.root, source, target, mapping)
	wb.log.Debug("add filter action", "source", source, "target", target, "mapping", component.FormatMapping(mapping))
}

// SetConnection writes the supplied settings onto the datasource's
// connection, creating the connection if needed.
func (wb *Workbook) SetConnection(datasource string, f ConnectionFields) error {
	ds, err := wb.datasource(datasource)
	if err != nil {
		return err
	}
	conn := component.EnsureConnection(ds)
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"server", f.Server},
		{"db", f.DB},
		{"schema", f.Schema},
		{"table", f.Table},
	} {
		if field.value != nil {
			conn.CreateAttr(component.ConnectionAttr(field.name), *field.value)
		}
	}
	wb.log.Debug("set connection", "datasource", datasource)
	return nil
}

// SetFieldFormat sets a field's number format.
func (wb *Workbook) SetFieldFormat(datasource, field, format string) error {
	ds, err := wb.datasource(datasource)
	if err != nil {
		return err
	}
	col, err := wb.column(ds, datasource, field)
	if err != nil {
		return err
	}
	component.SetFormat(col, format)
	wb.log.Debug("set field format", "datasource", datasource, "field", field, "format", format)
	return nil
}

// SetFieldAlias sets a field's display alias.
func (wb *Workbook) SetFieldAlias(datasource, field, alias string) error {
	ds, err := wb.datasource(datasource)
	if err != nil {
		return err
	}
	col, err := wb.column(ds, datasource, field)
	if err != nil {
		return err
	}
	component.SetAlias(col, alias)
	wb.log.Debug("set field alias", "datasource", datasource, "field", field, "alias", alias)
	return nil
}

// DuplicateDashboard copies a dashboard under a new name, right after the
// original. Every id in the copy is replaced by a fresh one.
func (wb *Workbook) DuplicateDashboard(src, newName string) error {
	d, err := wb.dashboard(src)
	if err != nil {
		return err
	}
	if component.FindDashboard(wb.root, newName) != nil {
		return fmt.Errorf("%w: dashboard %q", ErrExists, newName)
	}
	cp := d.Copy()
	cp.CreateAttr("name", newName)
	reminted := 0
	xmldoc.Walk(cp, func(e *etree.Element) {
		if _, ok := xmldoc.Attr(e, "id"); ok {
			xmldoc.EnsureUniqueID(e, wb.ids, component.ZonePrefix)
			reminted++
		}
	})
	d.Parent().InsertChildAt(d.Index()+1, cp)
	wb.log.Debug("duplicate dashboard", "source", src, "name", newName, "ids", reminted)
	return nil
}
