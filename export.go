package twbedit

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/javajack/twbedit/component"
	"github.com/javajack/twbedit/extract"
)

// Summary is the exported view of a workbook's components.
type Summary struct {
	Version     string                 `json:"version,omitempty"`
	Worksheets  []string               `json:"worksheets"`
	Dashboards  []string               `json:"dashboards"`
	Datasources []string               `json:"datasources"`
	Parameters  []string               `json:"parameters"`
	Fields      map[string][]FieldInfo `json:"fields,omitempty"`
	Assets      []string               `json:"assets,omitempty"`
	Extracts    []extract.Info         `json:"extracts,omitempty"`
}

// Summary collects the names of the workbook's components, the fields of
// each datasource, and any packaged assets.
func (wb *Workbook) Summary() Summary {
	s := Summary{
		Worksheets:  nonNil(wb.Worksheets()),
		Dashboards:  nonNil(wb.Dashboards()),
		Datasources: nonNil(wb.Datasources()),
		Parameters:  nonNil(wb.Parameters()),
		Assets:      wb.Assets(),
		Extracts:    wb.Extracts(),
	}
	s.Version, _ = wb.Version()
	for _, ds := range s.Datasources {
		fields, err := wb.ListFields(ds)
		if err != nil || len(fields) == 0 {
			continue
		}
		if s.Fields == nil {
			s.Fields = make(map[string][]FieldInfo)
		}
		s.Fields[ds] = fields
	}
	return s
}

// ExportJSON writes the workbook Summary as indented JSON.
func (wb *Workbook) ExportJSON(w io.Writer) error {
	data, err := json.MarshalIndent(wb.Summary(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// Inventory sheet names used by ExportXLSX.
const (
	SheetComponents = "Components"
	SheetFields     = "Fields"
	SheetZones      = "Zones"
)

// ExportXLSX writes a spreadsheet inventory of the workbook: one row per
// component, one row per datasource field, and one row per dashboard zone.
func (wb *Workbook) ExportXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetComponents); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetFields, SheetZones} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	components := [][]any{{"Type", "Name"}}
	for _, group := range []struct {
		kind  string
		names []string
	}{
		{"worksheet", wb.Worksheets()},
		{"dashboard", wb.Dashboards()},
		{"datasource", wb.Datasources()},
		{"parameter", wb.Parameters()},
	} {
		for _, n := range group.names {
			components = append(components, []any{group.kind, n})
		}
	}

	fields := [][]any{{"Datasource", "Name", "Caption", "Datatype", "Role", "Formula"}}
	for _, ds := range wb.Datasources() {
		list, err := wb.ListFields(ds)
		if err != nil {
			continue
		}
		for _, fi := range list {
			fields = append(fields, []any{ds, fi.Name, fi.Caption, fi.DataType, fi.Role, fi.Formula})
		}
	}

	zones := [][]any{{"Dashboard", "Zone", "Type", "Worksheet", "X", "Y", "W", "H"}}
	for _, name := range wb.Dashboards() {
		d, err := wb.dashboard(name)
		if err != nil {
			continue
		}
		for _, z := range component.AllZones(d) {
			zones = append(zones, []any{
				name,
				z.SelectAttrValue("id", ""),
				z.SelectAttrValue("type", ""),
				z.SelectAttrValue("worksheet", ""),
				z.SelectAttrValue("x", ""),
				z.SelectAttrValue("y", ""),
				z.SelectAttrValue("w", ""),
				z.SelectAttrValue("h", ""),
			})
		}
	}

	for _, s := range []struct {
		name string
		rows [][]any
	}{
		{SheetComponents, components},
		{SheetFields, fields},
		{SheetZones, zones},
	} {
		if err := writeRows(f, s.name, s.rows); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write spreadsheet: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
