package component

import (
	"github.com/beevik/etree"

	"github.com/javajack/twbedit/calc"
	"github.com/javajack/twbedit/xmldoc"
)

const (
	datasourcesPath = "./datasources/datasource"
	columnsPath     = "./column"
)

// DatasourceNames lists datasources in document order. The technical name
// is preferred; the caption is used when there is no name.
func DatasourceNames(root *etree.Element) []string {
	found := xmldoc.Find(root, datasourcesPath)
	out := make([]string, 0, len(found))
	for _, ds := range found {
		name := ds.SelectAttrValue("name", "")
		if name == "" {
			name = ds.SelectAttrValue("caption", "")
		}
		out = append(out, name)
	}
	return out
}

// FindDatasource returns the first datasource whose name is name, or failing
// that, the first whose caption is name.
func FindDatasource(root *etree.Element, name string) *etree.Element {
	all := xmldoc.Find(root, datasourcesPath)
	for _, ds := range all {
		if v, ok := xmldoc.Attr(ds, "name"); ok && v == name {
			return ds
		}
	}
	for _, ds := range all {
		if v, ok := xmldoc.Attr(ds, "caption"); ok && v == name {
			return ds
		}
	}
	return nil
}

// EnsureDatasources returns the <datasources> wrapper, creating it if absent.
func EnsureDatasources(root *etree.Element) *etree.Element {
	return ensureChild(root, "datasources")
}

// Columns returns the direct field children of a datasource.
func Columns(ds *etree.Element) []*etree.Element {
	return xmldoc.Find(ds, columnsPath)
}

// FindColumn matches a field by caption or by name, bare or bracketed.
func FindColumn(ds *etree.Element, name string) *etree.Element {
	bracketed := "[" + name + "]"
	for _, col := range Columns(ds) {
		caption := col.SelectAttrValue("caption", "")
		colName := col.SelectAttrValue("name", "")
		if caption == name || colName == name || colName == bracketed || caption == bracketed {
			return col
		}
	}
	return nil
}

// EnsureColumnName returns the field's bracketed reference name, deriving
// and assigning one from the caption when the name is missing.
func EnsureColumnName(col *etree.Element) string {
	if name := col.SelectAttrValue("name", ""); name != "" {
		return name
	}
	caption := col.SelectAttrValue("caption", "")
	if caption == "" {
		caption = "Unnamed"
	}
	name := calc.Bracket(caption)
	col.CreateAttr("name", name)
	return name
}

// NewColumn builds a detached field element with its default attributes.
func NewColumn(name, dataType string) *etree.Element {
	col := xmldoc.NewElement("column")
	col.CreateAttr("name", calc.Bracket(name))
	col.CreateAttr("caption", name)
	col.CreateAttr("datatype", dataType)
	return col
}

// AppendCalculatedColumn appends a field carrying a tableau calculation with
// the raw formula text.
func AppendCalculatedColumn(ds *etree.Element, name, formula, dataType string) *etree.Element {
	col := NewColumn(name, dataType)
	c := col.CreateElement("calculation")
	c.CreateAttr("class", "tableau")
	c.CreateAttr("formula", formula)
	ds.AddChild(col)
	return col
}

// Formula returns the formula of a calculated field.
func Formula(col *etree.Element) (string, bool) {
	c := col.SelectElement("calculation")
	if c == nil {
		return "", false
	}
	return xmldoc.Attr(c, "formula")
}

// SetFormat sets the number format of a field.
func SetFormat(col *etree.Element, format string) {
	col.CreateAttr("format", format)
}

// SetAlias sets the display alias of a field.
func SetAlias(col *etree.Element, alias string) {
	col.CreateAttr("alias", alias)
}

// EnsureConnection returns the datasource's connection, creating it if absent.
func EnsureConnection(ds *etree.Element) *etree.Element {
	return ensureChild(ds, "connection")
}

// ConnectionAttr translates a logical connection setting to the attribute
// name used on <connection>.
func ConnectionAttr(field string) string {
	if field == "db" {
		return "dbname"
	}
	return field
}
