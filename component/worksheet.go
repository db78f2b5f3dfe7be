package component

import (
	"github.com/beevik/etree"

	"github.com/javajack/twbedit/calc"
	"github.com/javajack/twbedit/xmldoc"
)

const worksheetsPath = "./worksheets/worksheet"

// Attributes that hold a field reference rather than free text.
var referenceAttrs = []string{"ref", "column"}

// WorksheetNames lists worksheets in document order.
func WorksheetNames(root *etree.Element) []string {
	return names(root, worksheetsPath)
}

// FindWorksheet returns the worksheet named name, or nil.
func FindWorksheet(root *etree.Element, name string) *etree.Element {
	return findByName(root, worksheetsPath, name)
}

// EnsureWorksheets returns the <worksheets> wrapper, creating it if absent.
func EnsureWorksheets(root *etree.Element) *etree.Element {
	return ensureChild(root, "worksheets")
}

// UpdateFieldReference points every ref and column attribute under scope
// that names old, bare or datasource-qualified, at new. It returns the
// number of attributes changed.
func UpdateFieldReference(scope *etree.Element, old, new string) int {
	changed := 0
	for _, key := range referenceAttrs {
		for _, e := range xmldoc.Find(scope, ".//*[@"+key+"]") {
			v := e.SelectAttrValue(key, "")
			if renamed, ok := calc.RenameRef(v, old, new); ok {
				e.CreateAttr(key, renamed)
				changed++
			}
		}
	}
	return changed
}

// RewriteFormulas replaces literal occurrences of old in every formula
// attribute under scope and returns the number of formulas changed.
func RewriteFormulas(scope *etree.Element, old, new string) int {
	changed := 0
	for _, e := range xmldoc.Find(scope, ".//*[@formula]") {
		if f, n := calc.ReplaceRef(e.SelectAttrValue("formula", ""), old, new); n > 0 {
			e.CreateAttr("formula", f)
			changed++
		}
	}
	return changed
}

// RenameDependencyColumns renames the copies of field old that
// <datasource-dependencies> blocks for datasource keep under scope. A copy's
// caption is replaced only when it has one. It returns the number of
// columns changed.
func RenameDependencyColumns(scope *etree.Element, datasource, old, new, caption string) int {
	changed := 0
	for _, deps := range xmldoc.Find(scope, ".//datasource-dependencies") {
		if deps.SelectAttrValue("datasource", "") != datasource {
			continue
		}
		for _, col := range deps.SelectElements("column") {
			if col.SelectAttrValue("name", "") != old {
				continue
			}
			col.CreateAttr("name", new)
			if col.SelectAttr("caption") != nil {
				col.CreateAttr("caption", caption)
			}
			changed++
		}
	}
	return changed
}

// RewriteQualifiedReferences replaces [datasource].old with [datasource].new
// in every formula and every ref and column attribute under scope. It
// returns the number of attributes changed.
func RewriteQualifiedReferences(scope *etree.Element, datasource, old, new string) int {
	qualifier := calc.Bracket(datasource) + "."
	qOld, qNew := qualifier+old, qualifier+new
	changed := 0
	for _, key := range referenceAttrs {
		for _, e := range xmldoc.Find(scope, ".//*[@"+key+"]") {
			if e.SelectAttrValue(key, "") == qOld {
				e.CreateAttr(key, qNew)
				changed++
			}
		}
	}
	return changed + RewriteFormulas(scope, qOld, qNew)
}
