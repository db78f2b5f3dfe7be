// Package component provides find, list and create operations for the
// structural parts of a workbook document: datasources and their fields,
// parameters, worksheets, dashboards and their zones, and actions.
//
// Every function works on live elements of the document tree. A found
// element is a reference into the tree, so changing it changes the document.
// Relations between parts (a zone naming a worksheet, an action naming its
// source sheet) are plain attribute values resolved by name when needed.
package component

import (
	"github.com/beevik/etree"

	"github.com/javajack/twbedit/xmldoc"
)

// names returns the name attribute of each element matched by query,
// using "" when the attribute is missing.
func names(root *etree.Element, query string) []string {
	found := xmldoc.Find(root, query)
	out := make([]string, 0, len(found))
	for _, e := range found {
		out = append(out, e.SelectAttrValue("name", ""))
	}
	return out
}

// findByName returns the first element matched by query whose name
// attribute equals name.
func findByName(root *etree.Element, query, name string) *etree.Element {
	for _, e := range xmldoc.Find(root, query) {
		if v, ok := xmldoc.Attr(e, "name"); ok && v == name {
			return e
		}
	}
	return nil
}

// ensureChild returns the first child of parent tagged tag, appending an
// empty one when there is none.
func ensureChild(parent *etree.Element, tag string) *etree.Element {
	if c := parent.SelectElement(tag); c != nil {
		return c
	}
	return parent.CreateElement(tag)
}

// clearChildren removes every child token of e.
func clearChildren(e *etree.Element) {
	for len(e.Child) > 0 {
		e.RemoveChildAt(len(e.Child) - 1)
	}
}
