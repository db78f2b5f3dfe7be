package component

import (
	"github.com/beevik/etree"
)

// Version returns the workbook's <version> value, falling back to its text.
func Version(root *etree.Element) (string, bool) {
	v := root.SelectElement("version")
	if v == nil {
		return "", false
	}
	if value := v.SelectAttrValue("value", ""); value != "" {
		return value, true
	}
	return v.Text(), true
}

// SetVersion sets the workbook's <version> value, creating the element if
// absent.
func SetVersion(root *etree.Element, version string) {
	ensureChild(root, "version").CreateAttr("value", version)
}
