package component

import (
	"github.com/beevik/etree"
)

const parametersPath = "./parameters/parameter"

// ParameterNames lists parameters in document order.
func ParameterNames(root *etree.Element) []string {
	return names(root, parametersPath)
}

// FindParameter returns the parameter named name, or nil.
func FindParameter(root *etree.Element, name string) *etree.Element {
	return findByName(root, parametersPath, name)
}

// EnsureParameters returns the <parameters> wrapper, creating it if absent.
func EnsureParameters(root *etree.Element) *etree.Element {
	return ensureChild(root, "parameters")
}

// CreateParameter appends a parameter with its default attributes.
func CreateParameter(root *etree.Element, name, dataType, value string) *etree.Element {
	p := EnsureParameters(root).CreateElement("parameter")
	p.CreateAttr("name", name)
	p.CreateAttr("datatype", dataType)
	p.CreateAttr("current-value", value)
	return p
}

// SetAllowableValues replaces the parameter's value list, keeping the given
// order. An empty list leaves an empty <values> element.
func SetAllowableValues(param *etree.Element, values []string) {
	list := ensureChild(param, "values")
	clearChildren(list)
	for _, v := range values {
		list.CreateElement("value").SetText(v)
	}
}

// AllowableValues returns the text of each value in the parameter's list.
func AllowableValues(param *etree.Element) []string {
	list := param.SelectElement("values")
	if list == nil {
		return nil
	}
	var out []string
	for _, v := range list.SelectElements("value") {
		out = append(out, v.Text())
	}
	return out
}
