package component

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/javajack/twbedit/xmldoc"
)

const actionsPath = "./actions/action"

// FieldMapping pairs a source field with the target field it filters.
type FieldMapping struct {
	Source string
	Target string
}

// Actions returns every action in document order.
func Actions(root *etree.Element) []*etree.Element {
	return xmldoc.Find(root, actionsPath)
}

// ActionNames lists actions in document order.
func ActionNames(root *etree.Element) []string {
	return names(root, actionsPath)
}

// FindAction returns the action named name, or nil.
func FindAction(root *etree.Element, name string) *etree.Element {
	return findByName(root, actionsPath, name)
}

// EnsureActions returns the <actions> wrapper, creating it if absent.
func EnsureActions(root *etree.Element) *etree.Element {
	return ensureChild(root, "actions")
}

// FormatMapping renders mappings as "k1=v1; k2=v2" in the given order.
func FormatMapping(mapping []FieldMapping) string {
	pairs := make([]string, 0, len(mapping))
	for _, m := range mapping {
		pairs = append(pairs, m.Source+"="+m.Target)
	}
	return strings.Join(pairs, "; ")
}

// ParseMapping is the inverse of FormatMapping. Empty pairs are skipped and
// whitespace around keys and values is trimmed.
func ParseMapping(s string) []FieldMapping {
	var out []FieldMapping
	for _, pair := range strings.Split(s, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		src, dst, _ := strings.Cut(pair, "=")
		out = append(out, FieldMapping{Source: strings.TrimSpace(src), Target: strings.TrimSpace(dst)})
	}
	return out
}

// CreateFilterAction appends a filter action. The mapping attribute is
// written only when there is at least one pair.
func CreateFilterAction(root *etree.Element, source, target string, mapping []FieldMapping) *etree.Element {
	a := EnsureActions(root).CreateElement("action")
	a.CreateAttr("type", "filter")
	a.CreateAttr("source", source)
	a.CreateAttr("target", target)
	if len(mapping) > 0 {
		a.CreateAttr("mapping", FormatMapping(mapping))
	}
	return a
}

// RewriteMappings replaces old with new in every action mapping that
// contains it and returns the number of actions changed.
func RewriteMappings(root *etree.Element, old, new string) int {
	changed := 0
	for _, a := range Actions(root) {
		m, ok := xmldoc.Attr(a, "mapping")
		if !ok || old == "" || !strings.Contains(m, old) {
			continue
		}
		a.CreateAttr("mapping", strings.ReplaceAll(m, old, new))
		changed++
	}
	return changed
}
