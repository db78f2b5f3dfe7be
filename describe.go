package twbedit

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/javajack/twbedit/component"
)

// Describe returns a human-readable tree of the workbook's worksheets,
// dashboards with their zones, datasources with their fields, and
// parameters. Useful for inspecting a workbook from the command line.
func (wb *Workbook) Describe() string {
	var b strings.Builder
	b.WriteString("Workbook: ")
	if wb.source.Path != "" {
		b.WriteString(wb.source.Path)
	} else {
		b.WriteString("<memory>")
	}
	if v, ok := wb.Version(); ok {
		fmt.Fprintf(&b, " (version %s)", v)
	}
	b.WriteByte('\n')

	b.WriteString("  Worksheets:\n")
	for _, name := range wb.Worksheets() {
		fmt.Fprintf(&b, "    %s\n", name)
	}

	b.WriteString("  Dashboards:\n")
	for _, name := range wb.Dashboards() {
		fmt.Fprintf(&b, "    %s\n", name)
		if d := component.FindDashboard(wb.root, name); d != nil {
			for _, z := range component.Zones(d) {
				describeZone(&b, z, 3)
			}
		}
	}

	b.WriteString("  Datasources:\n")
	for _, name := range wb.Datasources() {
		fmt.Fprintf(&b, "    %s\n", name)
		fields, err := wb.ListFields(name)
		if err != nil {
			continue
		}
		for _, f := range fields {
			fmt.Fprintf(&b, "      %s%s\n", f.Caption, describeFieldAttrs(f))
		}
	}

	b.WriteString("  Parameters:\n")
	for _, name := range wb.Parameters() {
		fmt.Fprintf(&b, "    %s\n", name)
	}
	return b.String()
}

// describeZone writes a zone and the zones nested in it.
func describeZone(b *strings.Builder, z *etree.Element, indent int) {
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%szone %s %s", prefix, z.SelectAttrValue("id", "?"), z.SelectAttrValue("type", ""))
	if sheet := z.SelectAttrValue("worksheet", ""); sheet != "" {
		fmt.Fprintf(b, " worksheet=%q", sheet)
	}
	if z.SelectAttrValue("floating", "") == "true" {
		b.WriteString(" floating")
	}
	b.WriteByte('\n')
	for _, child := range z.SelectElements("zone") {
		describeZone(b, child, indent+1)
	}
}

// describeFieldAttrs returns the key field attributes for display.
func describeFieldAttrs(f FieldInfo) string {
	var parts []string
	if f.DataType != "" {
		parts = append(parts, fmt.Sprintf("datatype=%q", f.DataType))
	}
	if f.Role != "" {
		parts = append(parts, fmt.Sprintf("role=%q", f.Role))
	}
	if f.Formula != "" {
		parts = append(parts, fmt.Sprintf("formula=%q", f.Formula))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
