package twbedit

import (
	"fmt"

	"github.com/javajack/twbedit/component"
)

// ValidationIssue is a single dangling reference found by Validate.
type ValidationIssue struct {
	Dashboard string
	ZoneID    string
	Worksheet string
	Message   string
}

// String formats the issue as "[ERROR] Executive/z3: message".
func (v ValidationIssue) String() string {
	return fmt.Sprintf("[ERROR] %s/%s: %s", v.Dashboard, v.ZoneID, v.Message)
}

// ValidationReport lists the issues Validate found.
type ValidationReport struct {
	Issues []ValidationIssue
}

// OK reports whether no issues were found.
func (r ValidationReport) OK() bool { return len(r.Issues) == 0 }

// Validate checks that every worksheet zone on every dashboard names an
// existing worksheet, including zones nested in layout containers. It
// reports one issue per dangling zone and never modifies the workbook.
func (wb *Workbook) Validate() ValidationReport {
	sheets := make(map[string]bool)
	for _, name := range component.WorksheetNames(wb.root) {
		sheets[name] = true
	}

	var report ValidationReport
	for _, name := range component.DashboardNames(wb.root) {
		d := component.FindDashboard(wb.root, name)
		if d == nil {
			continue
		}
		for _, zone := range component.AllZones(d) {
			if zone.SelectAttrValue("type", "") != "worksheet" {
				continue
			}
			sheet := zone.SelectAttrValue("worksheet", "")
			if sheets[sheet] {
				continue
			}
			report.Issues = append(report.Issues, ValidationIssue{
				Dashboard: name,
				ZoneID:    zone.SelectAttrValue("id", ""),
				Worksheet: sheet,
				Message:   fmt.Sprintf("dashboard %q references missing worksheet %q", name, sheet),
			})
		}
	}
	return report
}
