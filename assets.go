package twbedit

import (
	"github.com/javajack/twbedit/extract"
)

// Assets returns the names of the sibling files in a packaged source, in
// archive order. A bare source has none.
func (wb *Workbook) Assets() []string {
	if wb.source.Package == nil {
		return nil
	}
	return wb.source.Package.AssetNames()
}

// Extracts describes the data extract files among the packaged assets.
func (wb *Workbook) Extracts() []extract.Info {
	if wb.source.Package == nil {
		return nil
	}
	var out []extract.Info
	for _, m := range wb.source.Package.Assets {
		if info, ok := wb.extracts.Inspect(m.Name, m.Data); ok {
			out = append(out, info)
		}
	}
	return out
}

// ExtractEngineAvailable reports whether the configured inspector is backed
// by an extract engine.
func (wb *Workbook) ExtractEngineAvailable() bool {
	return wb.extracts.Available()
}
