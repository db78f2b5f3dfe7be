package twbedit

import (
	"fmt"
	"path/filepath"

	"github.com/javajack/twbedit/component"
	"github.com/javajack/twbedit/twbx"
	"github.com/javajack/twbedit/xmldoc"
)

// Save serializes the workbook and writes it, by default over its source.
// The output is a package when WithPackageAssets is set, when the source
// was packaged, or when the target ends in .twbx; a packaged source's
// assets are written back unchanged. The write is atomic.
//
// WithTargetVersion stamps the document even on a dry run. A dry run
// returns "" and writes nothing.
func (wb *Workbook) Save(opts ...SaveOption) (string, error) {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.targetVersion != "" {
		component.SetVersion(wb.root, o.targetVersion)
	}
	data, err := xmldoc.Dump(wb.doc)
	if err != nil {
		return "", fmt.Errorf("serialize workbook: %w", err)
	}
	if o.dryRun {
		wb.log.Debug("dry run", "bytes", len(data))
		return "", nil
	}

	target := o.path
	if target == "" {
		target = wb.source.Path
	}
	if target == "" {
		return "", ErrNoPath
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", target, err)
	}

	packaged := twbx.ShouldPackage(o.packageAssets, wb.source.Packaged, target)
	if err := twbx.Write(target, data, wb.source.Package, packaged); err != nil {
		return "", fmt.Errorf("write workbook %q: %w", target, err)
	}
	wb.log.Debug("workbook saved", "path", target, "packaged", packaged, "bytes", len(data))
	return target, nil
}
