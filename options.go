package twbedit

import (
	"log/slog"

	"github.com/javajack/twbedit/extract"
)

// openOptions holds configuration for Open and Parse.
type openOptions struct {
	logger    *slog.Logger
	inspector extract.Inspector
}

func defaultOpenOptions() *openOptions {
	return &openOptions{
		logger:    slog.New(slog.DiscardHandler),
		inspector: extract.DefaultInspector(),
	}
}

// OpenOption configures a Workbook when it is opened.
type OpenOption func(*openOptions)

// WithLogger sets the logger that receives one debug record per mutation
// (default: discard).
func WithLogger(l *slog.Logger) OpenOption {
	return func(o *openOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithExtractInspector replaces the collaborator used by Extracts.
func WithExtractInspector(i extract.Inspector) OpenOption {
	return func(o *openOptions) {
		if i != nil {
			o.inspector = i
		}
	}
}

// saveOptions holds configuration for Save.
type saveOptions struct {
	path          string
	packageAssets bool
	targetVersion string
	dryRun        bool
}

// SaveOption configures Save.
type SaveOption func(*saveOptions)

// WithPath writes to path instead of the source file.
func WithPath(path string) SaveOption {
	return func(o *saveOptions) { o.path = path }
}

// WithPackageAssets forces packaged (.twbx) output.
func WithPackageAssets(pkg bool) SaveOption {
	return func(o *saveOptions) { o.packageAssets = pkg }
}

// WithTargetVersion stamps the workbook with version before serializing.
func WithTargetVersion(version string) SaveOption {
	return func(o *saveOptions) { o.targetVersion = version }
}

// WithDryRun serializes the workbook but writes nothing.
func WithDryRun(dry bool) SaveOption {
	return func(o *saveOptions) { o.dryRun = dry }
}

// parameterOptions holds the optional parts of SetParameter.
type parameterOptions struct {
	allowable     []string
	setAllowable  bool
	displayFormat *string
}

// ParameterOption configures SetParameter.
type ParameterOption func(*parameterOptions)

// WithAllowableValues replaces the parameter's value list, in the given
// order. Calling it with no values leaves an empty list. Without this
// option the existing list is kept.
func WithAllowableValues(values ...string) ParameterOption {
	return func(o *parameterOptions) {
		o.allowable = append([]string(nil), values...)
		o.setAllowable = true
	}
}

// WithDisplayFormat sets the parameter's display format. Without this
// option the existing format is kept.
func WithDisplayFormat(format string) ParameterOption {
	return func(o *parameterOptions) { o.displayFormat = &format }
}

// String returns a pointer to s, for optional string fields.
func String(s string) *string { return &s }

// Int returns a pointer to n, for optional integer fields.
func Int(n int) *int { return &n }
