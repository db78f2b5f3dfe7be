package twbedit

import (
	"errors"

	"github.com/javajack/twbedit/twbx"
	"github.com/javajack/twbedit/xmldoc"
)

var (
	// ErrParse is returned when a workbook document is malformed or
	// adversarial XML. No partial document is ever returned with it.
	ErrParse = xmldoc.ErrParse

	// ErrInvalidContainer is returned when a packaged workbook holds zero
	// or several workbook documents, or is not a zip archive.
	ErrInvalidContainer = twbx.ErrInvalidContainer

	// ErrNotFound is returned when a named datasource, field, worksheet,
	// dashboard, zone or parameter does not exist. The document is not
	// modified.
	ErrNotFound = errors.New("not found")

	// ErrExists is returned when creating a component whose name is taken.
	ErrExists = errors.New("already exists")

	// ErrInvalidFormula is returned when a calculation fails the
	// parenthesis or field-bracket balance check.
	ErrInvalidFormula = errors.New("invalid formula")

	// ErrUnsupportedFormat is returned for paths that are neither .twb nor
	// .twbx.
	ErrUnsupportedFormat = errors.New("unsupported workbook format")

	// ErrNoPath is returned by Save when neither a target path nor a source
	// path is known.
	ErrNoPath = errors.New("no target path")
)
