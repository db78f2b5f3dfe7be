// Package extract describes data extract files bundled in a packaged
// workbook. Extract contents are never queried; without an extract engine
// only name, size, kind and a checksum are reported.
package extract

import (
	"fmt"
	"path"
	"strings"

	"github.com/zeebo/xxh3"
)

// Extract file kinds.
const (
	KindHyper = "hyper"
	KindTDE   = "tde"
)

// Info describes one extract member.
type Info struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Size     int    `json:"size"`
	Checksum string `json:"checksum"`
}

// Inspector describes extract members. Implementations backed by an extract
// engine report Available() == true and may fill in more detail.
type Inspector interface {
	Available() bool
	Inspect(name string, data []byte) (Info, bool)
}

// Available reports whether an extract engine is linked into this build.
func Available() bool { return false }

// Kind returns the extract kind of a member name, or "".
func Kind(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".hyper":
		return KindHyper
	case ".tde":
		return KindTDE
	}
	return ""
}

// Checksum returns the xxh3 digest of data as 16 hex digits.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

type fileInspector struct{}

// DefaultInspector returns the engine-free inspector.
func DefaultInspector() Inspector { return fileInspector{} }

func (fileInspector) Available() bool { return Available() }

func (fileInspector) Inspect(name string, data []byte) (Info, bool) {
	kind := Kind(name)
	if kind == "" {
		return Info{}, false
	}
	return Info{Name: name, Kind: kind, Size: len(data), Checksum: Checksum(data)}, true
}
