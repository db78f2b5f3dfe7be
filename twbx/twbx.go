// Package twbx reads and writes packaged workbooks: zip containers holding
// exactly one .twb document plus sibling assets such as images and data
// extracts. Assets are carried as opaque bytes and written back unchanged.
package twbx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// ErrInvalidContainer is returned when a package is not a readable zip or
// does not hold exactly one workbook document.
var ErrInvalidContainer = errors.New("invalid packaged workbook")

// File extensions of the two workbook forms.
const (
	DocumentExt = ".twb"
	PackageExt  = ".twbx"
)

// Member is one file inside a package.
type Member struct {
	Name     string
	Method   uint16
	Modified time.Time
	Comment  string
	Data     []byte
}

// Package is a decoded container. Assets keep their archive order.
type Package struct {
	Workbook Member
	Assets   []Member
}

// AssetNames returns the names of the sibling members in archive order.
func (p *Package) AssetNames() []string {
	names := make([]string, 0, len(p.Assets))
	for _, m := range p.Assets {
		names = append(names, m.Name)
	}
	return names
}

// IsDocumentMember reports whether a member name is a workbook document.
func IsDocumentMember(name string) bool {
	return strings.EqualFold(path.Ext(name), DocumentExt)
}

// IsPackagePath reports whether a file path names a packaged workbook.
func IsPackagePath(p string) bool {
	return strings.EqualFold(path.Ext(p), PackageExt)
}

// IsDocumentPath reports whether a file path names a bare workbook document.
func IsDocumentPath(p string) bool {
	return strings.EqualFold(path.Ext(p), DocumentExt)
}

// Decode splits a zip container into its workbook document and assets.
func Decode(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContainer, err)
	}
	pkg := &Package{}
	found := false
	for _, f := range zr.File {
		m, err := readMember(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read %q: %w", ErrInvalidContainer, f.Name, err)
		}
		if !IsDocumentMember(f.Name) {
			pkg.Assets = append(pkg.Assets, m)
			continue
		}
		if found {
			return nil, fmt.Errorf("%w: multiple workbook documents (%q, %q)", ErrInvalidContainer, pkg.Workbook.Name, f.Name)
		}
		pkg.Workbook = m
		found = true
	}
	if !found {
		return nil, fmt.Errorf("%w: no %s document found", ErrInvalidContainer, DocumentExt)
	}
	return pkg, nil
}

func readMember(f *zip.File) (Member, error) {
	rc, err := f.Open()
	if err != nil {
		return Member{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Member{}, err
	}
	return Member{
		Name:     f.Name,
		Method:   f.Method,
		Modified: f.Modified,
		Comment:  f.Comment,
		Data:     data,
	}, nil
}

// Encode writes the workbook document first, then every asset in order.
func Encode(p *Package) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := writeMember(zw, p.Workbook); err != nil {
		return nil, err
	}
	for _, m := range p.Assets {
		if err := writeMember(zw, m); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish package: %w", err)
	}
	return buf.Bytes(), nil
}

func writeMember(zw *zip.Writer, m Member) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     m.Name,
		Method:   m.Method,
		Modified: m.Modified,
		Comment:  m.Comment,
	})
	if err != nil {
		return fmt.Errorf("add %q: %w", m.Name, err)
	}
	if _, err := w.Write(m.Data); err != nil {
		return fmt.Errorf("write %q: %w", m.Name, err)
	}
	return nil
}
