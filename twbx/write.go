package twbx

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// ShouldPackage decides the output form. A package is written when the
// caller asked for one, when the source was packaged, or when the target
// path has the package extension.
func ShouldPackage(requested, sourcePackaged bool, target string) bool {
	return requested || sourcePackaged || IsPackagePath(target)
}

// Write persists a serialized workbook document to target. When packaged is
// false the document is written as-is. Otherwise it is wrapped in a
// container; with a source package its member name and assets are reused,
// without one the member is named after the target file.
func Write(target string, document []byte, source *Package, packaged bool) error {
	if !packaged {
		return WriteFileAtomic(target, document)
	}
	var pkg Package
	if source != nil {
		pkg.Workbook = source.Workbook
		pkg.Assets = source.Assets
	} else {
		stem := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
		pkg.Workbook = Member{Name: stem + DocumentExt, Method: zip.Deflate}
	}
	pkg.Workbook.Data = document
	pkg.Workbook.Modified = time.Now()
	data, err := Encode(&pkg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(target, data)
}

// ReadFile reads and decodes a packaged workbook.
func ReadFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// WriteFileAtomic writes data to a temporary file in the destination
// directory and renames it over path. The destination is untouched unless
// the rename succeeds. An existing file's permissions are kept.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, ".twbedit-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %q: %w", path, err)
	}
	return nil
}
