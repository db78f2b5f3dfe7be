package twbx

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	workbookXML = []byte("<?xml version='1.0' encoding='utf-8'?>\n<workbook/>\n")
	imageBytes  = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01, 0x02}
	hyperBytes  = bytes.Repeat([]byte("HyPe"), 512)
)

type entry struct {
	name   string
	data   []byte
	method uint16
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func samplePackage(t *testing.T) []byte {
	t.Helper()
	return buildZip(t,
		entry{"Data/Extracts/orders.hyper", hyperBytes, zip.Store},
		entry{"Sales.twb", workbookXML, zip.Deflate},
		entry{"Image/logo.png", imageBytes, zip.Deflate},
	)
}

func TestDecode(t *testing.T) {
	pkg, err := Decode(samplePackage(t))
	require.NoError(t, err)

	assert.Equal(t, "Sales.twb", pkg.Workbook.Name)
	assert.Equal(t, workbookXML, pkg.Workbook.Data)
	assert.Equal(t, []string{"Data/Extracts/orders.hyper", "Image/logo.png"}, pkg.AssetNames())
	assert.Equal(t, hyperBytes, pkg.Assets[0].Data)
	assert.Equal(t, zip.Store, pkg.Assets[0].Method)
	assert.Equal(t, imageBytes, pkg.Assets[1].Data)
}

func TestDecode_CaseInsensitiveExtension(t *testing.T) {
	pkg, err := Decode(buildZip(t, entry{"SALES.TWB", workbookXML, zip.Deflate}))
	require.NoError(t, err)
	assert.Equal(t, "SALES.TWB", pkg.Workbook.Name)
	assert.Empty(t, pkg.Assets)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("<workbook/>")},
		{"empty", nil},
		{"no document", buildZip(t, entry{"Image/logo.png", imageBytes, zip.Deflate})},
		{"two documents", buildZip(t,
			entry{"a.twb", workbookXML, zip.Deflate},
			entry{"nested/b.twb", workbookXML, zip.Deflate},
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidContainer)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	pkg, err := Decode(samplePackage(t))
	require.NoError(t, err)

	pkg.Workbook.Data = []byte("<workbook changed='true'/>")
	out, err := Encode(pkg)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Sales.twb", "Data/Extracts/orders.hyper", "Image/logo.png"}, names)

	again, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "<workbook changed='true'/>", string(again.Workbook.Data))
	for i := range pkg.Assets {
		assert.Equal(t, pkg.Assets[i].Name, again.Assets[i].Name)
		assert.Equal(t, pkg.Assets[i].Data, again.Assets[i].Data)
		assert.Equal(t, pkg.Assets[i].Method, again.Assets[i].Method)
	}
}

func TestPathHelpers(t *testing.T) {
	assert.True(t, IsPackagePath("/tmp/Sales.twbx"))
	assert.True(t, IsPackagePath("Sales.TWBX"))
	assert.False(t, IsPackagePath("Sales.twb"))
	assert.True(t, IsDocumentPath("Sales.twb"))
	assert.False(t, IsDocumentPath("Sales.xml"))
	assert.True(t, IsDocumentMember("dir/Sales.Twb"))
	assert.False(t, IsDocumentMember("Sales.twbx"))
}

func TestShouldPackage(t *testing.T) {
	tests := []struct {
		name           string
		requested      bool
		sourcePackaged bool
		target         string
		want           bool
	}{
		{"bare to bare", false, false, "out.twb", false},
		{"requested", true, false, "out.twb", true},
		{"packaged source", false, true, "out.twb", true},
		{"package extension", false, false, "out.twbx", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldPackage(tt.requested, tt.sourcePackaged, tt.target))
		})
	}
}

func TestWrite_Bare(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "out.twb")
	require.NoError(t, Write(target, workbookXML, nil, false))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, workbookXML, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWrite_PackagedWithoutSource(t *testing.T) {
	target := filepath.Join(t.TempDir(), "Quarterly.twbx")
	require.NoError(t, Write(target, workbookXML, nil, true))

	pkg, err := ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly.twb", pkg.Workbook.Name)
	assert.Equal(t, workbookXML, pkg.Workbook.Data)
	assert.Empty(t, pkg.Assets)
}

func TestWrite_PackagedKeepsAssets(t *testing.T) {
	source, err := Decode(samplePackage(t))
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "copy.twbx")
	require.NoError(t, Write(target, []byte("<workbook/>"), source, true))

	pkg, err := ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Sales.twb", pkg.Workbook.Name)
	assert.Equal(t, "<workbook/>", string(pkg.Workbook.Data))
	require.Len(t, pkg.Assets, 2)
	assert.Equal(t, hyperBytes, pkg.Assets[0].Data)
	assert.Equal(t, imageBytes, pkg.Assets[1].Data)

	// the source package is not modified
	assert.Equal(t, workbookXML, source.Workbook.Data)
}

func TestWriteFileAtomic_KeepsMode(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.twb")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))

	require.NoError(t, WriteFileAtomic(target, []byte("new")))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteFileAtomic_FailureLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.twb")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

	err := WriteFileAtomic(target, []byte("data"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.twb", entries[0].Name())
	assert.True(t, entries[0].IsDir())
}

func TestMember_ModifiedPreserved(t *testing.T) {
	stamp := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	pkg := &Package{
		Workbook: Member{Name: "a.twb", Method: zip.Deflate, Data: workbookXML},
		Assets:   []Member{{Name: "img.png", Method: zip.Store, Modified: stamp, Data: imageBytes}},
	}
	out, err := Encode(pkg)
	require.NoError(t, err)
	back, err := Decode(out)
	require.NoError(t, err)
	assert.True(t, stamp.Equal(back.Assets[0].Modified), "got %v", back.Assets[0].Modified)
}
