package twbedit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/twbedit/twbx"
)

const samplePath = "testdata/sample_workbook.twb"

func openSample(t *testing.T, opts ...OpenOption) *Workbook {
	t.Helper()
	wb, err := Open(samplePath, opts...)
	require.NoError(t, err)
	return wb
}

func serialized(t *testing.T, wb *Workbook) string {
	t.Helper()
	data, err := wb.Serialize()
	require.NoError(t, err)
	return string(data)
}

// writePackage builds a .twbx around the sample document in dir.
func writePackage(t *testing.T, dir string, assets ...twbx.Member) string {
	t.Helper()
	doc, err := os.ReadFile(samplePath)
	require.NoError(t, err)
	data, err := twbx.Encode(&twbx.Package{
		Workbook: twbx.Member{Name: "sample_workbook.twb", Method: zip.Deflate, Data: doc},
		Assets:   assets,
	})
	require.NoError(t, err)
	path := filepath.Join(dir, "sample.twbx")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpen_Document(t *testing.T) {
	wb := openSample(t)

	src := wb.Source()
	assert.True(t, filepath.IsAbs(src.Path))
	assert.False(t, src.Packaged)
	assert.Nil(t, src.Package)
	assert.Equal(t, "workbook", wb.Root().Tag)

	assert.Equal(t, []string{"Overview", "Detail"}, wb.Worksheets())
	assert.Equal(t, []string{"Executive"}, wb.Dashboards())
	assert.Equal(t, []string{"Orders"}, wb.Datasources())
	assert.Equal(t, []string{"RegionParam"}, wb.Parameters())

	v, ok := wb.Version()
	assert.True(t, ok)
	assert.Equal(t, "18.1", v)
}

func TestOpen_Package(t *testing.T) {
	path := writePackage(t, t.TempDir(),
		twbx.Member{Name: "Image/logo.png", Method: zip.Store, Data: []byte("\x89PNG")},
	)
	wb, err := Open(path)
	require.NoError(t, err)

	src := wb.Source()
	assert.True(t, src.Packaged)
	require.NotNil(t, src.Package)
	assert.Equal(t, "sample_workbook.twb", src.Package.Workbook.Name)
	assert.Equal(t, []string{"Image/logo.png"}, wb.Assets())
	assert.Equal(t, []string{"Overview", "Detail"}, wb.Worksheets())
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"report.xlsx", "workbook", "sales.twb.bak"} {
		_, err := Open(name)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.twb"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_InvalidPackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.twbx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrInvalidContainer)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "<workbook><worksheets></workbook>"},
		{"empty", ""},
		{"entity", `<?xml version="1.0"?><!DOCTYPE w [<!ENTITY x "y">]><workbook/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb, err := Parse([]byte(tt.data))
			assert.Nil(t, wb)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParse_InMemory(t *testing.T) {
	wb, err := Parse([]byte(`<workbook><worksheets><worksheet name='A'/></worksheets></workbook>`))
	require.NoError(t, err)
	assert.Equal(t, "", wb.Source().Path)
	assert.Equal(t, []string{"A"}, wb.Worksheets())
	assert.Empty(t, wb.Dashboards())
	assert.Empty(t, wb.Assets())

	_, ok := wb.Version()
	assert.False(t, ok)
}

func TestListZones(t *testing.T) {
	wb := openSample(t)

	ids, err := wb.ListZones("Executive")
	require.NoError(t, err)
	assert.Equal(t, []string{"z1", "z2"}, ids)

	layouts, err := wb.DeviceLayouts("Executive")
	require.NoError(t, err)
	assert.Equal(t, []string{"Phone"}, layouts)

	_, err = wb.ListZones("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = wb.DeviceLayouts("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSerialize_DeclarationAndIndent(t *testing.T) {
	wb, err := Parse([]byte(`<?xml version='1.0' encoding='latin1'?><workbook><worksheets><worksheet name='A'/></worksheets></workbook>`))
	require.NoError(t, err)

	out := serialized(t, wb)
	assert.True(t, strings.HasPrefix(out, "<?xml"), out)
	assert.Contains(t, out, "encoding='utf-8'")
	assert.Contains(t, out, "\n  <worksheets>\n    <worksheet name=\"A\"/>\n  </worksheets>\n")
}
