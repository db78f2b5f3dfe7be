package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/javajack/twbedit"
)

const sample = "../../testdata/sample_workbook.twb"

// run executes the CLI with an empty config file and returns its output.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "twbedit.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))

	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func copySample(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(sample)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sales.twb")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestInspect(t *testing.T) {
	out, _, err := run(t, "inspect", sample)
	require.NoError(t, err)
	assert.Contains(t, out, "(version 18.1)")
	assert.Contains(t, out, `zone z1 worksheet worksheet="Overview"`)
}

func TestList(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"worksheets"}, "Overview\nDetail\n"},
		{[]string{"dashboards"}, "Executive\n"},
		{[]string{"datasources"}, "Orders\n"},
		{[]string{"parameters"}, "RegionParam\n"},
		{[]string{"zones", "--dashboard", "Executive"}, "z1\nz2\n"},
		{[]string{"device-layouts", "--dashboard", "Executive"}, "Phone\n"},
		{[]string{"assets"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out, _, err := run(t, append([]string{"list", sample}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestList_Errors(t *testing.T) {
	_, _, err := run(t, "list", sample, "zones")
	assert.ErrorContains(t, err, "requires --dashboard")

	_, _, err = run(t, "list", sample, "charts")
	assert.ErrorContains(t, err, `unknown kind "charts"`)

	_, _, err = run(t, "list", sample, "zones", "--dashboard", "Nope")
	assert.ErrorIs(t, err, twbedit.ErrNotFound)
}

func TestFields(t *testing.T) {
	out, _, err := run(t, "fields", sample, "Orders", "--where", "calculated")
	require.NoError(t, err)
	assert.Equal(t, "Margin\treal\tmeasure\tSUM([Profit]) / SUM([Sales])\n", out)

	out, _, err = run(t, "fields", sample, "Orders", "--json", "--where", `role == "dimension"`)
	require.NoError(t, err)
	assert.Contains(t, out, `"caption": "Region"`)
	assert.NotContains(t, out, "Profit")
}

func TestExportJSON(t *testing.T) {
	out, _, err := run(t, "export-json", sample)
	require.NoError(t, err)
	assert.Contains(t, out, `"worksheets": [`)

	path := filepath.Join(t.TempDir(), "summary.json")
	_, _, err = run(t, "export-json", sample, "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	_, _, err := run(t, "export-xlsx", sample, "-o", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{twbedit.SheetComponents, twbedit.SheetFields, twbedit.SheetZones}, f.GetSheetList())

	_, _, err = run(t, "export-xlsx", sample)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, _, err := run(t, "validate", sample)
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	path := filepath.Join(t.TempDir(), "dangling.twb")
	require.NoError(t, os.WriteFile(path, []byte(`<workbook><dashboards><dashboard name='D'><zones><zone id='z1' type='worksheet' worksheet='Gone'/></zones></dashboard></dashboards></workbook>`), 0o644))
	out, _, err = run(t, "validate", path)
	assert.ErrorContains(t, err, "1 validation issue(s)")
	assert.Equal(t, "[ERROR] D/z1: dashboard \"D\" references missing worksheet \"Gone\"\n", out)
}

func TestRenameField_DryRun(t *testing.T) {
	path := copySample(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	out, _, err := run(t, "rename-field", path, "Orders", "Profit", "Net Profit", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+ ")
	assert.Contains(t, out, "[Net Profit]")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRenameField_SaveAs(t *testing.T) {
	path := copySample(t)
	target := filepath.Join(t.TempDir(), "renamed.twbx")

	out, _, err := run(t, "rename-field", path, "Orders", "Profit", "Net Profit", "--as", target)
	require.NoError(t, err)
	assert.Equal(t, "saved "+target+"\n", out)

	wb, err := twbedit.Open(target)
	require.NoError(t, err)
	assert.True(t, wb.Source().Packaged)
	data, err := wb.Serialize()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "[Profit]")
}

func TestEditCommands(t *testing.T) {
	path := copySample(t)

	steps := [][]string{
		{"add-calc", path, "Orders", "Ratio", "SUM([Profit]) / SUM([Sales])", "--datatype", "real"},
		{"set-parameter", path, "Threshold", "integer", "5", "--allowable", "1,5,10", "--display-format", "0"},
		{"add-sheet-to-dashboard", path, "Executive", "Detail", "--index", "0"},
		{"move-zone", path, "Executive", "z1", "--x", "20", "--h", "300"},
		{"add-filter-action", path, "Executive", "Detail", "--map", "Region=Region"},
		{"set-connection", path, "Orders", "--db", "warehouse"},
		{"set-format", path, "Orders", "Sales", "--format", "$#,##0", "--alias", "Revenue"},
		{"duplicate-dashboard", path, "Executive", "Executive 2"},
		{"save", path, "--target-version", "2024.1"},
	}
	for _, args := range steps {
		_, stderr, err := run(t, args...)
		require.NoError(t, err, "%v: %s", args, stderr)
	}

	wb, err := twbedit.Open(path)
	require.NoError(t, err)
	doc, err := wb.Serialize()
	require.NoError(t, err)
	s := string(doc)

	assert.Contains(t, s, `formula="SUM([Profit]) / SUM([Sales])"`)
	assert.Contains(t, s, `name="Threshold" datatype="integer" current-value="5" display-format="0"`)
	assert.Contains(t, s, `x="20" y="0" w="500" h="300"`)
	assert.Contains(t, s, `mapping="Region=Region"`)
	assert.Contains(t, s, `dbname="warehouse"`)
	assert.Contains(t, s, `format="$#,##0" alias="Revenue"`)
	assert.Equal(t, []string{"Executive", "Executive 2"}, wb.Dashboards())

	zones, err := wb.ListZones("Executive")
	require.NoError(t, err)
	assert.Equal(t, []string{"z4", "z1", "z2"}, zones)

	v, _ := wb.Version()
	assert.Equal(t, "2024.1", v)
}

func TestEditCommands_Errors(t *testing.T) {
	path := copySample(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, _, err = run(t, "add-calc", path, "Orders", "Bad", "SUM([Profit]")
	assert.ErrorIs(t, err, twbedit.ErrInvalidFormula)

	_, _, err = run(t, "rename-field", path, "Nope", "Profit", "X")
	assert.ErrorIs(t, err, twbedit.ErrNotFound)

	_, _, err = run(t, "add-filter-action", path, "A", "B", "--map", "Region")
	assert.ErrorContains(t, err, "invalid --map")

	_, _, err = run(t, "set-format", path, "Orders", "Sales")
	assert.ErrorContains(t, err, "--format or --alias")

	_, _, err = run(t, "rename-field", path, "Orders")
	assert.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBackup(t *testing.T) {
	path := copySample(t)
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	_, _, err = run(t, "move-zone", path, "Executive", "z1", "--x", "1", "--backup")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(path), defaultBackupDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, "sales-") && strings.HasSuffix(name, ".twb"), name)

	saved, err := os.ReadFile(filepath.Join(filepath.Dir(path), defaultBackupDir, name))
	require.NoError(t, err)
	assert.Equal(t, original, saved)
}

func TestDiff(t *testing.T) {
	path := copySample(t)
	_, _, err := run(t, "move-zone", path, "Executive", "z1", "--w", "640")
	require.NoError(t, err)

	out, _, err := run(t, "diff", sample, path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `w="500"`)
	assert.Contains(t, lines[1], `w="640"`)

	out, _, err = run(t, "diff", sample, sample)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestVerboseLogsToStderr(t *testing.T) {
	path := copySample(t)
	_, stderr, err := run(t, "-v", "move-zone", path, "Executive", "z1", "--x", "3")
	require.NoError(t, err)
	assert.Contains(t, stderr, `msg="move zone"`)
}

func TestUnsupportedFormat(t *testing.T) {
	_, _, err := run(t, "inspect", "report.xlsx")
	assert.ErrorIs(t, err, twbedit.ErrUnsupportedFormat)
}
