package preview

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		header   string
		expected rune
	}{
		{"a\tb;c,d,e", ','},
		{"a\tb;c", '\t'},
		{"a;b,c", ';'},
		{"a;b;c,d", ';'},
		{"a,b,c", ','},
		{"a\tb\tc", '\t'},
		{"single", '\t'},
		{"", '\t'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.expected), string(DetectDelimiter(tt.header)), "header %q", tt.header)
	}
}

func TestSplitLineKeepsEmptyFields(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b", ""}, SplitLine("a,,b,", ','))
	assert.Equal(t, []string{""}, SplitLine("", ';'))
}

func TestLoadNormalizesRows(t *testing.T) {
	path := writeFile(t, "out.csv", "A,B,C\n1,2\n3,4,5,6\n")

	grid, err := Load(path, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, grid.Columns)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"3", "4", "5"}}, grid.Rows)
	assert.Equal(t, ',', grid.Delimiter)
	assert.False(t, grid.Truncated)
	for _, row := range grid.Rows {
		assert.Len(t, row, len(grid.Columns))
	}
}

func TestLoadRowCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("ASIN;SKU;IVA\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "B%03d;S%03d;SI\n", i, i)
	}
	path := writeFile(t, "out.csv", b.String())

	grid, err := Load(path, 10)
	require.NoError(t, err)
	require.Len(t, grid.Rows, 10)
	for i, row := range grid.Rows {
		assert.Equal(t, fmt.Sprintf("B%03d", i), row[0])
	}
	assert.True(t, grid.Truncated)

	grid, err = Load(path, 25)
	require.NoError(t, err)
	assert.Len(t, grid.Rows, 25)
	assert.False(t, grid.Truncated)
}

func TestLoadTrailingDelimiterAndCRLF(t *testing.T) {
	path := writeFile(t, "out.csv", "\ufeffASIN\tSKU\tIVA\t\r\nB01\tS1\tSI\t\r\nB02\tS2\r\n")

	grid, err := Load(path, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"ASIN", "SKU", "IVA"}, grid.Columns)
	assert.Equal(t, [][]string{{"B01", "S1", "SI"}, {"B02", "S2", ""}}, grid.Rows)
	assert.Equal(t, '\t', grid.Delimiter)
}

func TestLoadEmptyFile(t *testing.T) {
	grid, err := Load(writeFile(t, "empty.csv", ""), 100)
	require.NoError(t, err)
	assert.True(t, grid.Empty())
	assert.Empty(t, grid.Rows)
}

func TestLoadHeaderOnly(t *testing.T) {
	grid, err := Load(writeFile(t, "h.csv", "A;B"), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, grid.Columns)
	assert.Empty(t, grid.Rows)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), 10)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Base"))
	require.NoError(t, f.SetSheetRow("Base", "A1", &[]interface{}{"ASIN", "SKU", "IVA"}))
	require.NoError(t, f.SetSheetRow("Base", "A2", &[]interface{}{"B01", "S1"}))
	require.NoError(t, f.SetSheetRow("Base", "A3", &[]interface{}{"B02", "S2", "SI", "extra"}))
	require.NoError(t, f.SetSheetRow("Base", "A4", &[]interface{}{"B03", "S3", "NO"}))
	_, err := f.NewSheet("Otra")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "base.xlsx")
	require.NoError(t, f.SaveAs(path))

	grid, err := LoadSheet(path, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"ASIN", "SKU", "IVA"}, grid.Columns)
	assert.Equal(t, [][]string{{"B01", "S1", ""}, {"B02", "S2", "SI"}}, grid.Rows)
	assert.True(t, grid.Truncated)

	grid, err = LoadSheet(path, "Otra", 10)
	require.NoError(t, err)
	assert.True(t, grid.Empty())
}

func TestRender(t *testing.T) {
	path := writeFile(t, "out.csv", "ASIN,Descripción,IVA\nB01,Café molido,SI\nB02,,NO\n")
	grid, err := Load(path, 100)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, grid, 0))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ASIN | Descripción | IVA", lines[0])
	assert.Equal(t, "-----+-------------+----", lines[1])
	assert.Equal(t, "B01  | Café molido | SI", lines[2])
	assert.Equal(t, "B02  |             | NO", lines[3])

	buf.Reset()
	require.NoError(t, Render(&buf, grid, 4))
	assert.Contains(t, buf.String(), "Caf…")

	buf.Reset()
	require.NoError(t, Render(&buf, &models.PreviewGrid{}, 0))
	assert.Equal(t, "(empty)\n", buf.String())
}
