package bom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestLoadCSV_FirstColumn(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("Part Number,Qty\n640456-5,10\n433-1028-ND,5\n640456-5,2\n")
	parts, err := LoadCSV(in, Options{})
	require.NoError(t, err)

	// Header row skipped, duplicates removed, order preserved.
	assert.Equal(t, []string{"640456-5", "433-1028-ND"}, parts)
}

func TestLoadCSV_NamedColumn(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("Qty,MPN\n10,640456-5\n5,WT-1205\n")
	parts, err := LoadCSV(in, Options{Column: "MPN"})
	require.NoError(t, err)

	assert.Equal(t, []string{"640456-5", "WT-1205"}, parts)
}

func TestLoadCSV_ColumnNotFound(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("Qty,MPN\n10,640456-5\n")
	_, err := LoadCSV(in, Options{Column: "Part Number"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadCSV_NoHeader(t *testing.T) {
	t.Parallel()

	// First value contains digits, so there is no header row to skip.
	in := strings.NewReader("640456-5\n433-1028-ND\n")
	parts, err := LoadCSV(in, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"640456-5", "433-1028-ND"}, parts)
}

func TestLoadCSV_RaggedRows(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("Part,Qty,Note\n640456-5,10\n433-1028-ND\n,5\n")
	parts, err := LoadCSV(in, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"640456-5", "433-1028-ND"}, parts)
}

func writeTestXLSX(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, row := range rows {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().SetString(v)
		}
	}

	path := filepath.Join(t.TempDir(), "bom.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	t.Parallel()

	path := writeTestXLSX(t, "BOM", [][]string{
		{"Part Number", "Qty"},
		{"640456-5", "10"},
		{"10165968-113Y000LF", "4"},
	})

	parts, err := Load(path, Options{Column: "Part Number"})
	require.NoError(t, err)
	assert.Equal(t, []string{"640456-5", "10165968-113Y000LF"}, parts)
}

func TestLoadXLSX_SheetByName(t *testing.T) {
	t.Parallel()

	path := writeTestXLSX(t, "Components", [][]string{
		{"640456-5"},
	})

	parts, err := Load(path, Options{SheetName: "Components"})
	require.NoError(t, err)
	assert.Equal(t, []string{"640456-5"}, parts)

	_, err = Load(path, Options{SheetName: "Missing"})
	require.Error(t, err)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bom.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))

	_, err := Load(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
