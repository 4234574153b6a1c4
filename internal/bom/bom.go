// Package bom loads part-number lists from BOM files in CSV or XLSX form.
package bom

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Options configures BOM loading.
type Options struct {
	// Column is the header name of the part-number column. When empty the
	// first column is used and a header row is only skipped if it does not
	// look like a part number.
	Column string
	// SheetName selects an XLSX sheet by name; default is the first sheet.
	SheetName string
}

// Load reads part numbers from path, dispatching on the file extension.
func Load(path string, opts Options) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path, opts)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "bom: open %s", path)
		}
		defer f.Close()
		return LoadCSV(f, opts)
	default:
		return nil, eris.Errorf("bom: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadCSV reads part numbers from CSV content.
func LoadCSV(r io.Reader, opts Options) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "bom: read csv")
	}
	return partNumbers(rows, opts)
}

// LoadXLSX reads part numbers from the selected sheet of an XLSX workbook.
func LoadXLSX(path string, opts Options) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "bom: open xlsx %s", path)
	}

	sheet, err := pickSheet(f, opts.SheetName)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, c.Value)
		}
		rows = append(rows, cells)
	}
	return partNumbers(rows, opts)
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("bom: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("bom: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

// partNumbers extracts the part-number column from raw rows, deduplicating
// while preserving order.
func partNumbers(rows [][]string, opts Options) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	col := 0
	start := 0
	if opts.Column != "" {
		found := false
		for i, h := range rows[0] {
			if strings.EqualFold(strings.TrimSpace(h), opts.Column) {
				col = i
				found = true
				break
			}
		}
		if !found {
			return nil, eris.Errorf("bom: column %q not found in header", opts.Column)
		}
		start = 1
	} else if len(rows) > 1 && looksLikeHeader(rows[0][0]) {
		start = 1
	}

	seen := make(map[string]bool)
	var parts []string
	for _, row := range rows[start:] {
		if col >= len(row) {
			continue
		}
		pn := strings.TrimSpace(row[col])
		if pn == "" || seen[pn] {
			continue
		}
		seen[pn] = true
		parts = append(parts, pn)
	}
	return parts, nil
}

// looksLikeHeader guesses whether a first-column value is a label rather
// than a part number. Part numbers nearly always contain a digit.
func looksLikeHeader(s string) bool {
	return !strings.ContainsAny(s, "0123456789")
}
