// Package importfile reads registrar export files into raw rows. CSV
// and XLSX are the two formats the scheduling and directory systems
// export; both reduce to a header row plus string cells.
package importfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/campusops/rostersync/pkg/errors"
	"github.com/campusops/rostersync/pkg/rows"
)

// File is one parsed export: the original header row and every data
// row keyed by those headers.
type File struct {
	Headers []string
	Rows    []rows.RawRow
}

// Read parses an export file, dispatching on extension. ".xlsx" goes
// through the spreadsheet reader; everything else is treated as CSV.
func Read(path string) (*File, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParseError("csv", path, "opening file", err)
	}
	defer f.Close()
	return ReadCSV(f, path)
}

// build pairs a header row with data rows, dropping rows that are
// entirely empty. Short rows are padded; long rows keep only the
// headered cells.
func build(path string, records [][]string) (*File, error) {
	if len(records) == 0 {
		return nil, errors.NewParseError("table", path, "file has no header row", nil)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	file := &File{Headers: headers}
	for _, record := range records[1:] {
		row := make(rows.RawRow, len(headers))
		empty := true
		for i, h := range headers {
			if h == "" {
				continue
			}
			var cell string
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			if cell != "" {
				empty = false
			}
			row[h] = cell
		}
		if !empty {
			file.Rows = append(file.Rows, row)
		}
	}
	return file, nil
}
