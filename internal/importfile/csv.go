package importfile

import (
	"encoding/csv"
	"io"

	"github.com/campusops/rostersync/pkg/errors"
)

// ReadCSV parses a CSV export. Variable-length records are tolerated:
// registrar exports routinely drop trailing empty cells.
func ReadCSV(r io.Reader, path string) (*File, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParseError("csv", path, "reading records", err)
	}
	return build(path, records)
}
