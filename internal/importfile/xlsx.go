package importfile

import (
	"github.com/xuri/excelize/v2"

	"github.com/campusops/rostersync/pkg/errors"
)

// ReadXLSX parses the first sheet of a spreadsheet export.
func ReadXLSX(path string) (*File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParseError("xlsx", path, "opening workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParseError("xlsx", path, "workbook has no sheets", nil)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParseError("xlsx", path, "reading sheet "+sheets[0], err)
	}
	return build(path, records)
}
