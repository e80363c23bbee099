package statement

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Grid is the raw cell contents of one worksheet, rows × columns. Cells hold
// unformatted values so date serials survive as plain numbers.
type Grid [][]string

// ReadGrid loads the first worksheet of an OOXML spreadsheet into a Grid.
func ReadGrid(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return Grid(rows), nil
}

// findHeader scans rows top to bottom and returns the index of the first row
// whose concatenated lowercased text satisfies the signature, or -1.
func findHeader(rows Grid, signature func(rowText string) bool) int {
	for i, row := range rows {
		if signature(strings.ToLower(strings.Join(row, " "))) {
			return i
		}
	}
	return -1
}

// findColumn returns the index of the first header cell containing any of the
// given keywords, tried in order. Column order varies between exports, so
// positions are resolved by keyword rather than fixed indices.
func findColumn(header []string, keywords ...string) int {
	for _, kw := range keywords {
		for i, c := range header {
			if strings.Contains(strings.ToLower(c), kw) {
				return i
			}
		}
	}
	return -1
}

// cell returns row[i], or "" when the row is shorter than i+1. Trailing blank
// cells are trimmed per row by the reader.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
