package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrEmptySpreadsheet = errors.New("spreadsheet contains no rows")

// ParseTabularFile reads a CSV or XLSX file into rows of cells. The format
// is chosen by extension. Every returned row has the same width as the
// header row: CSV rows with a different cell count are dropped, XLSX rows
// are padded on the right because Excel omits trailing empty cells.
func ParseTabularFile(filename string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data)
	case ".xlsx":
		return parseXLSX(data)
	default:
		return nil, ErrUnsupportedFile
	}
}

func parseCSV(data []byte) ([][]string, error) {
	// Strip a UTF-8 BOM, spreadsheets exported from Excel often carry one.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		// Data rows narrower or wider than the header are malformed and
		// silently discarded, only the header fixes the expected width.
		if len(rows) > 0 && len(record) != len(rows[0]) {
			continue
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySpreadsheet
	}
	return rows, nil
}

func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySpreadsheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySpreadsheet
	}
	for i := range rows {
		for len(rows[i]) < len(rows[0]) {
			rows[i] = append(rows[i], "")
		}
	}
	return rows, nil
}

// RowCell returns the cell at index i, tolerating short rows. Excel drops
// trailing empty cells so rows in one sheet can have different widths.
func RowCell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
