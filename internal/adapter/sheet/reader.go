// Package sheet reads tabular source files (workbooks or CSV exports) into
// raw tables.
package sheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// ErrLegacyWorkbook is returned for binary .xls files.
var ErrLegacyWorkbook = errors.New("legacy .xls workbooks are not supported, convert to .xlsx")

// Read loads the first sheet of a workbook, or a CSV file, as a raw table.
// The first non-empty row is the header.
func Read(path string) (domain.RawTable, error) {
	return ReadSheet(path, "")
}

// ReadSheet loads the named sheet of a workbook. An empty name selects the
// first sheet. CSV files ignore the sheet name.
func ReadSheet(path, sheet string) (domain.RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, sheet)
	case ".csv", ".txt":
		return readCSV(path)
	case ".xls":
		return domain.RawTable{}, ErrLegacyWorkbook
	default:
		return domain.RawTable{}, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func readWorkbook(path, sheet string) (domain.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.RawTable{}, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// Raw values keep dates as serial numbers instead of locale-formatted text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return toTable(rows)
}

func readCSV(path string) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return domain.RawTable{}, err
	}

	r := csv.NewReader(br)
	r.Comma = sniffDelimiter(string(first))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("parse csv: %w", err)
	}
	return toTable(rows)
}

// sniffDelimiter picks ';' when the first line has any, as decimal-comma
// exports cannot use ',' between fields.
func sniffDelimiter(sample string) rune {
	line, _, _ := strings.Cut(sample, "\n")
	if strings.Count(line, ";") > 0 {
		return ';'
	}
	return ','
}

func toTable(rows [][]string) (domain.RawTable, error) {
	var t domain.RawTable
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if t.Header == nil {
			t.Header = make([]string, len(row))
			for i, h := range row {
				t.Header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			}
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if t.Header == nil {
		return t, errors.New("no header row")
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
