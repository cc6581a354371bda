package csvsink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// ReadFile loads a panel artifact back into a frame.
func ReadFile(path string) (*domain.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a panel CSV. The first column must be the date; empty cells
// become missing values.
func Decode(in io.Reader) (*domain.Frame, error) {
	records, err := csv.NewReader(in).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read panel: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("panel is empty")
	}
	header := records[0]
	if len(header) == 0 || header[0] != domain.ColumnDate {
		return nil, fmt.Errorf("first column must be %q", domain.ColumnDate)
	}

	rows := records[1:]
	index := make([]time.Time, len(rows))
	columns := make([][]float64, len(header)-1)
	for j := range columns {
		columns[j] = make([]float64, len(rows))
	}
	for i, r := range rows {
		ts, err := time.Parse(DateLayout, strings.TrimSpace(r[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", i+2, r[0])
		}
		index[i] = ts
		for j := range columns {
			cell := strings.TrimSpace(r[j+1])
			if cell == "" {
				columns[j][i] = domain.Missing()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+2, header[j+1], err)
			}
			columns[j][i] = v
		}
	}

	frame := domain.NewFrame(index)
	for j, name := range header[1:] {
		if err := frame.SetColumn(name, columns[j]); err != nil {
			return nil, err
		}
	}
	return frame, nil
}
