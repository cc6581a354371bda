// Package inmet reads hourly station files published by INMET.
package inmet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// PreambleLines is the number of station metadata lines above the header.
const PreambleLines = 8

// ReadFile reads one station file.
func ReadFile(path string) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a Latin-1, semicolon-delimited station file. The preamble is
// skipped and the next line is the header. Blank rows are dropped.
func Decode(r io.Reader) (domain.RawTable, error) {
	br := bufio.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	for i := 0; i < PreambleLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return domain.RawTable{}, fmt.Errorf("file ends inside the %d-line preamble", PreambleLines)
			}
			return domain.RawTable{}, err
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read header: %w", err)
	}
	t := domain.RawTable{Header: make([]string, len(header))}
	for i, h := range header {
		t.Header[i] = strings.TrimSpace(h)
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.RawTable{}, fmt.Errorf("read row: %w", err)
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Discover lists the files in dir whose names match pattern, ignoring case,
// sorted by name.
func Discover(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	upper := strings.ToUpper(pattern)
	if _, err := filepath.Match(upper, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(upper, strings.ToUpper(e.Name())); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}
