// Package csvsink persists the master panel as a CSV artifact.
package csvsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// DateLayout formats the date column.
const DateLayout = "2006-01-02"

// Writer replaces the artifact at Path on every load.
type Writer struct {
	path string
}

// NewWriter creates a Writer for the given artifact path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the artifact location.
func (w *Writer) Path() string {
	return w.path
}

// LoadPanel writes the panel to a temporary file next to the artifact and
// renames it into place, so readers see either the old or the new panel.
func (w *Writer) LoadPanel(_ context.Context, panel domain.MasterPanel) (err error) {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, panel.Frame); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("replace %s: %w", w.path, err)
	}
	return nil
}

// Encode writes the frame as CSV with the date first and the remaining
// columns in panel order. Missing values are written as empty cells.
func Encode(out io.Writer, frame *domain.Frame) error {
	columns := domain.PanelColumnOrder(frame.Columns())

	cw := csv.NewWriter(out)
	if err := cw.Write(append([]string{domain.ColumnDate}, columns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(columns)+1)
	for i, ts := range frame.Index {
		record[0] = ts.Format(DateLayout)
		for j, name := range columns {
			record[j+1] = FormatValue(frame.Value(name, i))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatValue renders a panel value with the shortest exact representation.
func FormatValue(v float64) string {
	if domain.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
