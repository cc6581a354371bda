package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePanel(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("date,price_local,price_foreign,stock_to_use\n")
	for i := range 24 {
		fmt.Fprintf(&b, "%d-%02d-01,%d,%d,%d\n", 2020+i/12, i%12+1, 40+2*i+(i*3)%4, 10+i, (i*5)%7)
	}
	path := filepath.Join(t.TempDir(), "panel.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestTrainCommand(t *testing.T) {
	out := execute(t, "train", "--panel", writePanel(t), "--log-level", "error")
	assert.Contains(t, out, "Target:   price_local")
	assert.Contains(t, out, "Test:     5 periods")
	assert.Contains(t, out, "price_foreign")
}

func TestCorrelateCommand(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "corr.csv")
	execute(t, "correlate", "--panel", writePanel(t), "--out", dest, "--log-level", "error")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), ",price_local,price_foreign,stock_to_use\n"))
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("2025-09-16", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 16, d.Day())

	_, err = parseDay("16/09/2025", time.Time{})
	assert.Error(t, err)
}
