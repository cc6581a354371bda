// Command validate checks a master panel CSV against the contract the model
// trainer relies on: column layout, period dates, completeness and the
// consistency of the derived columns.
//
// Usage:
//
//	go run ./cmd/validate -panel master_dataframe_mensal.csv -period monthly
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/commodity-panel-etl/internal/adapter/csvsink"
	"github.com/couchcryptid/commodity-panel-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	panelPath := flag.String("panel", "master_dataframe_mensal.csv", "path to the master panel CSV")
	periodFlag := flag.String("period", "monthly", "aggregation window of the panel")
	flag.Parse()

	period, err := domain.ParsePeriod(*periodFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(*panelPath, period))
}

func run(path string, period domain.Period) int {
	fmt.Println("=== Master Panel Validation ===")
	fmt.Println()

	records, err := loadCSV(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load panel: %v\n", err)
		return 1
	}
	header, rows := records[0], records[1:]

	dates := parseDates(rows)
	phases := []*phase{
		validateHeader(header),
		validateDates(dates, period),
		validateCompleteness(header, rows),
		validateDerived(header, rows, dates, period),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d, columns: %d\n", len(rows), len(header))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}
	return all, nil
}

// parseDates returns the row dates; unparsable dates are zero.
func parseDates(rows [][]string) []time.Time {
	out := make([]time.Time, len(rows))
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		if ts, err := time.Parse(csvsink.DateLayout, strings.TrimSpace(r[0])); err == nil {
			out[i] = ts
		}
	}
	return out
}

// ── Phase 1: Header ──

func validateHeader(header []string) *phase {
	p := &phase{name: "Phase 1: Column Layout"}

	if len(header) == 0 || header[0] != domain.ColumnDate {
		p.errorf("first column must be %q", domain.ColumnDate)
		return p
	}

	seen := map[string]bool{}
	for _, h := range header {
		if seen[h] {
			p.errorf("duplicate column %q", h)
		}
		seen[h] = true
	}

	for _, required := range []string{
		domain.ColumnPriceLocal,
		domain.ColumnPriceForeign,
		domain.ColumnStockToUse,
		domain.ColumnExchangeRate,
		domain.ColumnPriceLocalLag1,
	} {
		if !seen[required] {
			p.errorf("missing column %q", required)
		}
	}
	for _, variable := range []string{domain.VariablePrecipitation, domain.VariableTemperature} {
		if !slices.ContainsFunc(header, func(h string) bool { return strings.HasPrefix(h, variable+"_") }) {
			p.errorf("no %s_<station> column", variable)
		}
	}

	if want := domain.PanelColumnOrder(header[1:]); !slices.Equal(want, header[1:]) {
		p.errorf("columns out of order: want %s", strings.Join(want, ","))
	}
	return p
}

// ── Phase 2: Dates ──

func validateDates(dates []time.Time, period domain.Period) *phase {
	p := &phase{name: "Phase 2: Period Index"}

	for i, ts := range dates {
		line := i + 2
		if ts.IsZero() {
			p.errorf("line %d: unparsable date", line)
			continue
		}
		if !period.Start(ts).Equal(ts) {
			p.errorf("line %d: %s is not a %s period start", line, ts.Format(csvsink.DateLayout), period)
		}
		if i > 0 && !dates[i-1].IsZero() && !ts.After(dates[i-1]) {
			p.errorf("line %d: %s does not follow %s", line, ts.Format(csvsink.DateLayout), dates[i-1].Format(csvsink.DateLayout))
		}
	}
	return p
}

// ── Phase 3: Completeness ──

func validateCompleteness(header []string, rows [][]string) *phase {
	p := &phase{name: "Phase 3: Completeness"}

	for i, r := range rows {
		line := i + 2
		if len(r) != len(header) {
			p.errorf("line %d: %d fields, header has %d", line, len(r), len(header))
			continue
		}
		for j := 1; j < len(r); j++ {
			cell := strings.TrimSpace(r[j])
			if cell == "" {
				p.errorf("line %d: %s is empty", line, header[j])
				continue
			}
			if v, err := strconv.ParseFloat(cell, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("line %d: %s=%q is not a finite number", line, header[j], cell)
			}
		}
	}
	return p
}

// ── Phase 4: Derived Columns ──
// exchange_rate is the price ratio, the lag repeats the previous period's
// price when that period is present, and stock_to_use is constant within a
// calendar year.

func validateDerived(header []string, rows [][]string, dates []time.Time, period domain.Period) *phase {
	p := &phase{name: "Phase 4: Derived Columns"}

	col := func(name string) []float64 {
		j := slices.Index(header, name)
		if j < 0 {
			return nil
		}
		out := make([]float64, len(rows))
		for i, r := range rows {
			out[i] = math.NaN()
			if j < len(r) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(r[j]), 64); err == nil {
					out[i] = v
				}
			}
		}
		return out
	}

	local, foreign := col(domain.ColumnPriceLocal), col(domain.ColumnPriceForeign)
	rate, lag := col(domain.ColumnExchangeRate), col(domain.ColumnPriceLocalLag1)
	stock := col(domain.ColumnStockToUse)
	if local == nil || foreign == nil || rate == nil || lag == nil || stock == nil {
		p.errorf("derived columns missing, see column layout")
		return p
	}

	stockByYear := map[int]float64{}
	for i := range rows {
		line := i + 2
		if foreign[i] != 0 && !floatEq(rate[i], local[i]/foreign[i]) {
			p.errorf("line %d: exchange_rate %v, want %v", line, rate[i], local[i]/foreign[i])
		}
		if i > 0 && !dates[i].IsZero() && period.Next(dates[i-1]).Equal(dates[i]) && !floatEq(lag[i], local[i-1]) {
			p.errorf("line %d: price_local_lag1 %v, previous price_local %v", line, lag[i], local[i-1])
		}
		if dates[i].IsZero() {
			continue
		}
		year := dates[i].Year()
		if prev, ok := stockByYear[year]; ok && !floatEq(prev, stock[i]) {
			p.errorf("line %d: stock_to_use %v differs from %v earlier in %d", line, stock[i], prev, year)
		} else if !ok {
			stockByYear[year] = stock[i]
		}
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
