package domain

import (
	"fmt"
	"strings"
	"time"
)

// Period is the aggregation window of the panel. Every period is labelled by
// its first calendar day in UTC.
type Period string

const (
	Monthly   Period = "monthly"
	Quarterly Period = "quarterly"
	Annual    Period = "annual"
)

// ParsePeriod accepts "monthly", "quarterly" or "annual" (case-insensitive).
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Monthly, Quarterly, Annual:
		return p, nil
	default:
		return "", fmt.Errorf("unknown aggregation window %q", s)
	}
}

// Start returns the first day of the period containing t.
func (p Period) Start(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case Quarterly:
		month := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), month, 1, 0, 0, 0, 0, time.UTC)
	case Annual:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the period after the one containing t.
func (p Period) Next(t time.Time) time.Time {
	start := p.Start(t)
	switch p {
	case Quarterly:
		return start.AddDate(0, 3, 0)
	case Annual:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Range returns the contiguous period starts from the period containing first
// through the period containing last.
func (p Period) Range(first, last time.Time) []time.Time {
	var out []time.Time
	end := p.Start(last)
	for t := p.Start(first); !t.After(end); t = p.Next(t) {
		out = append(out, t)
	}
	return out
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
