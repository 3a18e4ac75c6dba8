// Package grid holds the dense daily wide table that every pipeline
// stage reads from and appends to. Columns are float64 series with
// NaN standing in for null; the date index is gapless, one row per
// calendar day.
package grid

import (
	"fmt"
	"math"
	"time"
)

// Frame is a date-indexed wide table. The index is fixed at build
// time; columns are append-only.
type Frame struct {
	start   time.Time
	dates   []time.Time
	order   []string
	columns map[string][]float64
}

// New creates an empty frame spanning [start, end] inclusive, one
// row per calendar day. Times are truncated to UTC midnight.
func New(start, end time.Time) (*Frame, error) {
	start = Day(start)
	end = Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("grid: end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	n := int(end.Sub(start).Hours()/24) + 1
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	return &Frame{
		start:   start,
		dates:   dates,
		columns: make(map[string][]float64),
	}, nil
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Rows returns the number of calendar days in the frame.
func (f *Frame) Rows() int {
	return len(f.dates)
}

// Start returns the first day of the index.
func (f *Frame) Start() time.Time {
	return f.start
}

// End returns the last day of the index.
func (f *Frame) End() time.Time {
	return f.dates[len(f.dates)-1]
}

// Dates returns the date index. Callers must not modify it.
func (f *Frame) Dates() []time.Time {
	return f.dates
}

// Date returns the calendar day at row i.
func (f *Frame) Date(i int) time.Time {
	return f.dates[i]
}

// Index returns the row for day t, or -1 when t is outside the frame.
func (f *Frame) Index(t time.Time) int {
	i := int(Day(t).Sub(f.start).Hours() / 24)
	if i < 0 || i >= len(f.dates) {
		return -1
	}
	return i
}

// AddColumn appends a named series. The name must be new and the
// length must match the index.
func (f *Frame) AddColumn(name string, values []float64) error {
	if name == "" {
		return fmt.Errorf("grid: empty column name")
	}
	if _, exists := f.columns[name]; exists {
		return fmt.Errorf("grid: column %q already exists", name)
	}
	if len(values) != len(f.dates) {
		return fmt.Errorf("grid: column %q has %d rows, index has %d", name, len(values), len(f.dates))
	}
	f.columns[name] = values
	f.order = append(f.order, name)
	return nil
}

// Column returns the series for name. The slice is live; callers
// that mutate must use CloneColumn instead.
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.columns[name]
	return col, ok
}

// CloneColumn returns an independent copy of the series for name.
func (f *Frame) CloneColumn(name string) ([]float64, bool) {
	col, ok := f.columns[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// HasColumn reports whether name is present.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// NullColumn returns an all-null series sized to the index.
func (f *Frame) NullColumn() []float64 {
	out := make([]float64, len(f.dates))
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// IsNull reports whether v is the null marker.
func IsNull(v float64) bool {
	return math.IsNaN(v)
}
