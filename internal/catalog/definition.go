// Package catalog evaluates the fixed set of derived economic
// series over the daily grid. Definitions run in declared order so
// later entries can consume earlier outputs; a definition whose
// inputs are missing is skipped and reported, never fatal.
package catalog

import (
	"bristolgate/internal/grid"
)

// Rule computes a derived column. The evaluator guarantees every
// declared component is present in the frame before calling it.
type Rule func(f *grid.Frame) []float64

// SeriesDefinition declares one derived series. Source is the
// catalog tag recorded with its metadata; empty means "Calc".
type SeriesDefinition struct {
	Name        string
	Components  []string
	Rule        Rule
	Description string
	Unit        string
	Source      string
}

// Status is the outcome of one definition in a run.
type Status string

const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
	StatusErrored Status = "errored"
)

// Result records the outcome of one definition.
type Result struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Report aggregates the outcomes of an evaluator run.
type Report struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errored int      `json:"errored"`
	Results []Result `json:"results"`
}

func (r *Report) record(res Result) {
	switch res.Status {
	case StatusCreated:
		r.Created++
	case StatusSkipped:
		r.Skipped++
	case StatusErrored:
		r.Errored++
	}
	r.Results = append(r.Results, res)
}
