// Package pipeline sequences the feature synthesis run: normalize
// staged facts into the daily grid, evaluate the derived series
// catalog, generate the indicator battery, label regime initiation
// windows and persist the artifacts.
package pipeline

import (
	"context"
	"sync"
	"time"

	"bristolgate/internal/catalog"
	"bristolgate/internal/features"
	"bristolgate/internal/grid"
	"bristolgate/internal/regime"
	"bristolgate/internal/staging"
)

// Stage is one sequential step of a run.
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// Run executes the stage against the shared run state
	Run(ctx context.Context, state *State) error
}

// State carries the run's shared data across stages. Stages read what
// earlier stages produced and write their own results.
type State struct {
	RunID   string
	Grid    *grid.Frame
	Catalog staging.CatalogStore

	// FactsLoaded counts the staged observations the normalize stage
	// consumed.
	FactsLoaded int

	Aggregation catalog.Report
	Features    features.Report
	Domain      catalog.Report
	Regime      regime.Report

	// Artifacts lists the file paths the persist stage wrote.
	Artifacts []string
}

// StageStatus represents the current status of a stage
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
)

// StageState represents the runtime state of a stage
type StageState struct {
	mu        sync.RWMutex
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Status    StageStatus `json:"status"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Message   string      `json:"message,omitempty"`
	Err       error       `json:"-"`
}

// NewStageState creates a new stage state with default values
func NewStageState(id, name string) *StageState {
	return &StageState{
		ID:     id,
		Name:   name,
		Status: StageStatusPending,
	}
}

// Start marks the stage as active and sets the start time
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StageStatusActive
}

// Complete marks the stage as completed and sets the end time
func (s *StageState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusCompleted
}

// Fail marks the stage as failed with the given error
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusFailed
	s.Err = err
}

// Skip marks the stage as skipped with the given reason
func (s *StageState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusSkipped
	s.Message = reason
}

// CurrentStatus returns the status under the read lock
func (s *StageState) CurrentStatus() StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the stage execution
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}
