package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "bristolgate/internal/errors"
	"bristolgate/internal/grid"
	"bristolgate/internal/infrastructure"
	"bristolgate/internal/staging"
)

type fakeStage struct {
	id   string
	err  error
	ran  bool
	hook func(state *State)
}

func (f *fakeStage) ID() string   { return f.id }
func (f *fakeStage) Name() string { return "Fake " + f.id }

func (f *fakeStage) Run(ctx context.Context, state *State) error {
	f.ran = true
	if f.hook != nil {
		f.hook(state)
	}
	return f.err
}

func testGrid(t *testing.T) *grid.Frame {
	t.Helper()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	f, err := grid.New(start, start.AddDate(0, 0, 9))
	require.NoError(t, err)
	return f
}

func TestManager_AllStagesComplete(t *testing.T) {
	stages := []*fakeStage{{id: "one"}, {id: "two"}, {id: "three"}}
	m := NewManager([]Stage{stages[0], stages[1], stages[2]})

	state, report, err := m.Run(context.Background(), staging.NewMemoryCatalog())
	require.NoError(t, err)
	assert.True(t, report.Succeeded)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, report.RunID, state.RunID)

	require.Len(t, report.Stages, 3)
	for i, st := range report.Stages {
		assert.True(t, stages[i].ran)
		assert.Equal(t, StageStatusCompleted, st.CurrentStatus())
	}
}

func TestManager_RecoverableErrorContinues(t *testing.T) {
	first := &fakeStage{id: "one", hook: func(state *State) {
		state.Grid = testGrid(t)
	}}
	bad := &fakeStage{id: "two", err: apperrors.DegenerateSignal("GDP", "too sparse")}
	last := &fakeStage{id: "three"}
	m := NewManager([]Stage{first, bad, last})

	_, report, err := m.Run(context.Background(), staging.NewMemoryCatalog())
	require.NoError(t, err)
	assert.True(t, report.Succeeded)

	assert.Equal(t, StageStatusFailed, report.Stages[1].CurrentStatus())
	assert.True(t, last.ran, "recoverable failures must not stop the run")
	assert.Equal(t, StageStatusCompleted, report.Stages[2].CurrentStatus())
}

func TestManager_FatalErrorAborts(t *testing.T) {
	fatal := &fakeStage{id: "two", err: apperrors.FatalIO("grid.csv", errors.New("disk full"))}
	last := &fakeStage{id: "three"}
	m := NewManager([]Stage{&fakeStage{id: "one"}, fatal, last})

	_, report, err := m.Run(context.Background(), staging.NewMemoryCatalog())
	require.Error(t, err)
	assert.Equal(t, apperrors.ClassFatalIO, apperrors.ClassOf(err))
	assert.False(t, report.Succeeded)

	assert.Equal(t, StageStatusCompleted, report.Stages[0].CurrentStatus())
	assert.Equal(t, StageStatusFailed, report.Stages[1].CurrentStatus())
	assert.Equal(t, StageStatusSkipped, report.Stages[2].CurrentStatus())
	assert.False(t, last.ran)
}

func TestManager_UnclassifiedErrorIsFatal(t *testing.T) {
	bad := &fakeStage{id: "one", err: errors.New("something unexpected")}
	last := &fakeStage{id: "two"}
	m := NewManager([]Stage{bad, last})

	_, report, err := m.Run(context.Background(), staging.NewMemoryCatalog())
	require.Error(t, err)
	assert.False(t, report.Succeeded)
	assert.False(t, last.ran)
}

func TestManager_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := &fakeStage{id: "one"}
	m := NewManager([]Stage{stage})

	_, report, err := m.Run(ctx, staging.NewMemoryCatalog())
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, stage.ran)
	assert.Equal(t, StageStatusSkipped, report.Stages[0].CurrentStatus())
}

func TestManager_RunIDsAreUnique(t *testing.T) {
	m := NewManager([]Stage{&fakeStage{id: "one"}})

	_, first, err := m.Run(context.Background(), staging.NewMemoryCatalog())
	require.NoError(t, err)
	_, second, err := m.Run(context.Background(), staging.NewMemoryCatalog())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestManager_ReusesCallerTraceID(t *testing.T) {
	m := NewManager([]Stage{&fakeStage{id: "one"}})

	ctx := infrastructure.WithTraceID(context.Background(), "run-abc")
	state, report, err := m.Run(ctx, staging.NewMemoryCatalog())
	require.NoError(t, err)

	// an already-traced context supplies the run id, so logs emitted
	// by the caller and by the stages correlate
	assert.Equal(t, "run-abc", report.RunID)
	assert.Equal(t, "run-abc", state.RunID)
}

func TestManager_StageSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	first := &fakeStage{id: "one", hook: func(state *State) {
		state.Grid = testGrid(t)
	}}
	fatal := &fakeStage{id: "two", err: apperrors.FatalIO("grid.csv", errors.New("disk full"))}
	m := NewManager([]Stage{first, fatal}, WithTracer(tp.Tracer("test")))

	_, _, err := m.Run(context.Background(), staging.NewMemoryCatalog())
	require.Error(t, err)

	spans := recorder.Ended()
	names := make(map[string]sdktrace.ReadOnlySpan, len(spans))
	for _, span := range spans {
		names[span.Name()] = span
	}

	require.Contains(t, names, "pipeline.run")
	require.Contains(t, names, "pipeline.stage.one")
	require.Contains(t, names, "pipeline.stage.two")

	// the failing stage carries the error, its sibling stays clean
	assert.Equal(t, codes.Error, names["pipeline.stage.two"].Status().Code)
	assert.NotEqual(t, codes.Error, names["pipeline.stage.one"].Status().Code)
	assert.Equal(t, codes.Error, names["pipeline.run"].Status().Code)

	// stage spans nest under the run span
	runSpanID := names["pipeline.run"].SpanContext().SpanID()
	assert.Equal(t, runSpanID, names["pipeline.stage.one"].Parent().SpanID())
}

func TestStageState_Transitions(t *testing.T) {
	st := NewStageState("features", "Feature Battery")
	assert.Equal(t, StageStatusPending, st.CurrentStatus())
	assert.Zero(t, st.Duration())

	st.Start()
	assert.Equal(t, StageStatusActive, st.CurrentStatus())

	st.Complete()
	assert.Equal(t, StageStatusCompleted, st.CurrentStatus())
	assert.GreaterOrEqual(t, st.Duration(), st.EndTime.Sub(*st.StartTime))
}
