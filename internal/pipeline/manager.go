package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "bristolgate/internal/errors"
	"bristolgate/internal/infrastructure"
	"bristolgate/internal/staging"
)

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID     string        `json:"run_id"`
	Stages    []*StageState `json:"stages"`
	Duration  time.Duration `json:"duration"`
	Succeeded bool          `json:"succeeded"`
}

// Manager executes stages sequentially over one shared run state.
// Recoverable stage errors are recorded and the run continues; a
// fatal error fails the run and skips the remaining stages.
type Manager struct {
	stages  []Stage
	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMetrics attaches pipeline instruments to the run.
func WithMetrics(metrics *infrastructure.PipelineMetrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithTracer wraps the run and every stage in a span.
func WithTracer(tracer trace.Tracer) ManagerOption {
	return func(m *Manager) { m.tracer = tracer }
}

// NewManager creates a manager over the given stages in order.
func NewManager(stages []Stage, opts ...ManagerOption) *Manager {
	m := &Manager{
		stages: stages,
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes every stage against state. The returned report always
// covers all stages, including those skipped after a fatal failure.
func (m *Manager) Run(ctx context.Context, store staging.CatalogStore) (*State, *RunReport, error) {
	// The caller's trace id, when present, doubles as the run id so
	// logs and spans correlate end to end.
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)
	logger := infrastructure.LoggerWithContext(ctx)

	ctx, runSpan := m.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer runSpan.End()

	state := &State{RunID: runID, Catalog: store}
	report := &RunReport{RunID: runID}
	start := time.Now()

	logger.Info("pipeline run starting", slog.Int("stages", len(m.stages)))

	if m.metrics != nil {
		m.metrics.ActiveRuns.Add(ctx, 1)
		defer m.metrics.ActiveRuns.Add(ctx, -1)
	}

	var runErr error
	for _, stage := range m.stages {
		st := NewStageState(stage.ID(), stage.Name())
		report.Stages = append(report.Stages, st)

		if runErr != nil {
			st.Skip("earlier stage failed")
			continue
		}
		if err := ctx.Err(); err != nil {
			st.Skip("run cancelled")
			runErr = err
			continue
		}

		st.Start()
		stageCtx, span := m.tracer.Start(ctx, "pipeline.stage."+stage.ID(),
			trace.WithAttributes(attribute.String("stage.id", stage.ID())))
		err := stage.Run(stageCtx, state)
		if err != nil {
			infrastructure.RecordError(stageCtx, err)
		}
		span.End()
		infrastructure.RecordStageMetrics(ctx, m.metrics, runID, stage.ID(), st.Duration(), err)

		if err != nil {
			st.Fail(err)
			if apperrors.IsFatal(err) {
				logger.Error("stage failed, aborting run",
					slog.String("stage", stage.ID()),
					slog.String("error", err.Error()))
				runErr = err
				continue
			}
			if state.Grid == nil {
				// Nothing downstream can run without the grid.
				logger.Error("no grid after stage failure, aborting run",
					slog.String("stage", stage.ID()),
					slog.String("error", err.Error()))
				runErr = err
				continue
			}
			// Recoverable: the stage skipped its bad units itself.
			logger.Warn("stage reported recoverable error, continuing",
				slog.String("stage", stage.ID()),
				slog.String("error", err.Error()))
			continue
		}

		st.Complete()
		logger.Info("stage complete",
			slog.String("stage", stage.ID()),
			slog.Duration("duration", st.Duration()))
	}

	report.Duration = time.Since(start)
	report.Succeeded = runErr == nil
	m.recordRunMetrics(ctx, state)
	if runErr != nil {
		infrastructure.RecordError(ctx, runErr)
	}

	logger.Info("pipeline run finished",
		slog.Bool("succeeded", report.Succeeded),
		slog.Duration("duration", report.Duration))

	return state, report, runErr
}

func (m *Manager) recordRunMetrics(ctx context.Context, state *State) {
	if m.metrics == nil {
		return
	}
	m.metrics.FactsLoaded.Add(ctx, int64(state.FactsLoaded))
	m.metrics.SeriesCreated.Add(ctx, int64(state.Aggregation.Created+state.Domain.Created))
	m.metrics.SeriesSkipped.Add(ctx, int64(state.Aggregation.Skipped+state.Domain.Skipped))
	m.metrics.FeaturesCreated.Add(ctx, int64(state.Features.Created))
	m.metrics.FeaturesSkipped.Add(ctx, int64(state.Features.Skipped))
	m.metrics.SymbolsFailed.Add(ctx, int64(len(state.Features.FailedSymbols)))
	m.metrics.RegimeEpisodes.Add(ctx, int64(state.Regime.Episodes))
}

// DefaultStages wires the standard six-stage run.
func DefaultStages(sources []staging.FactSource, cfg StagesConfig) []Stage {
	return []Stage{
		NewNormalizeStage(sources, cfg.Build),
		NewAggregateStage(cfg.Definitions),
		NewFeatureStage(cfg.Workers, cfg.YearLength),
		NewDomainStage(cfg.DomainDefinitions),
		NewRegimeStage(cfg.RegimeColumn, cfg.RegimeOptions...),
		NewPersistStage(cfg.Exporter),
	}
}
