package pipeline

import (
	"context"
	"log/slog"
	"time"

	"bristolgate/internal/catalog"
	apperrors "bristolgate/internal/errors"
	"bristolgate/internal/exporter"
	"bristolgate/internal/features"
	"bristolgate/internal/grid"
	"bristolgate/internal/regime"
	"bristolgate/internal/staging"
	"bristolgate/pkg/contracts/domain"
)

// StagesConfig collects everything the standard six-stage run needs.
type StagesConfig struct {
	Build             grid.BuildOptions
	Definitions       []catalog.SeriesDefinition
	DomainDefinitions []catalog.SeriesDefinition
	Workers           int
	YearLength        int
	RegimeColumn      string
	RegimeOptions     []regime.Option
	Exporter          *exporter.GridCSVStore
}

// Stage identifiers, in run order.
const (
	StageNormalize = "normalize"
	StageAggregate = "aggregate"
	StageFeatures  = "features"
	StageDomain    = "domain"
	StageRegime    = "regime"
	StagePersist   = "persist"
)

// NormalizeStage reads every staging source and pivots the facts
// into the dense daily grid.
type NormalizeStage struct {
	sources []staging.FactSource
	opts    grid.BuildOptions
}

// NewNormalizeStage creates the grid-building stage.
func NewNormalizeStage(sources []staging.FactSource, opts grid.BuildOptions) *NormalizeStage {
	return &NormalizeStage{sources: sources, opts: opts}
}

func (s *NormalizeStage) ID() string   { return StageNormalize }
func (s *NormalizeStage) Name() string { return "Grid Normalization" }

func (s *NormalizeStage) Run(ctx context.Context, state *State) error {
	var merged []domain.Fact
	for _, source := range s.sources {
		start := time.Now()
		batch, err := source.Facts(ctx)
		if err != nil {
			// An unreadable source aborts the run.
			return apperrors.Wrap(apperrors.ClassFatalIO, source.Name(), "reading staged facts", err)
		}
		slog.InfoContext(ctx, "staged facts loaded",
			slog.String("source", source.Name()),
			slog.Int("facts", len(batch)),
			slog.Duration("duration", time.Since(start)))
		merged = append(merged, batch...)
	}

	frame, err := grid.FromFacts(ctx, merged, s.opts)
	if err != nil {
		return err
	}

	state.Grid = frame
	state.FactsLoaded = len(merged)
	return nil
}

// AggregateStage evaluates the derived series catalog over the grid.
type AggregateStage struct {
	defs []catalog.SeriesDefinition
}

// NewAggregateStage creates the derived series stage over defs.
func NewAggregateStage(defs []catalog.SeriesDefinition) *AggregateStage {
	return &AggregateStage{defs: defs}
}

func (s *AggregateStage) ID() string   { return StageAggregate }
func (s *AggregateStage) Name() string { return "Derived Series" }

func (s *AggregateStage) Run(ctx context.Context, state *State) error {
	report, err := catalog.NewEvaluator(state.Catalog, s.defs).Run(ctx, state.Grid)
	state.Aggregation = report
	return err
}

// FeatureStage generates the indicator battery for every grid column.
type FeatureStage struct {
	workers    int
	yearLength int
}

// NewFeatureStage creates the battery stage.
func NewFeatureStage(workers, yearLength int) *FeatureStage {
	return &FeatureStage{workers: workers, yearLength: yearLength}
}

func (s *FeatureStage) ID() string   { return StageFeatures }
func (s *FeatureStage) Name() string { return "Feature Battery" }

func (s *FeatureStage) Run(ctx context.Context, state *State) error {
	report, err := features.NewGenerator(state.Catalog, s.workers, s.yearLength).Run(ctx, state.Grid)
	state.Features = report
	return err
}

// DomainStage evaluates the cross-symbol catalog that consumes the
// battery's outputs: crossovers of moving averages, smoothed
// unemployment derivatives, market-to-GDP ratios and equity curves.
// It must run after the battery so those components exist.
type DomainStage struct {
	defs []catalog.SeriesDefinition
}

// NewDomainStage creates the post-battery derived series stage.
func NewDomainStage(defs []catalog.SeriesDefinition) *DomainStage {
	return &DomainStage{defs: defs}
}

func (s *DomainStage) ID() string   { return StageDomain }
func (s *DomainStage) Name() string { return "Domain Series" }

func (s *DomainStage) Run(ctx context.Context, state *State) error {
	report, err := catalog.NewEvaluator(state.Catalog, s.defs).Run(ctx, state.Grid)
	state.Domain = report
	return err
}

// RegimeStage labels regime initiation windows from the configured
// indicator column.
type RegimeStage struct {
	column string
	opts   []regime.Option
}

// NewRegimeStage creates the labeling stage over the named column.
func NewRegimeStage(column string, opts ...regime.Option) *RegimeStage {
	return &RegimeStage{column: column, opts: opts}
}

func (s *RegimeStage) ID() string   { return StageRegime }
func (s *RegimeStage) Name() string { return "Regime Labeling" }

func (s *RegimeStage) Run(ctx context.Context, state *State) error {
	report, err := regime.NewLabeler(state.Catalog, s.opts...).Run(ctx, state.Grid, s.column)
	state.Regime = report
	return err
}

// PersistStage writes the featured grid and catalog snapshot.
type PersistStage struct {
	store *exporter.GridCSVStore
}

// NewPersistStage creates the artifact-writing stage.
func NewPersistStage(store *exporter.GridCSVStore) *PersistStage {
	return &PersistStage{store: store}
}

func (s *PersistStage) ID() string   { return StagePersist }
func (s *PersistStage) Name() string { return "Artifact Export" }

func (s *PersistStage) Run(ctx context.Context, state *State) error {
	gridPath, err := s.store.SaveGrid(ctx, state.Grid)
	if err != nil {
		return err
	}
	state.Artifacts = append(state.Artifacts, gridPath)

	records, err := state.Catalog.Symbols(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ClassFatalIO, "catalog", "reading symbol records", err)
	}
	catalogPath, err := s.store.SaveCatalog(ctx, records)
	if err != nil {
		return err
	}
	state.Artifacts = append(state.Artifacts, catalogPath)
	return nil
}
