package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"bristolgate/internal/grid"
	"bristolgate/internal/staging"
	"bristolgate/pkg/contracts/domain"
)

// Evaluator runs a definition catalog over a frame, appending one
// column and one metadata record per satisfied definition.
type Evaluator struct {
	store staging.CatalogStore
	defs  []SeriesDefinition
}

// NewEvaluator creates an evaluator over defs backed by store.
func NewEvaluator(store staging.CatalogStore, defs []SeriesDefinition) *Evaluator {
	return &Evaluator{store: store, defs: defs}
}

// Run evaluates every definition in declared order. Missing
// components and invalid definitions skip that one entry; only
// catalog store failures abort. Metadata appends are deduplicated
// by symbol, so re-running over an unchanged grid grows nothing.
func (e *Evaluator) Run(ctx context.Context, frame *grid.Frame) (Report, error) {
	var report Report

	for _, def := range e.defs {
		if selfReferential(def) {
			slog.WarnContext(ctx, "definition names itself as component",
				slog.String("definition", def.Name))
			report.record(Result{Name: def.Name, Status: StatusErrored, Reason: "self-referential definition"})
			continue
		}

		if frame.HasColumn(def.Name) {
			// Column survives from an earlier run; only make sure
			// the metadata exists.
			if err := e.appendMetadata(ctx, def); err != nil {
				return report, err
			}
			report.record(Result{Name: def.Name, Status: StatusSkipped, Reason: "column already present"})
			continue
		}

		if missing := missingComponents(frame, def); missing != "" {
			slog.WarnContext(ctx, "skipping derived series, component not in grid",
				slog.String("definition", def.Name),
				slog.String("missing", missing))
			report.record(Result{Name: def.Name, Status: StatusSkipped, Reason: "missing component " + missing})
			continue
		}

		vals := def.Rule(frame)
		if err := frame.AddColumn(def.Name, vals); err != nil {
			slog.WarnContext(ctx, "could not append derived series",
				slog.String("definition", def.Name),
				slog.String("error", err.Error()))
			report.record(Result{Name: def.Name, Status: StatusErrored, Reason: err.Error()})
			continue
		}

		if err := e.appendMetadata(ctx, def); err != nil {
			return report, err
		}
		report.record(Result{Name: def.Name, Status: StatusCreated})
	}

	slog.InfoContext(ctx, "derived series evaluation complete",
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
		slog.Int("errored", report.Errored))
	return report, nil
}

func (e *Evaluator) appendMetadata(ctx context.Context, def SeriesDefinition) error {
	exists, err := e.store.Exists(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("catalog lookup for %s: %w", def.Name, err)
	}
	if exists {
		return nil
	}
	source := def.Source
	if source == "" {
		source = domain.SourceCalc
	}
	rec := domain.SymbolRecord{
		Symbol:      def.Name,
		Source:      source,
		Description: def.Description,
		Unit:        def.Unit,
	}
	if err := e.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("catalog append for %s: %w", def.Name, err)
	}
	return nil
}

func selfReferential(def SeriesDefinition) bool {
	for _, comp := range def.Components {
		if comp == def.Name {
			return true
		}
	}
	return false
}

func missingComponents(frame *grid.Frame, def SeriesDefinition) string {
	for _, comp := range def.Components {
		if !frame.HasColumn(comp) {
			return comp
		}
	}
	return ""
}
