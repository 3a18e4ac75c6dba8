package features

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "bristolgate/internal/errors"
	"bristolgate/internal/grid"
	"bristolgate/internal/staging"
	"bristolgate/pkg/contracts/domain"
)

// Report summarizes one generator run for the data quality audit.
type Report struct {
	Created       int      `json:"created"`
	Skipped       int      `json:"skipped"`
	FailedSymbols []string `json:"failed_symbols,omitempty"`
}

// Generator fans the indicator battery out over the grid's base
// columns on a bounded worker pool.
type Generator struct {
	store      staging.CatalogStore
	workers    int
	yearLength int
}

// NewGenerator creates a generator writing metadata to store.
// workers bounds the pool; yearLength is the day count of one year
// for the lagged transforms. Non-positive arguments get defaults.
func NewGenerator(store staging.CatalogStore, workers, yearLength int) *Generator {
	if workers <= 0 {
		workers = 6
	}
	if yearLength <= 0 {
		yearLength = 365
	}
	return &Generator{store: store, workers: workers, yearLength: yearLength}
}

// Run computes the battery for every column currently in the frame.
// Each symbol is one pool task over an isolated copy of its column;
// a task that fails or panics discards only that symbol's output.
// Results merge back in deterministic column order after the join
// barrier, so the produced column set never depends on scheduling.
func (g *Generator) Run(ctx context.Context, frame *grid.Frame) (Report, error) {
	var report Report

	bases := frame.Columns()
	results := make([][]feature, len(bases))
	failures := make([]error, len(bases))

	eg, taskCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, base := range bases {
		if err := ctx.Err(); err != nil {
			break
		}
		vals, ok := frame.CloneColumn(base)
		if !ok {
			continue
		}
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failures[i] = apperrors.WorkerFailure(base, fmt.Errorf("panic: %v", r))
				}
			}()
			results[i] = computeBattery(taskCtx, base, vals, g.yearLength)
			// Per-symbol failures never cancel the group.
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	for i, base := range bases {
		if failures[i] != nil {
			slog.WarnContext(ctx, "discarding symbol features after worker failure",
				slog.String("symbol", base),
				slog.String("error", failures[i].Error()))
			report.FailedSymbols = append(report.FailedSymbols, base)
			continue
		}
		baseDescr, err := g.describeBase(ctx, base)
		if err != nil {
			return report, err
		}
		for _, ft := range results[i] {
			if frame.HasColumn(ft.Name) {
				continue
			}
			if err := frame.AddColumn(ft.Name, ft.Values); err != nil {
				return report, err
			}
			if err := g.appendMetadata(ctx, ft, base, baseDescr); err != nil {
				return report, err
			}
			if ft.Skipped {
				report.Skipped++
			} else {
				report.Created++
			}
		}
	}

	slog.InfoContext(ctx, "feature generation complete",
		slog.Int("symbols", len(bases)),
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed_symbols", len(report.FailedSymbols)))
	return report, nil
}

func (g *Generator) appendMetadata(ctx context.Context, ft feature, base, baseDescr string) error {
	exists, err := g.store.Exists(ctx, ft.Name)
	if err != nil {
		return fmt.Errorf("catalog lookup for %s: %w", ft.Name, err)
	}
	if exists {
		return nil
	}

	description := ft.Description
	if baseDescr != "" {
		description = strings.Replace(ft.Description, base, baseDescr, 1)
	}
	source := domain.SourceFeature
	if ft.Skipped {
		source = domain.SourceSkipped
	}
	rec := domain.SymbolRecord{
		Symbol:      ft.Name,
		Source:      source,
		Description: description,
		Unit:        ft.Unit,
	}
	if err := g.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("catalog append for %s: %w", ft.Name, err)
	}
	return nil
}

var quoteSuffixes = []string{"_open", "_high", "_low", "_close", "_volume"}

// describeBase resolves a human description for a base column from
// the catalog, falling back to the root symbol for quote columns
// like ^GSPC_close.
func (g *Generator) describeBase(ctx context.Context, base string) (string, error) {
	rec, found, err := g.store.Get(ctx, base)
	if err != nil {
		return "", fmt.Errorf("catalog lookup for %s: %w", base, err)
	}
	if found && rec.Description != "" {
		return rec.Description, nil
	}
	for _, suffix := range quoteSuffixes {
		if !strings.HasSuffix(base, suffix) {
			continue
		}
		root := strings.TrimSuffix(base, suffix)
		rec, found, err = g.store.Get(ctx, root)
		if err != nil {
			return "", fmt.Errorf("catalog lookup for %s: %w", root, err)
		}
		if found && rec.Description != "" {
			return rec.Description + " " + strings.TrimPrefix(suffix, "_"), nil
		}
	}
	return "", nil
}
