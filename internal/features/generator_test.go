package features

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bristolgate/internal/grid"
	"bristolgate/internal/staging"
	"bristolgate/pkg/contracts/domain"
)

func testFrame(t *testing.T, rows int, columns map[string][]float64) *grid.Frame {
	t.Helper()
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	f, err := grid.New(start, start.AddDate(0, 0, rows-1))
	require.NoError(t, err)
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		require.NoError(t, f.AddColumn(name, columns[name]))
	}
	return f
}

func rising(rows int, base, step float64) []float64 {
	out := make([]float64, rows)
	for i := range out {
		out[i] = base + step*float64(i)
	}
	return out
}

func TestGenerator_Run(t *testing.T) {
	ctx := context.Background()
	const rows = 800
	f := testFrame(t, rows, map[string][]float64{
		"GDP":         rising(rows, 20000, 1),
		"^GSPC_close": rising(rows, 3000, 0.5),
	})
	store := staging.NewMemoryCatalog()

	report, err := NewGenerator(store, 4, 365).Run(ctx, f)
	require.NoError(t, err)

	// ten features per base column
	assert.Len(t, f.Columns(), 2+2*10)
	assert.Equal(t, 20, report.Created+report.Skipped)
	assert.Empty(t, report.FailedSymbols)

	yoy, ok := f.Column("GDP_YoY")
	require.True(t, ok)
	want := (20365.0/20000.0 - 1) * 100
	assert.InDelta(t, want, yoy[365], 1e-9)

	// metadata present for every created feature
	rec, found, err := store.Get(ctx, "^GSPC_close_mva050")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SourceFeature, rec.Source)
}

func TestGenerator_SkippedAverageFlaggedInCatalog(t *testing.T) {
	ctx := context.Background()
	f := testFrame(t, 100, map[string][]float64{"X": rising(100, 1, 1)})
	store := staging.NewMemoryCatalog()

	report, err := NewGenerator(store, 2, 365).Run(ctx, f)
	require.NoError(t, err)
	assert.Positive(t, report.Skipped)

	// the column exists but is flagged, keeping the schema stable
	vals, ok := f.Column("X_mva365")
	require.True(t, ok)
	assert.True(t, grid.AllNull(vals))

	rec, found, err := store.Get(ctx, "X_mva365")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SourceSkipped, rec.Source)
}

func TestGenerator_DescriptionEnrichment(t *testing.T) {
	ctx := context.Background()
	f := testFrame(t, 60, map[string][]float64{"^GSPC_close": rising(60, 3000, 1)})
	store := staging.NewMemoryCatalog()
	require.NoError(t, store.Append(ctx, domain.SymbolRecord{
		Symbol:      "^GSPC",
		Source:      "Yahoo",
		Description: "S&P 500 Index",
	}))

	_, err := NewGenerator(store, 1, 365).Run(ctx, f)
	require.NoError(t, err)

	rec, found, err := store.Get(ctx, "^GSPC_close_mva050")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, rec.Description, "S&P 500 Index")
}

func TestGenerator_DeterministicColumnOrder(t *testing.T) {
	ctx := context.Background()
	build := func() []string {
		f := testFrame(t, 120, map[string][]float64{
			"A": rising(120, 1, 1),
			"B": rising(120, 2, 1),
			"C": rising(120, 3, 1),
		})
		_, err := NewGenerator(staging.NewMemoryCatalog(), 3, 365).Run(ctx, f)
		require.NoError(t, err)
		return f.Columns()
	}

	first := build()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, build(), "column order must not depend on scheduling")
	}
}

func TestGenerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := testFrame(t, 50, map[string][]float64{"X": rising(50, 1, 1)})
	_, err := NewGenerator(staging.NewMemoryCatalog(), 2, 365).Run(ctx, f)
	assert.ErrorIs(t, err, context.Canceled)
}
