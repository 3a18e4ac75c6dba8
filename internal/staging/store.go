// Package staging connects the pipeline to its staged inputs: fact
// sources holding raw observations and the append-only symbol
// metadata catalog.
package staging

import (
	"context"

	"bristolgate/pkg/contracts/domain"
)

// FactSource yields the staged observations of one upstream table
// or file, already flattened to series names.
type FactSource interface {
	// Name identifies the source in logs and reports.
	Name() string
	// Facts reads every staged observation. A source that cannot be
	// read is a fatal error; the run does not continue without it.
	Facts(ctx context.Context) ([]domain.Fact, error)
}

// CatalogStore is the symbol metadata catalog. Records are append
// only and deduplicated by symbol: callers check Exists before
// Append and never overwrite.
type CatalogStore interface {
	Exists(ctx context.Context, symbol string) (bool, error)
	Get(ctx context.Context, symbol string) (domain.SymbolRecord, bool, error)
	Append(ctx context.Context, rec domain.SymbolRecord) error
	Symbols(ctx context.Context) ([]domain.SymbolRecord, error)
}

// SeriesName flattens a symbol and field into the grid column name.
// The bare symbol is used for single-value series; quote fields get
// a suffix, e.g. GSPC_close.
func SeriesName(symbol, field string) string {
	if field == "" || field == "value" {
		return symbol
	}
	return symbol + "_" + field
}
