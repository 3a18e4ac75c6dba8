package staging

import (
	"context"
	"sync"

	"bristolgate/pkg/contracts/domain"
)

// SliceSource is a FactSource over an in-memory fact list.
type SliceSource struct {
	name  string
	facts []domain.Fact
}

// NewSliceSource creates a source named name over facts.
func NewSliceSource(name string, facts []domain.Fact) *SliceSource {
	return &SliceSource{name: name, facts: facts}
}

// Name implements FactSource.
func (s *SliceSource) Name() string {
	return s.name
}

// Facts implements FactSource.
func (s *SliceSource) Facts(ctx context.Context) ([]domain.Fact, error) {
	out := make([]domain.Fact, len(s.facts))
	copy(out, s.facts)
	return out, nil
}

// MemoryCatalog is an in-memory CatalogStore. Safe for concurrent
// use; feature workers append to it from the pool.
type MemoryCatalog struct {
	mu      sync.RWMutex
	records map[string]domain.SymbolRecord
	order   []string
}

// NewMemoryCatalog creates an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{records: make(map[string]domain.SymbolRecord)}
}

// Exists implements CatalogStore.
func (c *MemoryCatalog) Exists(ctx context.Context, symbol string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[symbol]
	return ok, nil
}

// Get implements CatalogStore.
func (c *MemoryCatalog) Get(ctx context.Context, symbol string) (domain.SymbolRecord, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[symbol]
	return rec, ok, nil
}

// Append implements CatalogStore. The first record for a symbol
// wins; later appends for the same symbol are ignored.
func (c *MemoryCatalog) Append(ctx context.Context, rec domain.SymbolRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[rec.Symbol]; ok {
		return nil
	}
	c.records[rec.Symbol] = rec
	c.order = append(c.order, rec.Symbol)
	return nil
}

// Symbols implements CatalogStore.
func (c *MemoryCatalog) Symbols(ctx context.Context) ([]domain.SymbolRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.SymbolRecord, 0, len(c.order))
	for _, symbol := range c.order {
		out = append(out, c.records[symbol])
	}
	return out, nil
}

// Len returns the number of cataloged symbols.
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
