package search

import (
	"context"
	"time"

	"namesearch/internal/domain"
)

// Searcher runs the expensive part of a filter pass.
// Implementations must return ctx.Err() promptly once ctx is cancelled.
type Searcher interface {
	Search(ctx context.Context, query string, catalog *domain.Catalog) ([]*domain.Person, error)
}

// SearcherFunc adapts a function to the Searcher interface
type SearcherFunc func(ctx context.Context, query string, catalog *domain.Catalog) ([]*domain.Person, error)

// Search calls f
func (f SearcherFunc) Search(ctx context.Context, query string, catalog *domain.Catalog) ([]*domain.Person, error) {
	return f(ctx, query, catalog)
}

// SimulatedSearcher stands in for a slow backend: it waits Latency and then
// filters the catalog in memory.
type SimulatedSearcher struct {
	Latency time.Duration
}

// Search waits out the simulated latency and filters the catalog
func (s SimulatedSearcher) Search(ctx context.Context, query string, catalog *domain.Catalog) ([]*domain.Person, error) {
	if err := Delay(ctx, s.Latency); err != nil {
		return nil, err
	}
	return catalog.Filter(query), nil
}

// Delay blocks for d or until ctx is done, whichever comes first.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
