// Package products exposes the product lookup port used by the research
// agent. The actual search/index service lives elsewhere; only its contract
// is defined here.
package products

import (
	"context"
	"strings"
)

// Product is one catalogue entry returned by a search.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Searcher is the product search capability port.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Product, error)
}

// MemorySearcher serves a fixed catalogue with naive substring matching.
// Used in development and tests.
type MemorySearcher struct {
	catalogue []Product
}

func NewMemorySearcher(catalogue []Product) *MemorySearcher {
	return &MemorySearcher{catalogue: catalogue}
}

func (s *MemorySearcher) Search(ctx context.Context, query string) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Product
	for _, p := range s.catalogue {
		if query == "" ||
			strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ Searcher = (*MemorySearcher)(nil)
