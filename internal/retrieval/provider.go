package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable indicates the document index is unreachable or misconfigured.
var ErrUnavailable = errors.New("retrieval store unavailable")

// Searcher is the read-only handle to the document index. Each call re-runs
// the search and returns chunks ranked most-relevant first.
type Searcher interface {
	Search(ctx context.Context, query string, size int) ([]Chunk, error)
}

// Provider owns the process-wide document index handle. The handle is opened
// lazily on first use and reused by every later invocation. A failed open is
// not cached, so a later call may retry.
type Provider struct {
	mu     sync.Mutex
	open   func(ctx context.Context) (Searcher, error)
	handle Searcher
}

// NewProvider creates a Provider that opens the index handle with open.
func NewProvider(open func(ctx context.Context) (Searcher, error)) *Provider {
	return &Provider{open: open}
}

// Get returns the shared index handle, opening it on first call.
func (p *Provider) Get(ctx context.Context) (Searcher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != nil {
		return p.handle, nil
	}

	handle, err := p.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open retrieval handle: %w: %w", ErrUnavailable, err)
	}

	p.handle = handle
	return p.handle, nil
}
