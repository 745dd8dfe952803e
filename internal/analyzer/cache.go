package analyzer

import (
	"context"
	"strings"
	"sync"
	"time"

	"IndexRange/internal/model"
)

// Key identifies a batch by its index set and date boundaries.
func Key(indices []model.IndexDefinition, p model.Period) string {
	var b strings.Builder
	for _, d := range indices {
		b.WriteString(d.ID)
		b.WriteByte('=')
		b.WriteString(d.Symbol)
		b.WriteByte(';')
	}
	b.WriteByte('|')
	b.WriteString(p.Key())
	return b.String()
}

// DefaultComputeTimeout bounds one batch computation.
const DefaultComputeTimeout = 5 * time.Minute

// Cache memoizes batches per key until Invalidate is called.
type Cache struct {
	// Timeout bounds a computation, which ignores the caller's cancellation.
	Timeout time.Duration

	mu       sync.Mutex
	analyzer *Analyzer
	batches  map[string]*model.Batch
}

// NewCache wraps an Analyzer with memoization.
func NewCache(a *Analyzer) *Cache {
	return &Cache{Timeout: DefaultComputeTimeout, analyzer: a, batches: make(map[string]*model.Batch)}
}

// Get returns the memoized batch for the period, computing it on a miss.
func (c *Cache) Get(ctx context.Context, p model.Period) *model.Batch {
	key := Key(c.analyzer.Indices, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.batches[key]; ok {
		return b
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultComputeTimeout
	}
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	b := c.analyzer.Run(runCtx, p)
	if runCtx.Err() != nil {
		c.analyzer.logger.Warn().Err(runCtx.Err()).Str("period", p.Key()).Msg("batch computation timed out, not memoized")
		return b
	}
	c.batches[key] = b
	return b
}

// Cached returns the memoized batch without computing it.
func (c *Cache) Cached(p model.Period) (*model.Batch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.batches[Key(c.analyzer.Indices, p)]
	return b, ok
}

// Invalidate drops every memoized batch.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = make(map[string]*model.Batch)
	c.analyzer.logger.Info().Msg("batch cache cleared")
}
