package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/papercomputeco/gita/pkg/llm"
	"github.com/papercomputeco/gita/pkg/logger"
)

// DefaultBatchInterval is the pause between batch calls.
const DefaultBatchInterval = 800 * time.Millisecond

// BatchItem is the outcome of one request in a batch.
type BatchItem struct {
	Request Request
	Result  *Result
	Err     error

	// Skipped is set for requests never sent because the batch stopped
	// early on a rate-limit or quota failure.
	Skipped bool
}

// ProgressFunc is called after each item settles. done counts settled
// items, including skipped ones.
type ProgressFunc func(done, total int, item BatchItem)

// Batch runs many generation requests one at a time, paced so a bulk fill
// stays under the provider's rate limit.
type Batch struct {
	gen     Generator
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewBatch returns a Batch that waits at least interval between calls.
// A non-positive interval disables pacing.
func NewBatch(gen Generator, interval time.Duration, log *slog.Logger) *Batch {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Batch{
		gen:     gen,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log,
	}
}

// Run sends reqs in order and returns one item per request.
//
// A failed item does not stop the batch, except for rate-limit and quota
// failures: retrying those immediately only burns more quota, so every
// remaining request is marked Skipped. Cancelling ctx stops the batch the
// same way and Run returns the context error.
func (b *Batch) Run(ctx context.Context, reqs []Request, progress ProgressFunc) ([]BatchItem, error) {
	items := make([]BatchItem, len(reqs))
	for i, req := range reqs {
		items[i].Request = req
	}

	settle := func(i int) {
		if progress != nil {
			progress(i+1, len(items), items[i])
		}
	}

	skipFrom := func(i int, cause error) {
		for j := i; j < len(items); j++ {
			items[j].Skipped = true
			items[j].Err = cause
			settle(j)
		}
	}

	for i := range items {
		if err := b.limiter.Wait(ctx); err != nil {
			// Wait also fails early when the deadline would pass first.
			skipFrom(i, err)
			return items, err
		}

		result, err := b.gen.Generate(ctx, items[i].Request)
		items[i].Result = result
		items[i].Err = err
		settle(i)

		if err == nil {
			continue
		}

		b.logger.Warn("batch item failed", "index", i, "type", string(items[i].Request.Type), "error", err)

		if errors.Is(err, llm.ErrRateLimited) || errors.Is(err, llm.ErrQuotaExhausted) {
			b.logger.Warn("stopping batch", "remaining", len(items)-i-1)
			skipFrom(i+1, err)
			return items, nil
		}
		if ctx.Err() != nil {
			skipFrom(i+1, ctx.Err())
			return items, ctx.Err()
		}
	}

	return items, nil
}
