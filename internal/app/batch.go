package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"wayfarer/internal/adapters/observability"
	"wayfarer/internal/domain"
)

// RecommendationBatchResolver fans the identity resolver out over a
// batch. Output order mirrors input order regardless of completion
// order, and no item's failure can reject the batch.
type RecommendationBatchResolver struct {
	resolver *PlaceIdentityResolver
	workers  int64
}

func NewRecommendationBatchResolver(r *PlaceIdentityResolver, workers int) *RecommendationBatchResolver {
	if workers <= 0 {
		workers = 8
	}
	return &RecommendationBatchResolver{resolver: r, workers: int64(workers)}
}

// ResolveBatch resolves every recommendation concurrently (bounded by
// the worker count, to stay under the lookup service's rate limit) and
// returns the mutated batch plus outcome counters.
func (b *RecommendationBatchResolver) ResolveBatch(ctx context.Context, recs []domain.Recommendation) ([]domain.Recommendation, Counters) {
	start := time.Now()
	out := make([]domain.Recommendation, len(recs))
	outcomes := make([]domain.Outcome, len(recs))

	sem := semaphore.NewWeighted(b.workers)
	var wg sync.WaitGroup

	for i := range recs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			// context gone: resolve inline so the slot still gets a
			// terminal classification and the counters conserve
			rec := recs[i]
			outcomes[i] = b.resolver.Resolve(ctx, &rec)
			out[i] = rec
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			rec := recs[i]
			outcomes[i] = b.resolver.Resolve(ctx, &rec)
			out[i] = rec
		}(i)
	}
	wg.Wait()

	counters := Reduce(outcomes)
	observability.ObserveBatch("resolve", len(recs), time.Since(start))
	log.Info().
		Int("total", counters.Total).
		Int("existing", counters.ExistingInDB).
		Int("new", counters.NewFromExternal).
		Int("invalid", counters.Invalid).
		Int("missing", counters.Missing).
		Dur("duration", time.Since(start)).
		Msg("batch resolved")
	return out, counters
}
