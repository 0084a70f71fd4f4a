package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"wayfarer/internal/adapters/observability"
	"wayfarer/internal/domain"
)

// GeoIdentityReconciler runs the second pass: for every recommendation
// carrying both a city and a country, it finds or creates the canonical
// country and city rows and stamps the city id. Runs only after the
// place pass has fully settled.
type GeoIdentityReconciler struct {
	store   domain.GeoStore
	workers int64
}

func NewGeoIdentityReconciler(store domain.GeoStore, workers int) *GeoIdentityReconciler {
	if workers <= 0 {
		workers = 8
	}
	return &GeoIdentityReconciler{store: store, workers: int64(workers)}
}

// ReconcileGeo processes the batch concurrently. Per-item errors are
// logged and swallowed; such items simply end up without a resolved
// city id.
func (g *GeoIdentityReconciler) ReconcileGeo(ctx context.Context, recs []domain.Recommendation) []domain.Recommendation {
	start := time.Now()
	out := make([]domain.Recommendation, len(recs))

	sem := semaphore.NewWeighted(g.workers)
	var wg sync.WaitGroup

	for i := range recs {
		if err := sem.Acquire(ctx, 1); err != nil {
			out[i] = recs[i]
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			rec := recs[i]
			if err := g.reconcileOne(ctx, &rec); err != nil {
				log.Warn().Err(err).Str("city", rec.City).Str("country", rec.Country).Msg("geo reconciliation failed")
			}
			out[i] = rec
		}(i)
	}
	wg.Wait()

	observability.ObserveBatch("geo", len(recs), time.Since(start))
	return out
}

func (g *GeoIdentityReconciler) reconcileOne(ctx context.Context, rec *domain.Recommendation) error {
	city := strings.TrimSpace(rec.City)
	country := strings.TrimSpace(rec.Country)
	if city == "" || country == "" {
		return nil // nothing to resolve, not an error
	}

	countryID, err := g.countryID(ctx, country)
	if err != nil {
		return err
	}

	c, err := g.store.CityByNameAndCountry(ctx, city, countryID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		c = domain.CanonicalCity{Name: city, CountryID: countryID}
		// the city ref comes from the resolved place, not a city-level
		// geocode (see DESIGN.md)
		if rec.HasUsableRef() {
			ref := rec.ExternalRef
			c.ExternalRef = &ref
		}
		c.ID, err = g.store.CreateCity(ctx, c)
		if err != nil {
			return err
		}
	default:
		return err
	}

	id := c.ID
	rec.ResolvedCityID = &id
	return nil
}

func (g *GeoIdentityReconciler) countryID(ctx context.Context, name string) (int64, error) {
	c, err := g.store.CountryByName(ctx, name)
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	return g.store.CreateCountry(ctx, domain.CanonicalCountry{Name: name})
}
