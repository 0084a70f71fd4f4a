package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"wayfarer/internal/adapters/observability"
	"wayfarer/internal/domain"
)

// PlaceIdentityResolver resolves one recommendation's place identity to
// a terminal outcome, mutating it in place. It never returns an error:
// every store or lookup failure is absorbed locally and expressed as a
// classification.
type PlaceIdentityResolver struct {
	store  domain.PlaceStore
	lookup domain.PlaceLookup
	cache  domain.Cache
	ttlSec int

	// collapses concurrent detail fetches for the same reference so one
	// batch issues at most one external call (and one create) per ref
	flight singleflight.Group
}

func NewPlaceIdentityResolver(store domain.PlaceStore, lookup domain.PlaceLookup, cache domain.Cache, ttlSec int) *PlaceIdentityResolver {
	return &PlaceIdentityResolver{store: store, lookup: lookup, cache: cache, ttlSec: ttlSec}
}

func placeKey(ref string) string { return "place:ref:" + ref }

// Resolve walks the fallback chain for a single recommendation:
//
//  1. no usable reference            -> sentinel, "missing"
//  2. store lookup by reference      -> enrich, "existing"
//  3. store substring search by name -> adopt stored ref, "existing"
//  4. external detail fetch          -> create, "new"; clean not-found -> sentinel, "invalid"
//  5. external name+city search      -> re-fetch + create, "new"; else sentinel, "invalid"
//
// A clean provider "not found" in stage 4 is terminal; only a fault
// (network, 5xx, create failure) reaches stage 5.
func (r *PlaceIdentityResolver) Resolve(ctx context.Context, rec *domain.Recommendation) domain.Outcome {
	if !rec.HasUsableRef() {
		rec.ExternalRef = domain.ManualEntryRequired
		return domain.OutcomeMissing
	}
	ref := strings.TrimSpace(rec.ExternalRef)

	// Stage 2: cache, then store, by reference. Store errors here are
	// never fatal to the item; treat them as a miss and keep going.
	if p, ok := r.cachedPlace(ctx, ref); ok {
		adopt(rec, p)
		return domain.OutcomeExisting
	}
	p, err := r.store.PlaceByRef(ctx, ref)
	switch {
	case err == nil:
		adopt(rec, p)
		r.cachePlace(ctx, p)
		return domain.OutcomeExisting
	case !errors.Is(err, domain.ErrNotFound):
		log.Warn().Err(err).Str("ref", ref).Msg("place lookup by ref failed; treating as miss")
	}

	// Stage 3: substring search against stored names. A hit adopts the
	// stored reference and skips the external service entirely.
	p, err = r.store.PlaceByNameLike(ctx, rec.Name)
	switch {
	case err == nil:
		rec.ExternalRef = p.ExternalRef
		adopt(rec, p)
		r.cachePlace(ctx, p)
		return domain.OutcomeExisting
	case !errors.Is(err, domain.ErrNotFound):
		log.Warn().Err(err).Str("name", rec.Name).Msg("place search by name failed; treating as miss")
	}

	// Stage 4: external detail fetch + create.
	created, err := r.fetchAndCreate(ctx, ref)
	if err == nil {
		adopt(rec, created)
		return domain.OutcomeNew
	}
	if isCleanInvalid(err) {
		rec.ExternalRef = domain.ManualEntryRequired
		return domain.OutcomeInvalid
	}
	log.Warn().Err(err).Str("ref", ref).Str("name", rec.Name).Msg("detail fetch faulted; falling back to search")

	// Stage 5: name+city search, then a second fetch on the candidate.
	raw, err := r.lookup.Search(ctx, rec.Name, rec.City)
	if err != nil {
		log.Warn().Err(err).Str("name", rec.Name).Msg("fallback search failed")
		rec.ExternalRef = domain.ManualEntryRequired
		return domain.OutcomeInvalid
	}
	candRef, _ := mapSearchCandidate(raw)
	if candRef == "" {
		rec.ExternalRef = domain.ManualEntryRequired
		return domain.OutcomeInvalid
	}
	created, err = r.fetchAndCreate(ctx, candRef)
	if err != nil {
		log.Warn().Err(err).Str("ref", candRef).Msg("fallback fetch failed")
		rec.ExternalRef = domain.ManualEntryRequired
		return domain.OutcomeInvalid
	}
	rec.ExternalRef = candRef
	adopt(rec, created)
	return domain.OutcomeNew
}

// fetchAndCreate fetches provider details for ref and persists a new
// canonical place. A create failure deliberately surfaces as the same
// kind of error as a lookup fault, so the caller retries via the
// fallback search either way (see DESIGN.md, StoreWriteAmbiguity).
func (r *PlaceIdentityResolver) fetchAndCreate(ctx context.Context, ref string) (domain.CanonicalPlace, error) {
	v, err, _ := r.flight.Do(ref, func() (any, error) {
		raw, err := r.lookup.Details(ctx, ref)
		if err != nil {
			return nil, err
		}
		p := mapPlaceDetails(raw)
		if p.ExternalRef == "" {
			return nil, fmt.Errorf("details for %q carry no identifier: %w", ref, domain.ErrInvalidRef)
		}
		id, err := r.store.CreatePlace(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("create place %q: %w", p.ExternalRef, err)
		}
		p.ID = id
		r.cachePlace(ctx, p)
		observability.ObservePlaceCreated()
		return p, nil
	})
	if err != nil {
		return domain.CanonicalPlace{}, err
	}
	return v.(domain.CanonicalPlace), nil
}

func (r *PlaceIdentityResolver) cachedPlace(ctx context.Context, ref string) (domain.CanonicalPlace, bool) {
	if r.cache == nil {
		return domain.CanonicalPlace{}, false
	}
	var p domain.CanonicalPlace
	ok, err := r.cache.Get(ctx, placeKey(ref), &p)
	if err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("place cache read failed")
		return domain.CanonicalPlace{}, false
	}
	return p, ok
}

func (r *PlaceIdentityResolver) cachePlace(ctx context.Context, p domain.CanonicalPlace) {
	if r.cache == nil || p.ExternalRef == "" {
		return
	}
	_ = r.cache.Set(ctx, placeKey(p.ExternalRef), p, r.ttlSec)
}

// isCleanInvalid distinguishes the provider cleanly saying "no such
// place" from the call itself failing.
func isCleanInvalid(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidRef)
}

func adopt(rec *domain.Recommendation, p domain.CanonicalPlace) {
	rec.Enriched = p.Enrich()
	if p.ID != 0 {
		id := p.ID
		rec.ResolvedPlaceID = &id
	}
}
