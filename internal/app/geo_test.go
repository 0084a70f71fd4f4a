package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"wayfarer/internal/app"
	"wayfarer/internal/domain"
)

type fakeGeoStore struct {
	mu        sync.Mutex
	countries map[string]domain.CanonicalCountry
	cities    map[string]domain.CanonicalCity // key: name|countryID
	nextID    int64

	countryErr error

	countryCalls int32
	cityCalls    int32
}

func newFakeGeoStore() *fakeGeoStore {
	return &fakeGeoStore{
		countries: map[string]domain.CanonicalCountry{},
		cities:    map[string]domain.CanonicalCity{},
	}
}

func cityKey(name string, countryID int64) string {
	return fmt.Sprintf("%s|%d", name, countryID)
}

func (f *fakeGeoStore) CountryByName(ctx context.Context, name string) (domain.CanonicalCountry, error) {
	atomic.AddInt32(&f.countryCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countryErr != nil {
		return domain.CanonicalCountry{}, f.countryErr
	}
	c, ok := f.countries[name]
	if !ok {
		return domain.CanonicalCountry{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeGeoStore) CreateCountry(ctx context.Context, c domain.CanonicalCountry) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.countries[c.Name]; ok {
		return existing.ID, nil
	}
	f.nextID++
	c.ID = f.nextID
	f.countries[c.Name] = c
	return c.ID, nil
}

func (f *fakeGeoStore) CityByNameAndCountry(ctx context.Context, name string, countryID int64) (domain.CanonicalCity, error) {
	atomic.AddInt32(&f.cityCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cities[cityKey(name, countryID)]
	if !ok {
		return domain.CanonicalCity{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeGeoStore) CreateCity(ctx context.Context, c domain.CanonicalCity) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.cities[cityKey(c.Name, c.CountryID)]; ok {
		return existing.ID, nil
	}
	f.nextID++
	c.ID = f.nextID
	f.cities[cityKey(c.Name, c.CountryID)] = c
	return c.ID, nil
}

func TestReconcileGeo_SkipsItemsWithoutCityOrCountry(t *testing.T) {
	store := newFakeGeoStore()
	g := app.NewGeoIdentityReconciler(store, 2)

	recs := []domain.Recommendation{
		{Name: "A", City: "Paris"},     // no country
		{Name: "B", Country: "France"}, // no city
		{Name: "C"},                    // neither
	}
	out := g.ReconcileGeo(context.Background(), recs)

	for i, rec := range out {
		if rec.ResolvedCityID != nil {
			t.Fatalf("item %d: resolvedCityId set for skipped item", i)
		}
	}
	if store.countryCalls != 0 || store.cityCalls != 0 {
		t.Fatal("skipped items must make no geo store calls")
	}
}

func TestReconcileGeo_CreatesCountryAndCity(t *testing.T) {
	store := newFakeGeoStore()
	g := app.NewGeoIdentityReconciler(store, 2)

	recs := []domain.Recommendation{
		{Name: "Eiffel Tower", City: "Paris", Country: "France", ExternalRef: "ref-A"},
	}
	out := g.ReconcileGeo(context.Background(), recs)

	if out[0].ResolvedCityID == nil {
		t.Fatal("resolvedCityId not set")
	}
	country, ok := store.countries["France"]
	if !ok {
		t.Fatal("country not created")
	}
	city, ok := store.cities[cityKey("Paris", country.ID)]
	if !ok {
		t.Fatal("city not created")
	}
	if city.ExternalRef == nil || *city.ExternalRef != "ref-A" {
		t.Fatalf("city externalRef = %v, want the place's resolved ref", city.ExternalRef)
	}
	if *out[0].ResolvedCityID != city.ID {
		t.Fatalf("resolvedCityId = %d, want %d", *out[0].ResolvedCityID, city.ID)
	}
}

func TestReconcileGeo_SentinelRefLeavesCityRefUnset(t *testing.T) {
	store := newFakeGeoStore()
	g := app.NewGeoIdentityReconciler(store, 2)

	recs := []domain.Recommendation{
		{Name: "Hidden Shack", City: "Lisbon", Country: "Portugal", ExternalRef: domain.ManualEntryRequired},
	}
	out := g.ReconcileGeo(context.Background(), recs)

	if out[0].ResolvedCityID == nil {
		t.Fatal("resolvedCityId not set")
	}
	country := store.countries["Portugal"]
	city := store.cities[cityKey("Lisbon", country.ID)]
	if city.ExternalRef != nil {
		t.Fatalf("city externalRef = %q, want unset for sentinel items", *city.ExternalRef)
	}
}

func TestReconcileGeo_ReusesExistingRows(t *testing.T) {
	store := newFakeGeoStore()
	store.countries["France"] = domain.CanonicalCountry{ID: 10, Name: "France"}
	store.cities[cityKey("Paris", 10)] = domain.CanonicalCity{ID: 11, Name: "Paris", CountryID: 10}
	store.nextID = 11
	g := app.NewGeoIdentityReconciler(store, 2)

	recs := []domain.Recommendation{
		{Name: "Louvre", City: "Paris", Country: "France"},
		{Name: "Eiffel Tower", City: "Paris", Country: "France"},
	}
	out := g.ReconcileGeo(context.Background(), recs)

	for i := range out {
		if out[i].ResolvedCityID == nil || *out[i].ResolvedCityID != 11 {
			t.Fatalf("item %d: resolvedCityId = %v, want 11", i, out[i].ResolvedCityID)
		}
	}
	if len(store.cities) != 1 || len(store.countries) != 1 {
		t.Fatalf("rows duplicated: %d cities, %d countries", len(store.cities), len(store.countries))
	}
}

func TestReconcileGeo_ErrorLeavesItemWithoutCityID(t *testing.T) {
	store := newFakeGeoStore()
	store.countryErr = errors.New("store down")
	g := app.NewGeoIdentityReconciler(store, 2)

	recs := []domain.Recommendation{
		{Name: "Louvre", City: "Paris", Country: "France"},
		{Name: "No Geo"},
	}
	out := g.ReconcileGeo(context.Background(), recs)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (batch must continue)", len(out))
	}
	if out[0].ResolvedCityID != nil {
		t.Fatal("failed item must stay without a resolvedCityId")
	}
}
