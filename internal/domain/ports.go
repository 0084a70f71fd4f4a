package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores and the lookup client when the
// requested record cleanly does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidRef marks a lookup payload that came back without a
// canonical identifier.
var ErrInvalidRef = errors.New("invalid external reference")

// PlaceStore is the persistent store for canonical places.
type PlaceStore interface {
	PlaceByRef(ctx context.Context, ref string) (CanonicalPlace, error)
	PlaceByNameLike(ctx context.Context, name string) (CanonicalPlace, error)
	PlaceByID(ctx context.Context, id int64) (CanonicalPlace, error)
	// CreatePlace inserts p and returns its id. On a reference collision
	// it must converge on the existing row's id rather than fail.
	CreatePlace(ctx context.Context, p CanonicalPlace) (int64, error)
}

// GeoStore is the persistent store for canonical countries and cities.
type GeoStore interface {
	CountryByName(ctx context.Context, name string) (CanonicalCountry, error)
	CreateCountry(ctx context.Context, c CanonicalCountry) (int64, error)
	CityByNameAndCountry(ctx context.Context, name string, countryID int64) (CanonicalCity, error)
	CreateCity(ctx context.Context, c CanonicalCity) (int64, error)
}

// PlaceLookup is the external, rate-limited place lookup service. Both
// calls return loosely-shaped JSON; mapping happens in the app layer.
type PlaceLookup interface {
	// Details returns ErrNotFound for a clean provider "not found";
	// any other error is a fault.
	Details(ctx context.Context, ref string) (map[string]any, error)
	Search(ctx context.Context, name, city string) (map[string]any, error)
}

// Cache sits in front of the store for place-by-ref reads.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
