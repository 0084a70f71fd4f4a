package domain

// CanonicalCountry is found by exact name match, created if absent.
type CanonicalCountry struct {
	ID   int64
	Name string
}

// CanonicalCity is unique per (name, country). ExternalRef is populated
// from the place's resolved reference, not a city-level geocode.
type CanonicalCity struct {
	ID          int64
	Name        string
	CountryID   int64
	ExternalRef *string
}
