package domain

// CanonicalPlace is the persisted, authoritative record for one place.
// Created once per distinct external reference; this pipeline never
// updates it after insert.
type CanonicalPlace struct {
	ID           int64
	ExternalRef  string // intended unique key; enforced by the store's unique index
	Name         string
	Address      *string
	Lat, Lon     *float64
	Rating       *float64
	PriceTier    *int
	CategoryTags []string
	PhotoRefs    []string
}

// Enrich returns the place's attributes in the shape the recommendation
// carries downstream.
func (p CanonicalPlace) Enrich() *EnrichedAttributes {
	return &EnrichedAttributes{
		Address:      p.Address,
		Lat:          p.Lat,
		Lon:          p.Lon,
		Rating:       p.Rating,
		PriceTier:    p.PriceTier,
		CategoryTags: p.CategoryTags,
		PhotoRefs:    p.PhotoRefs,
	}
}
