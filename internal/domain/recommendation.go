package domain

import "strings"

// ManualEntryRequired marks a recommendation whose place could not be
// resolved to any external reference. Downstream consumers surface it as
// "needs manual entry"; it is never a valid input for another pass.
const ManualEntryRequired = "MANUAL_ENTRY_REQUIRED"

// Category is the closed tag set assigned by the upstream suggestion
// producer.
type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategoryCafe       Category = "cafe"
	CategoryBar        Category = "bar"
	CategoryAttraction Category = "attraction"
	CategoryActivity   Category = "activity"
	CategoryShopping   Category = "shopping"
	CategoryLodging    Category = "lodging"
)

// Outcome is the terminal classification of one recommendation's
// resolution.
type Outcome string

const (
	OutcomeExisting Outcome = "existing" // matched a stored canonical place
	OutcomeNew      Outcome = "new"      // created from external details
	OutcomeInvalid  Outcome = "invalid"  // reference could not be resolved
	OutcomeMissing  Outcome = "missing"  // arrived without a usable reference
)

// Recommendation is the ephemeral unit flowing through the pipeline. It
// is mutated in place by resolution and never persisted as-is.
type Recommendation struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
	ExternalRef string   `json:"externalRef"`

	Enriched        *EnrichedAttributes `json:"enrichedAttributes,omitempty"`
	ResolvedPlaceID *int64              `json:"resolvedPlaceId,omitempty"`
	ResolvedCityID  *int64              `json:"resolvedCityId,omitempty"`
}

// EnrichedAttributes carries the canonical place's attributes back onto
// the recommendation once resolution found or created one.
type EnrichedAttributes struct {
	Address      *string  `json:"address,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	PriceTier    *int     `json:"priceTier,omitempty"`
	CategoryTags []string `json:"categoryTags,omitempty"`
	PhotoRefs    []string `json:"photoRefs,omitempty"`
}

// HasUsableRef reports whether the recommendation carries an external
// reference worth resolving.
func (r Recommendation) HasUsableRef() bool {
	ref := strings.TrimSpace(r.ExternalRef)
	return ref != "" && ref != ManualEntryRequired
}
