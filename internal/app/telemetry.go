package app

import (
	"wayfarer/internal/adapters/observability"
	"wayfarer/internal/domain"
)

// Counters tallies the terminal outcomes of one batch run. Conservation
// holds by construction: ExistingInDB+NewFromExternal+Invalid+Missing
// == Total after every Observe.
type Counters struct {
	Total           int `json:"total"`
	ExistingInDB    int `json:"existingInDb"`
	NewFromExternal int `json:"newFromExternal"`
	Invalid         int `json:"invalid"`
	Missing         int `json:"missing"`
}

func (c *Counters) Observe(o domain.Outcome) {
	c.Total++
	switch o {
	case domain.OutcomeExisting:
		c.ExistingInDB++
	case domain.OutcomeNew:
		c.NewFromExternal++
	case domain.OutcomeInvalid:
		c.Invalid++
	case domain.OutcomeMissing:
		c.Missing++
	}
	observability.ObserveResolution(string(o))
}

// Reduce folds a slice of per-item outcomes into counters. Outcomes are
// collected per task and reduced afterwards so the concurrent pass
// shares no mutable counter state.
func Reduce(outcomes []domain.Outcome) Counters {
	var c Counters
	for _, o := range outcomes {
		c.Observe(o)
	}
	return c
}
