package app

import (
	"encoding/json"
	"testing"
)

func mustUnmarshal(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return m
}

func TestMapPlaceDetails_ModernPayload(t *testing.T) {
	raw := mustUnmarshal(t, `{
		"place_id": "ref-A",
		"name": "Eiffel Tower",
		"formatted_address": "Champ de Mars, Paris",
		"geometry": {"location": {"lat": 48.8584, "lng": 2.2945}},
		"rating": 4.6,
		"price_level": 2,
		"types": ["attraction", "landmark"],
		"photos": [{"photo_reference": "ph-1"}, {"photo_reference": "ph-2"}]
	}`)

	p := mapPlaceDetails(raw)
	if p.ExternalRef != "ref-A" || p.Name != "Eiffel Tower" {
		t.Fatalf("identity not mapped: %+v", p)
	}
	if p.Address == nil || *p.Address != "Champ de Mars, Paris" {
		t.Fatalf("address not mapped: %v", p.Address)
	}
	if p.Lat == nil || *p.Lat != 48.8584 || p.Lon == nil || *p.Lon != 2.2945 {
		t.Fatalf("coords not mapped: %v %v", p.Lat, p.Lon)
	}
	if p.PriceTier == nil || *p.PriceTier != 2 {
		t.Fatalf("price tier not mapped: %v", p.PriceTier)
	}
	if len(p.CategoryTags) != 2 || len(p.PhotoRefs) != 2 {
		t.Fatalf("lists not mapped: %v %v", p.CategoryTags, p.PhotoRefs)
	}
}

func TestMapPlaceDetails_LegacyAliases(t *testing.T) {
	raw := mustUnmarshal(t, `{
		"reference": "ref-L",
		"title": "Old Mill",
		"vicinity": "Mill Road",
		"location": {"lat": "51,5", "lng": "0.1"},
		"score": "4,2"
	}`)

	p := mapPlaceDetails(raw)
	if p.ExternalRef != "ref-L" || p.Name != "Old Mill" {
		t.Fatalf("legacy identity not mapped: %+v", p)
	}
	if p.Lat == nil || *p.Lat != 51.5 {
		t.Fatalf("comma-decimal lat not parsed: %v", p.Lat)
	}
	if p.Rating == nil || *p.Rating != 4.2 {
		t.Fatalf("legacy rating not parsed: %v", p.Rating)
	}
}

func TestMapPlaceDetails_NoIdentifier(t *testing.T) {
	p := mapPlaceDetails(mustUnmarshal(t, `{"name": "Ghost Cafe"}`))
	if p.ExternalRef != "" {
		t.Fatalf("externalRef = %q, want empty", p.ExternalRef)
	}
}

func TestMapSearchCandidate(t *testing.T) {
	cases := []struct {
		in   string
		ref  string
		name string
	}{
		{`{"ref": "ref-B", "name": "Ghost Cafe"}`, "ref-B", "Ghost Cafe"},
		{`{"candidates": [{"place_id": "ref-C", "name": "First"}, {"place_id": "ref-D"}]}`, "ref-C", "First"},
		{`{"results": [{"reference": "ref-E"}]}`, "ref-E", ""},
		{`{"candidates": []}`, "", ""},
		{`{}`, "", ""},
	}
	for _, tc := range cases {
		ref, name := mapSearchCandidate(mustUnmarshal(t, tc.in))
		if ref != tc.ref || name != tc.name {
			t.Fatalf("%s: got (%q,%q), want (%q,%q)", tc.in, ref, name, tc.ref, tc.name)
		}
	}
	if ref, _ := mapSearchCandidate(nil); ref != "" {
		t.Fatal("nil payload must yield no candidate")
	}
}
