package app

import (
	"strconv"
	"strings"

	"wayfarer/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Provider payloads are loosely shaped and have drifted across API
// versions; each logical field is looked up through its alias list.
var placeAliases = map[string][]string{
	"ref":     {"place_id", "id", "reference", "ref"},
	"name":    {"name", "display_name", "displayName.text", "title"},
	"address": {"formatted_address", "address", "vicinity", "address.full", "location.address"},
	"lat":     {"geometry.location.lat", "location.lat", "lat", "latitude"},
	"lon":     {"geometry.location.lng", "location.lng", "lon", "lng", "longitude"},
	"rating":  {"rating", "score", "rating.value", "user_rating"},
	"price":   {"price_level", "priceLevel", "price_tier", "price"},
}

var candidateAliases = map[string][]string{
	"ref":  {"ref", "place_id", "id", "reference"},
	"name": {"name", "display_name", "title"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// getStrings collects a []string from a JSON array of strings or of
// objects holding the given field.
func getStrings(m map[string]any, path, field string) []string {
	arr, ok := lookupAny(m, path).([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range arr {
		switch v := e.(type) {
		case string:
			if v != "" {
				out = append(out, v)
			}
		case map[string]any:
			if s, ok := v[field].(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

/********** payload -> domain **********/

// mapPlaceDetails flattens a provider details payload into a canonical
// place. ExternalRef stays empty when no identifier alias matched; the
// caller decides what that means.
func mapPlaceDetails(raw map[string]any) domain.CanonicalPlace {
	p := domain.CanonicalPlace{
		ExternalRef: firstNonEmptyAlias(raw, placeAliases, "ref"),
		Name:        firstNonEmptyAlias(raw, placeAliases, "name"),
		Address:     ptrStr(firstNonEmptyAlias(raw, placeAliases, "address")),
		Lat:         getFloatFlexible(raw, placeAliases["lat"]...),
		Lon:         getFloatFlexible(raw, placeAliases["lon"]...),
		Rating:      getFloatFlexible(raw, placeAliases["rating"]...),
	}
	if f := getFloatFlexible(raw, placeAliases["price"]...); f != nil {
		tier := int(*f)
		p.PriceTier = &tier
	}
	p.CategoryTags = getStrings(raw, "types", "name")
	if p.CategoryTags == nil {
		p.CategoryTags = getStrings(raw, "categories", "name")
	}
	p.PhotoRefs = getStrings(raw, "photos", "photo_reference")
	return p
}

// mapSearchCandidate extracts the first usable candidate from a search
// payload. Accepts both a bare candidate object and a wrapped
// {"candidates": [...]} / {"results": [...]} list.
func mapSearchCandidate(raw map[string]any) (ref, name string) {
	if raw == nil {
		return "", ""
	}
	cand := raw
	for _, key := range []string{"candidates", "results"} {
		if arr, ok := raw[key].([]any); ok {
			if len(arr) == 0 {
				return "", ""
			}
			if first, ok := arr[0].(map[string]any); ok {
				cand = first
			}
			break
		}
	}
	return firstNonEmptyAlias(cand, candidateAliases, "ref"),
		firstNonEmptyAlias(cand, candidateAliases, "name")
}
