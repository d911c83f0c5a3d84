// Package targeting converts generic audience parameters into
// platform-native targeting payloads.
package targeting

import (
	"strconv"
	"strings"
)

// Spec is the platform-agnostic audience specification.
type Spec struct {
	// AgeGroups holds range strings like "18-24" or "65+". MinAge/MaxAge
	// are the legacy single-range form; AgeGroups wins when both are set.
	AgeGroups []string `json:"age_groups,omitempty"`
	MinAge    int      `json:"min_age,omitempty"`
	MaxAge    int      `json:"max_age,omitempty"`

	// Gender is MALE, FEMALE or ALL. ALL omits gender targeting entirely.
	Gender string `json:"gender,omitempty"`

	// Locations mixes ISO country codes with opaque region/city ids.
	Locations []string `json:"locations,omitempty"`

	Interests        []string `json:"interests,omitempty"`
	ExcludeInterests []string `json:"exclude_interests,omitempty"`
}

// AgeRange is a parsed, clamped age band.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ParseAgeRanges parses the spec's age inputs, clamping every band to
// [floor, ceil]. Malformed range strings are skipped, not fatal.
func (s Spec) ParseAgeRanges(floor, ceil int) []AgeRange {
	var ranges []AgeRange
	for _, g := range s.AgeGroups {
		r, ok := parseAgeGroup(g, ceil)
		if !ok {
			continue
		}
		if r, ok = clamp(r, floor, ceil); ok {
			ranges = append(ranges, r)
		}
	}
	if len(ranges) == 0 && (s.MinAge > 0 || s.MaxAge > 0) {
		min, max := s.MinAge, s.MaxAge
		if min == 0 {
			min = floor
		}
		if max == 0 {
			max = ceil
		}
		if r, ok := clamp(AgeRange{Min: min, Max: max}, floor, ceil); ok {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

func parseAgeGroup(s string, ceil int) (AgeRange, bool) {
	s = strings.TrimSpace(s)
	if open, found := strings.CutSuffix(s, "+"); found {
		min, err := strconv.Atoi(open)
		if err != nil {
			return AgeRange{}, false
		}
		return AgeRange{Min: min, Max: ceil}, true
	}
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return AgeRange{}, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return AgeRange{}, false
	}
	max, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return AgeRange{}, false
	}
	if min > max {
		return AgeRange{}, false
	}
	return AgeRange{Min: min, Max: max}, true
}

func clamp(r AgeRange, floor, ceil int) (AgeRange, bool) {
	if r.Max < floor || r.Min > ceil {
		return AgeRange{}, false
	}
	if r.Min < floor {
		r.Min = floor
	}
	if r.Max > ceil {
		r.Max = ceil
	}
	return r, true
}

// SplitLocations classifies location tokens heuristically: two-letter
// uppercase tokens are country codes, everything else is an opaque
// region or city identifier.
func SplitLocations(locations []string) (countries, regions []string) {
	for _, loc := range locations {
		if isCountryCode(loc) {
			countries = append(countries, loc)
		} else if loc != "" {
			regions = append(regions, loc)
		}
	}
	return countries, regions
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// GenderField returns the native gender value and whether the field
// should be emitted at all. ALL (or empty) omits the field, meaning
// "untargeted by gender", per platform convention.
func GenderField(gender string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(gender)) {
	case "MALE":
		return "MALE", true
	case "FEMALE":
		return "FEMALE", true
	default:
		return "", false
	}
}
