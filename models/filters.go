package models

import (
	"strconv"
	"strings"
)

// FilterSet is the normalized form of the search criteria extracted
// from a user query. All fields are optional; an absent field means
// "no constraint", never an empty-set constraint. Comparisons against
// attorney records are case-insensitive at the point of use.
type FilterSet struct {
	Specialties          []string `json:"specialties,omitempty"`
	MeetingTypes         []string `json:"meetingTypes,omitempty"`
	HasCalendarConnected bool     `json:"hasCalendarConnected,omitempty"`
	Firm                 string   `json:"firm,omitempty"`
	Languages            []string `json:"languages,omitempty"`
	ReviewKeywords       []string `json:"review_keywords,omitempty"`
	LicenseState         string   `json:"licenseState,omitempty"`
	Rating               float64  `json:"rating,omitempty"`
	Name                 string   `json:"name,omitempty"`
	FirstName            string   `json:"firstName,omitempty"`
	LastName             string   `json:"lastName,omitempty"`
	Location             []string `json:"location,omitempty"`

	// Fallback bookkeeping, set by the matching engine when the
	// specialty-fallback retry produced the results.
	FallbackApplied     bool     `json:"fallback_applied,omitempty"`
	OriginalSpecialties []string `json:"original_specialties,omitempty"`
}

// IsZero reports whether no constraint is present.
func (f FilterSet) IsZero() bool {
	return len(f.Specialties) == 0 && len(f.MeetingTypes) == 0 &&
		!f.HasCalendarConnected && f.Firm == "" && len(f.Languages) == 0 &&
		len(f.ReviewKeywords) == 0 && f.LicenseState == "" && f.Rating == 0 &&
		f.Name == "" && f.FirstName == "" && f.LastName == "" && len(f.Location) == 0
}

// ParseFilterSet normalizes the loosely-typed JSON object returned by
// the extraction gateway into a FilterSet. Fields that are absent,
// empty, or of an unexpected type are dropped rather than propagated.
func ParseFilterSet(raw map[string]interface{}) FilterSet {
	f := FilterSet{
		Specialties:    stringList(raw["specialties"]),
		MeetingTypes:   stringList(raw["meetingTypes"]),
		Languages:      stringList(raw["languages"]),
		ReviewKeywords: stringList(raw["review_keywords"]),
		Firm:           stringValue(raw["firm"]),
		LicenseState:   stringValue(raw["licenseState"]),
		Name:           stringValue(raw["name"]),
		FirstName:      stringValue(raw["firstName"]),
		LastName:       stringValue(raw["lastName"]),
		Location:       stringList(raw["location"]),
		Rating:         floatValue(raw["rating"]),
	}

	if b, ok := raw["hasCalendarConnected"].(bool); ok {
		f.HasCalendarConnected = b
	}

	return f
}

// stringValue returns v as a trimmed string, or "" when v is not a
// non-empty string.
func stringValue(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// stringList accepts either a single string or a list of strings and
// returns the non-empty members.
func stringList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// floatValue accepts a JSON number or a numeric string; anything else
// yields 0 (no rating constraint).
func floatValue(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return n
		}
	}
	return 0
}
