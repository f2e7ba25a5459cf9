package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterSet(t *testing.T) {
	raw := map[string]interface{}{
		"specialties":          []interface{}{"Family Law", "Divorce"},
		"meetingTypes":         "virtual",
		"languages":            []interface{}{"Spanish", ""},
		"review_keywords":      []interface{}{"responsive"},
		"firm":                 "  Johnson & Associates  ",
		"licenseState":         "Texas",
		"rating":               4.5,
		"name":                 "Sarah Johnson",
		"location":             "Austin",
		"hasCalendarConnected": true,
	}

	f := ParseFilterSet(raw)

	assert.Equal(t, []string{"Family Law", "Divorce"}, f.Specialties)
	assert.Equal(t, []string{"virtual"}, f.MeetingTypes)
	assert.Equal(t, []string{"Spanish"}, f.Languages)
	assert.Equal(t, []string{"responsive"}, f.ReviewKeywords)
	assert.Equal(t, "Johnson & Associates", f.Firm)
	assert.Equal(t, "Texas", f.LicenseState)
	assert.Equal(t, 4.5, f.Rating)
	assert.Equal(t, "Sarah Johnson", f.Name)
	assert.Equal(t, []string{"Austin"}, f.Location)
	assert.True(t, f.HasCalendarConnected)
}

func TestParseFilterSet_RatingCoercion(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected float64
	}{
		{name: "number", value: 4.5, expected: 4.5},
		{name: "numeric string", value: "4.5", expected: 4.5},
		{name: "padded string", value: " 4 ", expected: 4},
		{name: "garbage string", value: "high", expected: 0},
		{name: "wrong type", value: []interface{}{"4"}, expected: 0},
		{name: "absent", value: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseFilterSet(map[string]interface{}{"rating": tt.value})
			assert.Equal(t, tt.expected, f.Rating)
		})
	}
}

func TestParseFilterSet_DropsWrongTypes(t *testing.T) {
	f := ParseFilterSet(map[string]interface{}{
		"specialties":          42,
		"firm":                 7,
		"hasCalendarConnected": "yes",
		"location":             []interface{}{3, true},
	})

	assert.True(t, f.IsZero())
}

func TestFilterSet_IsZero(t *testing.T) {
	assert.True(t, FilterSet{}.IsZero())
	assert.False(t, FilterSet{Specialties: []string{"family law"}}.IsZero())
	assert.False(t, FilterSet{Rating: 4}.IsZero())
	assert.False(t, FilterSet{HasCalendarConnected: true}.IsZero())
}
