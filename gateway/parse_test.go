package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "bare object",
			input:    `{"intent": "greeting"}`,
			expected: `{"intent": "greeting"}`,
		},
		{
			name:     "code fence",
			input:    "```json\n{\"intent\": \"greeting\"}\n```",
			expected: `{"intent": "greeting"}`,
		},
		{
			name:     "surrounding prose",
			input:    `Sure! Here is the result: {"intent": "greeting"} Hope that helps.`,
			expected: `{"intent": "greeting"}`,
		},
		{
			name:     "nested object",
			input:    `{"filters": {"specialties": ["family law"]}}`,
			expected: `{"filters": {"specialties": ["family law"]}}`,
		},
		{
			name:    "no object",
			input:   "I'm sorry, I cannot answer that.",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "only closing brace",
			input:   "} nothing here",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeObject(t *testing.T) {
	obj, err := decodeObject("```json\n{\"intent\": \"greeting\", \"done\": true}\n```")
	require.NoError(t, err)
	assert.Equal(t, "greeting", obj["intent"])
	assert.Equal(t, true, obj["done"])
}

func TestDecodeObject_InvalidJSON(t *testing.T) {
	_, err := decodeObject(`{"intent": "greeting",}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestStringMapField_Coercion(t *testing.T) {
	obj := map[string]interface{}{
		"extracted_data": map[string]interface{}{
			"name":    "Jane",
			"rating":  4.5,
			"count":   float64(3),
			"urgent":  true,
			"nested":  map[string]interface{}{"dropped": "yes"},
			"ignored": nil,
		},
	}

	got := stringMapField(obj, "extracted_data")

	assert.Equal(t, map[string]string{
		"name":   "Jane",
		"rating": "4.5",
		"count":  "3",
		"urgent": "true",
	}, got)
}

func TestStringMapField_Missing(t *testing.T) {
	assert.Nil(t, stringMapField(map[string]interface{}{}, "extracted_data"))
	assert.Nil(t, stringMapField(map[string]interface{}{"extracted_data": "oops"}, "extracted_data"))
}

func TestIntField(t *testing.T) {
	obj := map[string]interface{}{"next_step": float64(3), "reply": "hi"}

	n, ok := intField(obj, "next_step")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = intField(obj, "reply")
	assert.False(t, ok)

	_, ok = intField(obj, "missing")
	assert.False(t, ok)
}

func TestStringListField(t *testing.T) {
	obj := map[string]interface{}{
		"missing_info": []interface{}{"parties", " dates ", 7, ""},
	}

	assert.Equal(t, []string{"parties", "dates"}, stringListField(obj, "missing_info"))
	assert.Nil(t, stringListField(obj, "absent"))
}
