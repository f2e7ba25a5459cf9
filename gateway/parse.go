package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// extractJSONObject pulls the outermost JSON object out of a model
// response. Models wrap JSON in code fences or prose often enough
// that unmarshalling the raw text directly is not reliable.
func extractJSONObject(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimPrefix(cleaned, "json")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return "", ErrMalformedResponse
	}
	return cleaned[start : end+1], nil
}

// decodeObject unmarshals a model response into a generic JSON object.
func decodeObject(raw string) (map[string]interface{}, error) {
	text, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return obj, nil
}

// stringField returns the named field as a string, or "" when absent
// or wrong-typed.
func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// boolField returns the named field as a bool, defaulting to false.
func boolField(obj map[string]interface{}, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

// intField returns the named field as an int and whether it was a
// JSON number.
func intField(obj map[string]interface{}, key string) (int, bool) {
	n, ok := obj[key].(float64)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// stringMapField coerces the named field into map[string]string,
// stringifying scalar values and dropping nested structures. A model
// that returns numbers for numeric fields still yields usable data.
func stringMapField(obj map[string]interface{}, key string) map[string]string {
	raw, ok := obj[key].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = fmt.Sprintf("%t", t)
		}
	}
	return out
}

// stringListField returns the named field as a list of strings,
// dropping non-string members.
func stringListField(obj map[string]interface{}, key string) []string {
	raw, ok := obj[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
