// Package domain holds the quoting bounded context's core types: the raw
// questionnaire, the typed payload sent to the quoting API, and the
// submission/resolution results.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Questionnaire is the user-entered form response keyed by field name.
// Repeated groups (vehicles, claims) are nested slices of objects. It is
// treated as read-only once handed to the transformer.
type Questionnaire map[string]any

// ParseQuestionnaire decodes a JSON object into a Questionnaire.
func ParseQuestionnaire(raw []byte) (Questionnaire, error) {
	var q Questionnaire
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode questionnaire: %w", err)
	}
	if q == nil {
		return nil, fmt.Errorf("decode questionnaire: expected a JSON object")
	}
	return q, nil
}

// Has reports whether key is present with a non-nil value.
func (q Questionnaire) Has(key string) bool {
	v, ok := q[key]
	return ok && v != nil
}

// String returns the trimmed string form of key, or "" when absent.
func (q Questionnaire) String(key string) string {
	switch v := q[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Bool interprets key as a boolean-like answer. Accepts native booleans,
// numbers, and the strings true/false, yes/no, y/n, 1/0 in any case.
func (q Questionnaire) Bool(key string) bool {
	switch v := q[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true
		}
	}
	return false
}

// Float parses key as a float, returning fallback when absent or unparseable.
func (q Questionnaire) Float(key string, fallback float64) float64 {
	switch v := q[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

// Int parses key as an integer (truncating decimals), returning fallback
// when absent or unparseable.
func (q Questionnaire) Int(key string, fallback int) int {
	f := q.Float(key, float64(fallback))
	return int(f)
}

// Groups returns the repeated group stored under key. Elements that are not
// objects are skipped.
func (q Questionnaire) Groups(key string) []Questionnaire {
	items, ok := q[key].([]any)
	if !ok {
		if typed, ok := q[key].([]Questionnaire); ok {
			return typed
		}
		return nil
	}
	groups := make([]Questionnaire, 0, len(items))
	for _, item := range items {
		switch m := item.(type) {
		case map[string]any:
			groups = append(groups, Questionnaire(m))
		case Questionnaire:
			groups = append(groups, m)
		}
	}
	return groups
}
