package upstream

import (
	"encoding/json"
	"strconv"
	"strings"
)

// maxUnwrapDepth bounds nested envelopes and JSON-in-string layers.
const maxUnwrapDepth = 4

// Unwrap decodes a success body into a flat object. Accepted shapes:
//
//	{"premium": 1, ...}                 flat
//	{"data": {...}}                     envelope
//	"{\"premium\": 1}"                  JSON-encoded string
//	{"data": "{\"premium\": 1}"}        envelope holding a JSON string
//
// Keys from the outer object are kept when the envelope does not override them.
func Unwrap(raw []byte) (map[string]any, bool) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false
	}
	return unwrapValue(value, 0)
}

func unwrapValue(value any, depth int) (map[string]any, bool) {
	if depth > maxUnwrapDepth {
		return nil, false
	}

	switch v := value.(type) {
	case string:
		var inner any
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &inner); err != nil {
			return nil, false
		}
		return unwrapValue(inner, depth+1)
	case map[string]any:
		data, ok := v["data"]
		if !ok || data == nil {
			return v, true
		}
		inner, ok := unwrapValue(data, depth+1)
		if !ok {
			return v, true
		}
		merged := make(map[string]any, len(v)+len(inner))
		for k, val := range v {
			if k != "data" {
				merged[k] = val
			}
		}
		for k, val := range inner {
			merged[k] = val
		}
		return merged, true
	default:
		return nil, false
	}
}

// Number reads a numeric field that may be encoded as a JSON number or a
// numeric string.
func Number(obj map[string]any, key string) (float64, bool) {
	switch v := obj[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// String reads a string field, accepting numbers for ID-like values.
func String(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
