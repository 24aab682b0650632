package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// UnknownTraitValue labels a structured trait that carries no "value" key.
const UnknownTraitValue = "unknown"

// TraitKey identifies one observed (trait name, value) pair.
type TraitKey struct {
	Trait string
	Value string
}

// TraitLabel converts a raw trait entry to the value label used for tallying.
// Structured entries of the form {"value": x, ...} unwrap to x; objects without
// a value label as UnknownTraitValue. Strings are used as-is, numbers in their
// shortest decimal form, booleans as true/false and null as "null".
func TraitLabel(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(bytes.TrimSpace(raw))
	}

	if obj, ok := v.(map[string]any); ok {
		inner, found := obj["value"]
		if !found {
			return UnknownTraitValue
		}
		v = inner
	}

	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return UnknownTraitValue
		}
		return string(b)
	}
}
