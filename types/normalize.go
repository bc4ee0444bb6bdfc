package types

import (
	"encoding/json"
	"fmt"
)

// NormalizeProperties decodes a raw property bag (as recovered from a map
// layer click payload) into structured form. Nested fields may arrive
// either pre-parsed or as serialized JSON strings; both decode to the same
// result, so normalizing an already-normalized bag is a no-op.
func NormalizeProperties(raw map[string]interface{}) (EventProperties, error) {
	var props EventProperties
	encoded, err := json.Marshal(raw)
	if err != nil {
		return props, fmt.Errorf("error encoding raw properties: %w", err)
	}
	if err := json.Unmarshal(encoded, &props); err != nil {
		return props, fmt.Errorf("error normalizing properties: %w", err)
	}
	return props, nil
}
