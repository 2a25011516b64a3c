// internal/vision/validate.go
package vision

import (
	"fmt"
	"strings"
)

// ValidationError reports the first structural violation found in a
// deep-scan payload. Index is the offending object's position in
// image_analysis.objects, or -1 when the envelope itself is broken.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("schema violation: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema violation: objects[%d].%s %s", e.Index, e.Field, e.Reason)
}

// ValidateDeepSchema strictly checks the canonical
// {"image_analysis":{"objects":[...]}} shape. It is meant to run after
// sanitization has filled defaults, so any failure here is structural.
// The payload is never mutated.
func ValidateDeepSchema(payload any) error {
	root, ok := payload.(map[string]any)
	if !ok {
		return &ValidationError{Index: -1, Field: "payload", Reason: "top level must be an object"}
	}
	ia, ok := root["image_analysis"].(map[string]any)
	if !ok {
		return &ValidationError{Index: -1, Field: "image_analysis", Reason: "missing or not an object"}
	}
	objs, ok := ia["objects"].([]any)
	if !ok {
		return &ValidationError{Index: -1, Field: "image_analysis.objects", Reason: "missing or not an array"}
	}

	for i, entry := range objs {
		obj, ok := entry.(map[string]any)
		if !ok {
			return &ValidationError{Index: i, Field: "", Reason: "must be an object"}
		}
		if err := requireText(i, obj, "name"); err != nil {
			return err
		}
		if err := requireText(i, obj, "description"); err != nil {
			return err
		}
		if !isNonNegativeInt(obj["quantity"]) {
			return &ValidationError{Index: i, Field: "quantity", Reason: "must be a non-negative integer"}
		}
		coords, ok := obj["coordinates"].([]any)
		if !ok {
			return &ValidationError{Index: i, Field: "coordinates", Reason: "must be an array"}
		}
		for j, boxEntry := range coords {
			if !isValidBox(boxEntry) {
				return &ValidationError{
					Index:  i,
					Field:  fmt.Sprintf("coordinates[%d]", j),
					Reason: "must be [x_min,y_min,x_max,y_max] numbers",
				}
			}
		}
		if err := requireText(i, obj, "condition"); err != nil {
			return err
		}
	}
	return nil
}

func requireText(index int, obj map[string]any, field string) error {
	s, ok := obj[field].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return &ValidationError{Index: index, Field: field, Reason: "must be a non-empty string"}
	}
	return nil
}

func isNonNegativeInt(v any) bool {
	switch q := v.(type) {
	case int:
		return q >= 0
	case float64:
		return q == float64(int(q)) && q >= 0
	}
	return false
}

func isValidBox(v any) bool {
	values, ok := v.([]any)
	if !ok {
		return false
	}
	_, ok = coerceBox(values)
	return ok
}
