// internal/vision/normalize.go
package vision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Normalize coerces arbitrary vision-model JSON into the closed canonical
// item list. Accepted payload shapes are a bare array of objects,
// {"items":[...]}, {"objects":[...]} and {"image_analysis":{"objects":[...]}};
// anything else yields an empty list without an error. An error is returned
// only when the payload is not valid JSON at all.
func Normalize(raw []byte) ([]Item, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed model output: %w", err)
	}
	return normalizePayload(payload), nil
}

func normalizePayload(payload any) []Item {
	switch v := payload.(type) {
	case []any:
		return normalizeObjects(v)
	case map[string]any:
		if _, ok := v["image_analysis"].(map[string]any); ok {
			// Canonical deep shape: sanitize fills defaults, then reuse the
			// same object-to-item conversion the deep path uses.
			return ObjectsToItems(DecodeAnalysis(SanitizePayload(v)))
		}
		if items, ok := v["items"].([]any); ok {
			return normalizeObjects(items)
		}
		if objects, ok := v["objects"].([]any); ok {
			return normalizeObjects(objects)
		}
	}
	return nil
}

func normalizeObjects(source []any) []Item {
	var items []Item
	for _, entry := range source {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, ok := obj["name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		item := Item{
			Name:        strings.TrimSpace(name),
			Description: stringField(obj, "description", ""),
			Quantity:    coerceQuantity(obj["quantity"]),
			Condition:   stringField(obj, "condition", DefaultText),
		}
		coords, ok := obj["coordinates"]
		if !ok {
			coords = obj["bbox"]
		}
		item.Coordinates = coerceBoxes(coords)
		items = append(items, item)
	}
	return items
}

// coerceQuantity turns whatever the model claimed into a positive integer.
// Booleans, non-numeric values and non-positive counts all fall back to 1.
func coerceQuantity(v any) int {
	switch q := v.(type) {
	case bool:
		return 1
	case float64:
		if n := int(q); n > 0 {
			return n
		}
	case json.Number:
		if f, err := q.Float64(); err == nil {
			if n := int(f); n > 0 {
				return n
			}
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(q)); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func stringField(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return fallback
}

// coerceBoxes accepts either one [x1,y1,x2,y2] box or a list of boxes.
// An individually malformed box is dropped without failing the item.
func coerceBoxes(coords any) []Box {
	list, ok := coords.([]any)
	if !ok {
		return nil
	}
	if box, ok := coerceBox(list); ok {
		return []Box{box}
	}
	var boxes []Box
	for _, entry := range list {
		nested, ok := entry.([]any)
		if !ok {
			continue
		}
		if box, ok := coerceBox(nested); ok {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

// coerceBox requires exactly 4 numeric, non-boolean members.
func coerceBox(values []any) (Box, bool) {
	var box Box
	if len(values) != 4 {
		return box, false
	}
	for i, v := range values {
		f, ok := boxNumber(v)
		if !ok {
			return box, false
		}
		box[i] = f
	}
	return box, true
}

func boxNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case bool:
		return 0, false
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
