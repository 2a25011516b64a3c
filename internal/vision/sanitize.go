// internal/vision/sanitize.go
package vision

import "strings"

// SanitizePayload coerces a decoded deep-scan payload into the canonical
// {"image_analysis":{"objects":[...]}} shape, filling defaults so that the
// validator only ever surfaces structural violations. Names come back
// lowercased, blank text fields become "unknown", malformed coordinate
// entries are dropped and the quantity is forced to the box count whenever
// boxes survive. The input is never mutated.
func SanitizePayload(payload any) map[string]any {
	out := map[string]any{"image_analysis": map[string]any{"objects": []any{}}}

	root, ok := payload.(map[string]any)
	if !ok {
		return out
	}
	ia, _ := root["image_analysis"].(map[string]any)
	objs, _ := ia["objects"].([]any)

	cleaned := make([]any, 0, len(objs))
	for _, entry := range objs {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		name := DefaultText
		if s, ok := obj["name"].(string); ok && strings.TrimSpace(s) != "" {
			name = strings.ToLower(strings.TrimSpace(s))
		}
		desc := DefaultText
		if s, ok := obj["description"].(string); ok && strings.TrimSpace(s) != "" {
			desc = strings.TrimSpace(s)
		}
		cond := DefaultText
		if s, ok := obj["condition"].(string); ok && strings.TrimSpace(s) != "" {
			cond = strings.ToLower(strings.TrimSpace(s))
		}

		var coords []any
		if list, ok := obj["coordinates"].([]any); ok {
			for _, boxEntry := range list {
				nested, ok := boxEntry.([]any)
				if !ok {
					continue
				}
				if box, ok := coerceBox(nested); ok {
					coords = append(coords, []any{box[0], box[1], box[2], box[3]})
				}
			}
		}

		quantity := len(coords)
		if len(coords) == 0 {
			if f, ok := obj["quantity"].(float64); ok && f == float64(int(f)) && int(f) >= 0 {
				quantity = int(f)
			}
		}

		cleaned = append(cleaned, map[string]any{
			"name":        name,
			"description": desc,
			"quantity":    quantity,
			"coordinates": coords,
			"condition":   cond,
		})
	}

	out["image_analysis"] = map[string]any{"objects": cleaned}
	return out
}

// DecodeAnalysis lifts a sanitized payload into the typed canonical form.
// It assumes SanitizePayload (and, on the deep path, ValidateDeepSchema)
// already ran; entries that still do not fit are skipped.
func DecodeAnalysis(sanitized map[string]any) Analysis {
	var out Analysis
	ia, _ := sanitized["image_analysis"].(map[string]any)
	objs, _ := ia["objects"].([]any)
	for _, entry := range objs {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		o := Object{
			Name:        stringField(obj, "name", DefaultText),
			Description: stringField(obj, "description", DefaultText),
			Condition:   stringField(obj, "condition", DefaultText),
		}
		switch q := obj["quantity"].(type) {
		case int:
			o.Quantity = q
		case float64:
			o.Quantity = int(q)
		}
		if list, ok := obj["coordinates"].([]any); ok {
			for _, boxEntry := range list {
				if nested, ok := boxEntry.([]any); ok {
					if box, ok := coerceBox(nested); ok {
						o.Coordinates = append(o.Coordinates, box)
					}
				}
			}
		}
		out.Objects = append(out.Objects, o)
	}
	return out
}

// ObjectsToItems converts canonical deep-scan objects into items, keeping
// the boxes in model space for the coordinate mapper.
func ObjectsToItems(analysis Analysis) []Item {
	var items []Item
	for _, obj := range analysis.Objects {
		if strings.TrimSpace(obj.Name) == "" {
			continue
		}
		quantity := obj.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = append(items, Item{
			Name:        strings.TrimSpace(obj.Name),
			Description: obj.Description,
			Quantity:    quantity,
			Condition:   obj.Condition,
			Coordinates: append([]Box(nil), obj.Coordinates...),
		})
	}
	return items
}
