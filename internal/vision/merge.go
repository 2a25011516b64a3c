// internal/vision/merge.go
package vision

import (
	"sort"
	"strings"
)

// MergeDualPass combines two independent deep-scan passes over the same
// image (broad pass A, small/background pass B) into one deduplicated
// result. Entries dedup by lowercased trimmed name; coordinate lists
// concatenate without cross-pass overlap suppression, so an object boxed by
// both passes counts twice. Quantity becomes the accumulated box count when
// any boxes exist, else the max of the claimed counts. Output is sorted by
// name for determinism.
func MergeDualPass(a, b Analysis) Analysis {
	index := make(map[string]*Object)
	var order []string

	add := func(obj Object) {
		name := strings.ToLower(strings.TrimSpace(obj.Name))
		if name == "" {
			name = DefaultText
		}

		entry, ok := index[name]
		if !ok {
			entry = &Object{
				Name:        name,
				Description: textOrUnknown(obj.Description),
				Condition:   textOrUnknown(obj.Condition),
			}
			index[name] = entry
			order = append(order, name)
		}

		entry.Coordinates = append(entry.Coordinates, obj.Coordinates...)
		entry.Description = betterText(entry.Description, obj.Description)
		entry.Condition = strings.ToLower(betterText(entry.Condition, obj.Condition))

		if len(entry.Coordinates) > 0 {
			entry.Quantity = len(entry.Coordinates)
		} else if obj.Quantity > entry.Quantity {
			entry.Quantity = obj.Quantity
		}
	}

	for _, obj := range a.Objects {
		add(obj)
	}
	for _, obj := range b.Objects {
		add(obj)
	}

	sort.Strings(order)
	out := Analysis{Objects: make([]Object, 0, len(order))}
	for _, name := range order {
		out.Objects = append(out.Objects, *index[name])
	}
	return out
}

// betterText prefers incoming text when the current value is exactly
// "unknown", or when the incoming value is informative and strictly longer.
// Otherwise the current value wins; two empty values collapse to "unknown".
func betterText(current, incoming string) string {
	cur := strings.TrimSpace(current)
	next := strings.TrimSpace(incoming)

	curUnknown := strings.EqualFold(cur, DefaultText)
	nextUnknown := strings.EqualFold(next, DefaultText)

	if curUnknown && next != "" && !nextUnknown {
		return next
	}
	if !nextUnknown && len(next) > len(cur) && !curUnknown {
		return next
	}
	if cur != "" {
		return cur
	}
	if next != "" {
		return next
	}
	return DefaultText
}

func textOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return DefaultText
	}
	return s
}
