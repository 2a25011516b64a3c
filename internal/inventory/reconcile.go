// internal/inventory/reconcile.go
package inventory

import (
	"strings"

	"smartbin/internal/vision"
)

// MergeMode selects how quantities combine when an incoming item matches an
// existing one. Both modes exist for different call sites: quick add scans
// accumulate, deep scans replace with their authoritative counts.
type MergeMode int

const (
	Accumulate MergeMode = iota
	Replace
)

// Merge reconciles incoming items into the existing inventory and returns a
// new inventory; neither input is mutated. Matching is by lowercased name.
// Conditions resolve to the better-ranked value with ties keeping the
// existing one, and optional fields are only overwritten by non-empty
// incoming values; an empty incoming value never clears an existing one.
func Merge(existing Inventory, incoming []Item, mode MergeMode) Inventory {
	merged := make([]Item, 0, len(existing.Items)+len(incoming))
	index := make(map[string]int)

	for _, item := range existing.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		item = item.clone()
		item.Name = name
		index[strings.ToLower(name)] = len(merged)
		merged = append(merged, item)
	}

	for _, item := range incoming {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		quantity := item.Quantity
		if quantity < 0 {
			quantity = 0
		}

		pos, ok := index[strings.ToLower(name)]
		if !ok {
			inserted := item.clone()
			inserted.Name = name
			inserted.Quantity = quantity
			if strings.TrimSpace(inserted.Condition) == "" {
				inserted.Condition = DefaultCondition
			}
			index[strings.ToLower(name)] = len(merged)
			merged = append(merged, inserted)
			continue
		}

		current := &merged[pos]
		switch mode {
		case Accumulate:
			current.Quantity += quantity
		case Replace:
			current.Quantity = quantity
		}
		current.Condition = resolveCondition(current.Condition, item.Condition)
		if item.Description != "" {
			current.Description = item.Description
		}
		if item.Bbox != nil {
			b := *item.Bbox
			current.Bbox = &b
		}
		if len(item.Bboxes) > 0 {
			current.Bboxes = append([]vision.PixelBox(nil), item.Bboxes...)
		}
		if item.ImageFilename != "" {
			current.ImageFilename = item.ImageFilename
		}
	}

	return Inventory{Items: merged}
}

// Subtract removes the requested quantities from matching items. Items
// whose quantity reaches zero are dropped entirely; everything not named in
// the removal list passes through unchanged, condition included.
func Subtract(existing Inventory, removals []Item) Inventory {
	requested := make(map[string]int, len(removals))
	for _, item := range removals {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" {
			continue
		}
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		requested[name] = quantity
	}

	kept := make([]Item, 0, len(existing.Items))
	for _, item := range existing.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		remove, ok := requested[strings.ToLower(name)]
		if !ok {
			kept = append(kept, item.clone())
			continue
		}
		if left := item.Quantity - remove; left > 0 {
			reduced := item.clone()
			reduced.Quantity = left
			kept = append(kept, reduced)
		}
	}
	return Inventory{Items: kept}
}

// resolveCondition keeps the better-ranked condition (good beats fair beats
// needs replacement); ties and empty incoming values keep the existing one.
func resolveCondition(existing, incoming string) string {
	if strings.TrimSpace(incoming) == "" {
		return existing
	}
	if strings.TrimSpace(existing) == "" {
		return incoming
	}
	existingRank := conditionRank[strings.ToLower(strings.TrimSpace(existing))]
	incomingRank := conditionRank[strings.ToLower(strings.TrimSpace(incoming))]
	if incomingRank < existingRank {
		return incoming
	}
	return existing
}
