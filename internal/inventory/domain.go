// internal/inventory/domain.go
package inventory

import (
	"strings"

	"smartbin/internal/vision"
)

// Item is one persisted inventory entry. Name keeps the display case of the
// first insert; uniqueness within a bin is by lowercased name.
type Item struct {
	Name          string            `json:"name"`
	Quantity      int               `json:"quantity"`
	Condition     string            `json:"condition"`
	Description   string            `json:"description,omitempty"`
	Bbox          *vision.PixelBox  `json:"bbox,omitempty"`
	Bboxes        []vision.PixelBox `json:"bboxes,omitempty"`
	ImageFilename string            `json:"image_filename,omitempty"`
}

// Inventory is the item collection owned by one bin.
type Inventory struct {
	Items []Item `json:"items"`
}

// DefaultCondition is assumed for items that never stated one.
const DefaultCondition = "good"

// Condition ranks, best first. Unlisted conditions rank alongside "good".
var conditionRank = map[string]int{
	"good":              0,
	"fair":              1,
	"needs replacement": 2,
}

// FromDetection converts a normalized detection into an inventory entry.
func FromDetection(d vision.Item) Item {
	condition := d.Condition
	if strings.TrimSpace(condition) == "" {
		condition = DefaultCondition
	}
	return Item{
		Name:          d.Name,
		Quantity:      d.Quantity,
		Condition:     condition,
		Description:   d.Description,
		Bbox:          d.Bbox,
		Bboxes:        d.Bboxes,
		ImageFilename: d.ImageFilename,
	}
}

// FromDetections converts a batch of detections.
func FromDetections(ds []vision.Item) []Item {
	items := make([]Item, 0, len(ds))
	for _, d := range ds {
		items = append(items, FromDetection(d))
	}
	return items
}

// NameSet returns the lowercased names currently in the inventory.
func (inv Inventory) NameSet() map[string]struct{} {
	set := make(map[string]struct{}, len(inv.Items))
	for _, item := range inv.Items {
		set[strings.ToLower(strings.TrimSpace(item.Name))] = struct{}{}
	}
	return set
}

// Names returns the display names in inventory order.
func (inv Inventory) Names() []string {
	names := make([]string, 0, len(inv.Items))
	for _, item := range inv.Items {
		names = append(names, item.Name)
	}
	return names
}

// Count is the total quantity across all items.
func (inv Inventory) Count() int {
	total := 0
	for _, item := range inv.Items {
		total += item.Quantity
	}
	return total
}

// Clone deep-copies the inventory so callers can mutate snapshots freely.
func (inv Inventory) Clone() Inventory {
	out := Inventory{Items: make([]Item, len(inv.Items))}
	for i, item := range inv.Items {
		out.Items[i] = item.clone()
	}
	return out
}

func (item Item) clone() Item {
	if item.Bbox != nil {
		b := *item.Bbox
		item.Bbox = &b
	}
	item.Bboxes = append([]vision.PixelBox(nil), item.Bboxes...)
	return item
}
