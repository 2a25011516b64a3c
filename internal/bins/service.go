// internal/bins/service.go
package bins

import (
	"context"

	"smartbin/internal/inventory"
)

// ItemUpdate carries the optional fields of a manual item edit; nil fields
// are left untouched.
type ItemUpdate struct {
	Name        *string `json:"name,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	Condition   *string `json:"condition,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SearchResult is one inventory item matched by a cross-bin search.
type SearchResult struct {
	BinID   string         `json:"bin_id"`
	BinName string         `json:"bin_name"`
	Item    inventory.Item `json:"item"`
}

// Service defines the interface for manual bin and inventory management.
type Service interface {
	ListBins(ctx context.Context) []*Bin
	GetBin(ctx context.Context, binID string) (*Bin, error)
	Status(ctx context.Context, binID string) (AnalysisStatus, error)
	History(ctx context.Context, binID string) ([]HistoryEvent, error)
	AddItem(ctx context.Context, binID string, item inventory.Item) error
	UpdateItem(ctx context.Context, binID, name string, update ItemUpdate) error
	RemoveItem(ctx context.Context, binID, name string) error
	ClearInventory(ctx context.Context, binID string) error
	AddImage(ctx context.Context, binID, filename string) error
	RemoveImage(ctx context.Context, binID, filename string) error
	ClearImages(ctx context.Context, binID string) error
	Search(ctx context.Context, query string) []SearchResult
	ItemCount(ctx context.Context, binID string) (int, error)
}
