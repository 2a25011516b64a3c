// internal/bins/implementation.go
package bins

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"smartbin/internal/inventory"
)

var (
	// ErrItemNotFound is returned when a named inventory entry does not exist.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidItem is returned for manual edits with no usable name.
	ErrInvalidItem = errors.New("invalid item")
	// ErrImageNotFound is returned when a stored image filename is unknown.
	ErrImageNotFound = errors.New("image not found")
)

// service implements the Service interface on top of the repository.
type service struct {
	repo *Repository
}

// NewService creates a new bin management service.
func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListBins(ctx context.Context) []*Bin {
	snapshot := s.repo.Snapshot()
	list := make([]*Bin, 0, len(snapshot))
	for _, bin := range snapshot {
		list = append(list, bin)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *service) GetBin(ctx context.Context, binID string) (*Bin, error) {
	return s.repo.Get(binID)
}

func (s *service) Status(ctx context.Context, binID string) (AnalysisStatus, error) {
	bin, err := s.repo.Get(binID)
	if err != nil {
		return AnalysisStatus{}, err
	}
	return bin.AnalysisStatus, nil
}

func (s *service) History(ctx context.Context, binID string) ([]HistoryEvent, error) {
	bin, err := s.repo.Get(binID)
	if err != nil {
		return nil, err
	}
	return bin.History, nil
}

// AddItem folds one manually entered item into the bin. An existing entry
// with the same name (case-insensitive) accumulates quantity and keeps its
// original display case.
func (s *service) AddItem(ctx context.Context, binID string, item inventory.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidItem)
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	return s.repo.Update(ctx, binID, func(b *Bin) error {
		b.Inventory = inventory.Merge(b.Inventory, []inventory.Item{item}, inventory.Accumulate)
		b.AppendHistory(ActionAdd, []inventory.Item{item}, "")
		return nil
	})
}

func (s *service) UpdateItem(ctx context.Context, binID, name string, update ItemUpdate) error {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidItem)
	}
	return s.repo.Update(ctx, binID, func(b *Bin) error {
		for i := range b.Inventory.Items {
			entry := &b.Inventory.Items[i]
			if strings.ToLower(entry.Name) != target {
				continue
			}
			if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
				entry.Name = strings.TrimSpace(*update.Name)
			}
			if update.Quantity != nil && *update.Quantity > 0 {
				entry.Quantity = *update.Quantity
			}
			if update.Condition != nil && *update.Condition != "" {
				entry.Condition = strings.ToLower(*update.Condition)
			}
			if update.Description != nil {
				entry.Description = *update.Description
			}
			return nil
		}
		return fmt.Errorf("%w: %s", ErrItemNotFound, name)
	})
}

// RemoveItem deletes one inventory entry by name, or the most recently
// listed entry when name is empty.
func (s *service) RemoveItem(ctx context.Context, binID, name string) error {
	target := strings.ToLower(strings.TrimSpace(name))
	return s.repo.Update(ctx, binID, func(b *Bin) error {
		items := b.Inventory.Items
		if len(items) == 0 {
			return fmt.Errorf("%w: inventory is empty", ErrItemNotFound)
		}
		idx := len(items) - 1
		if target != "" {
			idx = -1
			for i := range items {
				if strings.ToLower(items[i].Name) == target {
					idx = i
					break
				}
			}
			if idx < 0 {
				return fmt.Errorf("%w: %s", ErrItemNotFound, name)
			}
		}
		removed := items[idx]
		b.Inventory.Items = append(items[:idx], items[idx+1:]...)
		b.AppendHistory(ActionRemove, []inventory.Item{removed}, "")
		return nil
	})
}

func (s *service) ClearInventory(ctx context.Context, binID string) error {
	return s.repo.Update(ctx, binID, func(b *Bin) error {
		if len(b.Inventory.Items) == 0 {
			return ErrNoChange
		}
		b.AppendHistory(ActionRemove, b.Inventory.Items, "")
		b.Inventory = inventory.Inventory{}
		return nil
	})
}

func (s *service) AddImage(ctx context.Context, binID, filename string) error {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return fmt.Errorf("%w: empty filename", ErrImageNotFound)
	}
	return s.repo.Update(ctx, binID, func(b *Bin) error {
		if !b.AppendImage(filename) {
			return ErrNoChange
		}
		return nil
	})
}

func (s *service) RemoveImage(ctx context.Context, binID, filename string) error {
	return s.repo.Update(ctx, binID, func(b *Bin) error {
		if !b.RemoveImage(filename) {
			return fmt.Errorf("%w: %s", ErrImageNotFound, filename)
		}
		return nil
	})
}

func (s *service) ClearImages(ctx context.Context, binID string) error {
	return s.repo.Update(ctx, binID, func(b *Bin) error {
		if len(b.Images) == 0 {
			return ErrNoChange
		}
		b.Images = nil
		return nil
	})
}

// ItemCount is the total quantity across the bin's items.
func (s *service) ItemCount(ctx context.Context, binID string) (int, error) {
	bin, err := s.repo.Get(binID)
	if err != nil {
		return 0, err
	}
	return bin.Inventory.Count(), nil
}

// Search matches the query as a case-insensitive substring of item names
// and descriptions across every bin.
func (s *service) Search(ctx context.Context, query string) []SearchResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	results := []SearchResult{}
	if needle == "" {
		return results
	}
	snapshot := s.repo.Snapshot()
	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		bin := snapshot[id]
		for _, item := range bin.Inventory.Items {
			if strings.Contains(strings.ToLower(item.Name), needle) ||
				strings.Contains(strings.ToLower(item.Description), needle) {
				results = append(results, SearchResult{BinID: bin.ID, BinName: bin.Name, Item: item})
			}
		}
	}
	return results
}
