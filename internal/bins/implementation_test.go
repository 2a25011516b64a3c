// internal/bins/implementation_test.go
package bins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbin/internal/inventory"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	repo := NewRepository(NewMemoryStore())
	require.NoError(t, repo.Load(context.Background()))
	return NewService(repo)
}

func TestAddItemAccumulatesKeepingDisplayCase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "Coffee Mug", Quantity: 2}))
	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "coffee mug", Quantity: 3}))

	bin, err := svc.GetBin(ctx, "garage-1")
	require.NoError(t, err)
	require.Len(t, bin.Inventory.Items, 1)
	assert.Equal(t, "Coffee Mug", bin.Inventory.Items[0].Name)
	assert.Equal(t, 5, bin.Inventory.Items[0].Quantity)
	assert.Equal(t, inventory.DefaultCondition, bin.Inventory.Items[0].Condition)
	assert.Len(t, bin.History, 2)
}

func TestAddItemRejectsEmptyName(t *testing.T) {
	svc := newTestService(t)
	err := svc.AddItem(context.Background(), "garage-1", inventory.Item{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestUpdateItemFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "lamp", Quantity: 1}))

	newName, quantity, condition := "desk lamp", 3, "Fair"
	err := svc.UpdateItem(ctx, "garage-1", "LAMP", ItemUpdate{
		Name:      &newName,
		Quantity:  &quantity,
		Condition: &condition,
	})
	require.NoError(t, err)

	bin, err := svc.GetBin(ctx, "garage-1")
	require.NoError(t, err)
	require.Len(t, bin.Inventory.Items, 1)
	assert.Equal(t, "desk lamp", bin.Inventory.Items[0].Name)
	assert.Equal(t, 3, bin.Inventory.Items[0].Quantity)
	assert.Equal(t, "fair", bin.Inventory.Items[0].Condition)
}

func TestUpdateItemNotFound(t *testing.T) {
	svc := newTestService(t)
	quantity := 2
	err := svc.UpdateItem(context.Background(), "garage-1", "ghost", ItemUpdate{Quantity: &quantity})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItemByNameAndLast(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "first", Quantity: 1}))
	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "second", Quantity: 1}))
	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "third", Quantity: 1}))

	require.NoError(t, svc.RemoveItem(ctx, "garage-1", "second"))
	// No name removes the most recently listed entry.
	require.NoError(t, svc.RemoveItem(ctx, "garage-1", ""))

	bin, err := svc.GetBin(ctx, "garage-1")
	require.NoError(t, err)
	require.Len(t, bin.Inventory.Items, 1)
	assert.Equal(t, "first", bin.Inventory.Items[0].Name)

	err = svc.RemoveItem(ctx, "garage-1", "ghost")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestClearInventoryRecordsHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "mug", Quantity: 2}))

	require.NoError(t, svc.ClearInventory(ctx, "garage-1"))

	bin, err := svc.GetBin(ctx, "garage-1")
	require.NoError(t, err)
	assert.Empty(t, bin.Inventory.Items)

	last := bin.History[len(bin.History)-1]
	assert.Equal(t, ActionRemove, last.Action)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "mug", last.Items[0].Name)

	// Clearing an empty inventory is a no-op, not an error.
	require.NoError(t, svc.ClearInventory(ctx, "garage-1"))
}

func TestImageManagement(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddImage(ctx, "garage-1", "a.jpg"))
	require.NoError(t, svc.AddImage(ctx, "garage-1", "b.jpg"))
	require.NoError(t, svc.AddImage(ctx, "garage-1", "a.jpg"), "duplicate is a no-op")

	bin, err := svc.GetBin(ctx, "garage-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, bin.Images)

	require.NoError(t, svc.RemoveImage(ctx, "garage-1", "a.jpg"))
	err = svc.RemoveImage(ctx, "garage-1", "a.jpg")
	assert.ErrorIs(t, err, ErrImageNotFound)

	require.NoError(t, svc.ClearImages(ctx, "garage-1"))
	bin, err = svc.GetBin(ctx, "garage-1")
	require.NoError(t, err)
	assert.Empty(t, bin.Images)
}

func TestSearchAcrossBins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "red mug", Quantity: 1}))
	require.NoError(t, svc.AddItem(ctx, "attic-1", inventory.Item{Name: "plate", Description: "mug-sized plate", Quantity: 1}))
	require.NoError(t, svc.AddItem(ctx, "attic-1", inventory.Item{Name: "lamp", Quantity: 1}))

	results := svc.Search(ctx, "MUG")
	require.Len(t, results, 2)
	assert.Equal(t, "attic-1", results[0].BinID)
	assert.Equal(t, "plate", results[0].Item.Name)
	assert.Equal(t, "garage-1", results[1].BinID)

	assert.Empty(t, svc.Search(ctx, "piano"))
	assert.Empty(t, svc.Search(ctx, "  "))
}

func TestItemCount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.ItemCount(ctx, "nope")
	assert.ErrorIs(t, err, ErrBinNotFound)

	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "mug", Quantity: 2}))
	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "plate", Quantity: 3}))

	count, err := svc.ItemCount(ctx, "garage-1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestStatusAndHistoryAccessors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Status(ctx, "nope")
	assert.ErrorIs(t, err, ErrBinNotFound)

	require.NoError(t, svc.AddItem(ctx, "garage-1", inventory.Item{Name: "mug", Quantity: 1}))

	status, err := svc.Status(ctx, "garage-1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, status.State)

	history, err := svc.History(ctx, "garage-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ActionAdd, history[0].Action)
}
