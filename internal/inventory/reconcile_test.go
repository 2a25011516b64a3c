// internal/inventory/reconcile_test.go
package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMergeAccumulateAddsQuantities(t *testing.T) {
	existing := Inventory{Items: []Item{{Name: "Hammer", Quantity: 2, Condition: "good"}}}
	incoming := []Item{{Name: "hammer", Quantity: 3, Condition: "good"}}

	merged := Merge(existing, incoming, Accumulate)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, "Hammer", merged.Items[0].Name)
	assert.Equal(t, 5, merged.Items[0].Quantity)
}

func TestMergeReplaceOverwritesQuantity(t *testing.T) {
	existing := Inventory{Items: []Item{{Name: "screw", Quantity: 40, Condition: "good"}}}
	incoming := []Item{{Name: "screw", Quantity: 12, Condition: "good"}}

	merged := Merge(existing, incoming, Replace)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, 12, merged.Items[0].Quantity)
}

func TestMergeInsertsNewItems(t *testing.T) {
	existing := Inventory{Items: []Item{{Name: "tape", Quantity: 1, Condition: "good"}}}
	incoming := []Item{{Name: "glue", Quantity: 2}}

	merged := Merge(existing, incoming, Accumulate)
	require.Len(t, merged.Items, 2)
	assert.Equal(t, "glue", merged.Items[1].Name)
	assert.Equal(t, DefaultCondition, merged.Items[1].Condition)
}

func TestMergeKeepsBetterCondition(t *testing.T) {
	cases := []struct {
		existing, incoming, want string
	}{
		{"fair", "good", "good"},
		{"good", "fair", "good"},
		{"needs replacement", "fair", "fair"},
		{"fair", "fair", "fair"},
		{"good", "", "good"},
		{"", "fair", "fair"},
	}
	for _, tc := range cases {
		existing := Inventory{Items: []Item{{Name: "mug", Quantity: 1, Condition: tc.existing}}}
		incoming := []Item{{Name: "mug", Quantity: 1, Condition: tc.incoming}}

		merged := Merge(existing, incoming, Accumulate)
		require.Len(t, merged.Items, 1)
		assert.Equal(t, tc.want, merged.Items[0].Condition,
			"existing=%q incoming=%q", tc.existing, tc.incoming)
	}
}

func TestMergeEmptyIncomingFieldsDoNotClear(t *testing.T) {
	existing := Inventory{Items: []Item{{
		Name: "lamp", Quantity: 1, Condition: "good",
		Description: "desk lamp", ImageFilename: "a.jpg",
	}}}
	incoming := []Item{{Name: "lamp", Quantity: 1}}

	merged := Merge(existing, incoming, Replace)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, "desk lamp", merged.Items[0].Description)
	assert.Equal(t, "a.jpg", merged.Items[0].ImageFilename)
	assert.Equal(t, "good", merged.Items[0].Condition)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := Inventory{Items: []Item{{Name: "pen", Quantity: 1, Condition: "good"}}}
	incoming := []Item{{Name: "pen", Quantity: 4, Condition: "fair"}}

	Merge(existing, incoming, Accumulate)
	assert.Equal(t, 1, existing.Items[0].Quantity)
	assert.Equal(t, 4, incoming[0].Quantity)
}

func TestSubtractDropsAtZero(t *testing.T) {
	existing := Inventory{Items: []Item{
		{Name: "bolt", Quantity: 2, Condition: "good"},
		{Name: "nut", Quantity: 5, Condition: "fair"},
	}}
	removals := []Item{
		{Name: "Bolt", Quantity: 2},
		{Name: "nut", Quantity: 4},
	}

	left := Subtract(existing, removals)
	require.Len(t, left.Items, 1)
	assert.Equal(t, "nut", left.Items[0].Name)
	assert.Equal(t, 1, left.Items[0].Quantity)
	assert.Equal(t, "fair", left.Items[0].Condition)
}

func TestSubtractDefaultsToOne(t *testing.T) {
	existing := Inventory{Items: []Item{{Name: "cup", Quantity: 3, Condition: "good"}}}
	removals := []Item{{Name: "cup"}}

	left := Subtract(existing, removals)
	require.Len(t, left.Items, 1)
	assert.Equal(t, 2, left.Items[0].Quantity)
}

func TestSubtractUnmentionedPassThrough(t *testing.T) {
	existing := Inventory{Items: []Item{{
		Name: "plant", Quantity: 1, Condition: "needs replacement", Description: "wilting",
	}}}

	left := Subtract(existing, []Item{{Name: "other"}})
	require.Len(t, left.Items, 1)
	assert.Equal(t, existing.Items[0], left.Items[0])
}

// Subtracting never increases any quantity and never invents items.
func TestSubtractNeverGrows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nameGen := rapid.SampledFrom([]string{"bolt", "nut", "washer", "screw", "nail"})

		var existing Inventory
		seen := map[string]bool{}
		for i, n := 0, rapid.IntRange(0, 5).Draw(t, "existing"); i < n; i++ {
			name := nameGen.Draw(t, "name")
			if seen[name] {
				continue
			}
			seen[name] = true
			existing.Items = append(existing.Items, Item{
				Name:      name,
				Quantity:  rapid.IntRange(1, 10).Draw(t, "quantity"),
				Condition: "good",
			})
		}

		var removals []Item
		for i, n := 0, rapid.IntRange(0, 5).Draw(t, "removals"); i < n; i++ {
			removals = append(removals, Item{
				Name:     nameGen.Draw(t, "removeName"),
				Quantity: rapid.IntRange(0, 12).Draw(t, "removeQuantity"),
			})
		}

		before := map[string]int{}
		for _, item := range existing.Items {
			before[item.Name] = item.Quantity
		}

		left := Subtract(existing, removals)
		for _, item := range left.Items {
			prev, ok := before[item.Name]
			require.True(t, ok, "item %q appeared from nowhere", item.Name)
			assert.LessOrEqual(t, item.Quantity, prev)
			assert.Greater(t, item.Quantity, 0)
		}
	})
}
