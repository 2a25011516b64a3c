// internal/vision/merge_test.go
package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDualPassDedupByName(t *testing.T) {
	a := Analysis{Objects: []Object{
		{Name: "Box", Quantity: 1, Coordinates: []Box{{0, 0, 100, 100}}, Description: "unknown", Condition: "good"},
	}}
	b := Analysis{Objects: []Object{
		{Name: "box", Quantity: 1, Coordinates: []Box{{200, 200, 300, 300}}, Description: "cardboard box", Condition: "unknown"},
	}}

	merged := MergeDualPass(a, b)
	require.Len(t, merged.Objects, 1)

	obj := merged.Objects[0]
	assert.Equal(t, "box", obj.Name)
	assert.Len(t, obj.Coordinates, 2)
	assert.Equal(t, 2, obj.Quantity)
	assert.Equal(t, "cardboard box", obj.Description)
	assert.Equal(t, "good", obj.Condition)
}

func TestMergeDualPassQuantityWithoutBoxes(t *testing.T) {
	a := Analysis{Objects: []Object{{Name: "nail", Quantity: 3}}}
	b := Analysis{Objects: []Object{{Name: "nail", Quantity: 7}}}

	merged := MergeDualPass(a, b)
	require.Len(t, merged.Objects, 1)
	assert.Equal(t, 7, merged.Objects[0].Quantity)
}

func TestMergeDualPassBoxesOverrideClaims(t *testing.T) {
	a := Analysis{Objects: []Object{{Name: "screw", Quantity: 50}}}
	b := Analysis{Objects: []Object{{Name: "screw", Quantity: 50, Coordinates: []Box{{0, 0, 5, 5}}}}}

	merged := MergeDualPass(a, b)
	require.Len(t, merged.Objects, 1)
	assert.Equal(t, 1, merged.Objects[0].Quantity)
}

func TestMergeDualPassSortedOutput(t *testing.T) {
	a := Analysis{Objects: []Object{{Name: "zipper", Quantity: 1}, {Name: "anvil", Quantity: 1}}}

	merged := MergeDualPass(a, Analysis{})
	require.Len(t, merged.Objects, 2)
	assert.Equal(t, "anvil", merged.Objects[0].Name)
	assert.Equal(t, "zipper", merged.Objects[1].Name)
}

func TestBetterText(t *testing.T) {
	cases := []struct {
		current, incoming, want string
	}{
		{"unknown", "red mug", "red mug"},
		{"red mug", "unknown", "red mug"},
		{"mug", "large red mug", "large red mug"},
		{"large red mug", "mug", "large red mug"},
		{"", "", "unknown"},
		{"", "mug", "mug"},
		{"Unknown", "mug", "mug"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, betterText(tc.current, tc.incoming),
			"betterText(%q, %q)", tc.current, tc.incoming)
	}
}
