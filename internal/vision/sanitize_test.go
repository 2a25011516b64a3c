// internal/vision/sanitize_test.go
package vision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestSanitizeFillsDefaults(t *testing.T) {
	payload := decode(t, `{"image_analysis": {"objects": [
		{"name": "  Mug ", "description": "", "quantity": 2},
		{"name": "", "condition": "Used"}
	]}}`)

	sanitized := SanitizePayload(payload)
	analysis := DecodeAnalysis(sanitized)
	require.Len(t, analysis.Objects, 2)

	assert.Equal(t, "mug", analysis.Objects[0].Name)
	assert.Equal(t, DefaultText, analysis.Objects[0].Description)
	assert.Equal(t, DefaultText, analysis.Objects[0].Condition)
	assert.Equal(t, 2, analysis.Objects[0].Quantity)

	assert.Equal(t, DefaultText, analysis.Objects[1].Name)
	assert.Equal(t, "used", analysis.Objects[1].Condition)
}

func TestSanitizeQuantityFollowsBoxCount(t *testing.T) {
	payload := decode(t, `{"image_analysis": {"objects": [{
		"name": "bottle",
		"quantity": 9,
		"coordinates": [[0,0,100,100], [200,200,300,300], ["bad"], [1,2,3]]
	}]}}`)

	analysis := DecodeAnalysis(SanitizePayload(payload))
	require.Len(t, analysis.Objects, 1)
	assert.Equal(t, 2, analysis.Objects[0].Quantity)
	assert.Len(t, analysis.Objects[0].Coordinates, 2)
}

func TestSanitizeNonObjectPayload(t *testing.T) {
	for _, raw := range []string{`[]`, `"text"`, `{"unexpected": 1}`} {
		analysis := DecodeAnalysis(SanitizePayload(decode(t, raw)))
		assert.Empty(t, analysis.Objects, raw)
	}
}

func TestObjectsToItems(t *testing.T) {
	analysis := Analysis{Objects: []Object{
		{Name: "crate", Quantity: 0, Coordinates: []Box{{0, 0, 10, 10}}},
		{Name: "   "},
	}}

	items := ObjectsToItems(analysis)
	require.Len(t, items, 1)
	assert.Equal(t, "crate", items[0].Name)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Len(t, items[0].Coordinates, 1)
}
