package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bim-schedules/internal/schedules/models"
)

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key   string
		group string
		name  string
	}{
		{"Dimensions.Width", "Dimensions", "Width"},
		{"Width", "Parameters", "Width"},
		{"Parameters.Custom", "Parameters", "Custom"},
		{"Parameters.Some.Deep", "Parameters", "Some.Deep"},
		{"Identity Data.Mark", "Identity Data", "Mark"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			group, name := splitKey(tt.key)
			assert.Equal(t, tt.group, group)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestExtractSkipsSystemAndEmptyKeys(t *testing.T) {
	elements := []models.ElementData{
		{
			ID:       "w1",
			Category: "Walls",
			Parameters: map[string]any{
				"__internal":       "hidden",
				"":                 "broken",
				"Dimensions.Width": 300.0,
			},
		},
	}

	raw, stats := ExtractWithStats(elements)
	require.Len(t, raw, 1)
	assert.Equal(t, "Dimensions.Width", raw[0].ID)
	assert.Equal(t, "Width", raw[0].Name)
	assert.Equal(t, "Dimensions", raw[0].Group.FetchedGroup)
	assert.Equal(t, "Dimensions", raw[0].Group.CurrentGroup)

	assert.Equal(t, 1, stats.Elements)
	assert.Equal(t, 3, stats.Seen)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Emitted)
}

func TestExtractUnpacksJSONContainer(t *testing.T) {
	elements := []models.ElementData{
		{
			ID:       "w1",
			Category: "Walls",
			Parameters: map[string]any{
				"Pset_WallCommon": `{"Reference":"basic","LoadBearing":true}`,
			},
		},
	}

	raw, stats := ExtractWithStats(elements)
	require.Len(t, raw, 3)

	container := raw[0]
	assert.Equal(t, "Pset_WallCommon", container.ID)
	assert.True(t, container.Metadata.IsJSONString)
	assert.False(t, container.Metadata.IsNested)

	// Вложенные — в отсортированном порядке ключей.
	assert.Equal(t, "Pset_WallCommon.LoadBearing", raw[1].ID)
	assert.Equal(t, "LoadBearing", raw[1].Name)
	assert.Equal(t, true, raw[1].Value)
	assert.True(t, raw[1].Metadata.IsNested)
	assert.Equal(t, "Pset_WallCommon", raw[1].Metadata.ParentKey)

	assert.Equal(t, "Pset_WallCommon.Reference", raw[2].ID)
	assert.Equal(t, "basic", raw[2].Value)

	assert.Equal(t, 2, stats.Nested)
	assert.Equal(t, 3, stats.Emitted)
}

func TestExtractLeavesNonObjectStringsAlone(t *testing.T) {
	elements := []models.ElementData{
		{
			ID:       "w1",
			Category: "Walls",
			Parameters: map[string]any{
				"Notes": `[1,2,3]`,
				"Bad":   `{not json}`,
			},
		},
	}

	raw, _ := ExtractWithStats(elements)
	require.Len(t, raw, 2)
	for _, p := range raw {
		assert.False(t, p.Metadata.IsJSONString, p.ID)
	}
}

func TestExtractScopeAssignment(t *testing.T) {
	elements := []models.ElementData{
		{ID: "p1", Category: "Walls", Parameters: map[string]any{"A": 1.0}},
		{ID: "c1", Category: "Doors", IsChild: true, Host: "p1", Parameters: map[string]any{"B": 2.0}},
		// Child с parent-категорией трактуется как parent.
		{ID: "c2", Category: "Floors", IsChild: true, Parameters: map[string]any{"C": 3.0}},
		// Без категории — Uncategorized, parent-scope.
		{ID: "u1", Parameters: map[string]any{"D": 4.0}},
	}

	raw, _ := ExtractWithStats(elements)
	require.Len(t, raw, 4)

	byID := map[string]models.RawParameter{}
	for _, p := range raw {
		byID[p.ID] = p
	}

	assert.True(t, byID["A"].Metadata.IsParent)
	assert.False(t, byID["B"].Metadata.IsParent)
	assert.True(t, byID["C"].Metadata.IsParent)
	assert.True(t, byID["D"].Metadata.IsParent)
	assert.Equal(t, models.UncategorizedCategory, byID["D"].Metadata.Category)
}
