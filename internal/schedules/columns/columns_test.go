package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bim-schedules/internal/schedules/models"
)

func selParam(id, name string, order int) models.SelectedParameter {
	return models.SelectedParameter{
		ID:      id,
		Name:    name,
		Kind:    models.KindBIM,
		Type:    models.TypeString,
		Group:   models.DefaultGroup,
		Visible: true,
		Order:   order,
	}
}

func TestDefaultBase(t *testing.T) {
	base := DefaultBase()
	require.Len(t, base, 2)

	assert.Equal(t, "mark", base[0].Field)
	assert.Equal(t, "category", base[1].Field)
	for _, col := range base {
		assert.False(t, col.Removable)
		assert.True(t, col.IsFixed)
		assert.True(t, col.Visible)
	}
}

func TestMergeConcatenatesBaseFirst(t *testing.T) {
	selected := []models.SelectedParameter{
		selParam("width", "Width", 0),
		selParam("length", "Length", 1),
	}

	merged := Merge(DefaultBase(), selected)
	require.Len(t, merged, 4)

	assert.Equal(t, []string{"mark", "category", "width", "length"}, fields(merged))
	for i, col := range merged {
		assert.Equal(t, i, col.Order)
	}
	assert.False(t, merged[0].Removable)
	assert.True(t, merged[2].Removable)
}

func TestMergeBaseWinsOnCollision(t *testing.T) {
	selected := []models.SelectedParameter{
		selParam("mark", "Mark", 0),
		selParam("width", "Width", 1),
	}

	merged := Merge(DefaultBase(), selected)
	require.Len(t, merged, 3)

	assert.Equal(t, []string{"mark", "category", "width"}, fields(merged))
	// Коллизия не оставляет дыры в порядке.
	assert.Equal(t, []int{0, 1, 2}, columnOrders(merged))
	assert.True(t, merged[0].IsFixed)
}

func TestFilterElementsEmptyFiltersPassEverything(t *testing.T) {
	elements := []models.ElementData{
		{ID: "p1", Category: "Walls"},
		{ID: "c1", Category: "Doors", IsChild: true},
	}

	out := FilterElements(elements, models.CategoryFilters{})
	assert.Equal(t, elements, out)
}

func TestFilterElementsByScope(t *testing.T) {
	elements := []models.ElementData{
		{ID: "p1", Category: "Walls"},
		{ID: "p2", Category: "Floors"},
		{ID: "p3"},
		{ID: "c1", Category: "Doors", IsChild: true},
		{ID: "c2", Category: "Windows", IsChild: true},
	}

	t.Run("parent filter keeps uncategorized", func(t *testing.T) {
		out := FilterElements(elements, models.CategoryFilters{
			SelectedParentCategories: []string{"Walls"},
		})
		assert.Equal(t, []string{"p1", "p3", "c1", "c2"}, elementIDs(out))
	})

	t.Run("child filter", func(t *testing.T) {
		out := FilterElements(elements, models.CategoryFilters{
			SelectedChildCategories: []string{"Doors"},
		})
		assert.Equal(t, []string{"p1", "p2", "p3", "c1"}, elementIDs(out))
	})

	t.Run("both filters apply independently", func(t *testing.T) {
		out := FilterElements(elements, models.CategoryFilters{
			SelectedParentCategories: []string{"Floors"},
			SelectedChildCategories:  []string{"Windows"},
		})
		assert.Equal(t, []string{"p2", "p3", "c2"}, elementIDs(out))
	})
}

func fields(cols []models.TableColumn) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = col.Field
	}
	return out
}

func columnOrders(cols []models.TableColumn) []int {
	out := make([]int, len(cols))
	for i, col := range cols {
		out[i] = col.Order
	}
	return out
}

func elementIDs(elements []models.ElementData) []string {
	out := make([]string, len(elements))
	for i, el := range elements {
		out[i] = el.ID
	}
	return out
}
