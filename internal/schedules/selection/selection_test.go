package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bim-schedules/internal/schedules/models"
)

func availParam(id, name, group string) models.AvailableParameter {
	return models.AvailableParameter{
		ID:           id,
		Kind:         models.KindBIM,
		Name:         name,
		Type:         models.TypeString,
		FetchedGroup: group,
		CurrentGroup: group,
		Visible:      true,
	}
}

func TestReconcileDefaultOrdering(t *testing.T) {
	available := []models.AvailableParameter{
		availParam("z", "Zeta", "Dimensions"),
		availParam("a", "Alpha", "Dimensions"),
		availParam("m", "Mu", "Constraints"),
	}

	result := Reconcile(available, nil)
	require.Len(t, result, 3)

	// (group, name), order плотный с нуля.
	assert.Equal(t, []string{"m", "a", "z"}, ids(result))
	for i, s := range result {
		assert.Equal(t, i, s.Order)
		assert.True(t, s.Visible)
	}
}

func TestReconcileCarriesUserState(t *testing.T) {
	available := []models.AvailableParameter{
		availParam("a", "Alpha", "Dimensions"),
		availParam("b", "Beta", "Dimensions"),
	}
	existing := []models.SelectedParameter{
		{ID: "b", Order: 0, Visible: false},
		{ID: "a", Order: 1, Visible: true},
	}

	result := Reconcile(available, existing)
	require.Len(t, result, 2)

	assert.Equal(t, []string{"b", "a"}, ids(result))
	assert.False(t, result[0].Visible)
	assert.True(t, result[1].Visible)
}

func TestReconcileAppendsNewAfterExisting(t *testing.T) {
	available := []models.AvailableParameter{
		availParam("a", "Alpha", "Dimensions"),
		availParam("new1", "Aardvark", "Constraints"),
		availParam("new2", "Beta", "Dimensions"),
	}
	existing := []models.SelectedParameter{
		{ID: "a", Order: 5, Visible: true},
	}

	result := Reconcile(available, existing)
	require.Len(t, result, 3)

	// Существующий остается первым, новые — в конце в дефолтном порядке,
	// несмотря на то что сортируются раньше по (group, name).
	assert.Equal(t, "a", result[0].ID)
	assert.Equal(t, []string{"new1", "new2"}, ids(result[1:]))
	assert.Equal(t, []int{0, 1, 2}, orders(result))
}

func TestReconcileDropsMissing(t *testing.T) {
	available := []models.AvailableParameter{
		availParam("a", "Alpha", "Dimensions"),
	}
	existing := []models.SelectedParameter{
		{ID: "gone", Order: 0, Visible: true},
		{ID: "a", Order: 1, Visible: true},
	}

	result := Reconcile(available, existing)
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].ID)
	assert.Equal(t, 0, result[0].Order)
}

func TestReconcileIdempotent(t *testing.T) {
	available := []models.AvailableParameter{
		availParam("z", "Zeta", "Dimensions"),
		availParam("a", "Alpha", "Dimensions"),
		availParam("m", "Mu", "Constraints"),
	}

	first := Reconcile(available, nil)
	second := Reconcile(available, first)
	assert.Equal(t, first, second)

	third := Reconcile(available, second)
	assert.Equal(t, second, third)
}

func ids(list []models.SelectedParameter) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func orders(list []models.SelectedParameter) []int {
	out := make([]int, len(list))
	for i, s := range list {
		out[i] = s.Order
	}
	return out
}
