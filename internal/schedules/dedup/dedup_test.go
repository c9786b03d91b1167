package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bim-schedules/internal/schedules/classifier"
	"bim-schedules/internal/schedules/extractor"
	"bim-schedules/internal/schedules/models"
)

func rawParam(id, name, group string, value any, isParent bool) models.RawParameter {
	return models.RawParameter{
		ID:    id,
		Name:  name,
		Value: value,
		Group: models.ParameterGroup{FetchedGroup: group, CurrentGroup: group},
		Metadata: models.RawMetadata{
			Category:  "Walls",
			ElementID: "e1",
			IsParent:  isParent,
		},
	}
}

func TestDedupeCaseInsensitive(t *testing.T) {
	raw := []models.RawParameter{
		rawParam("Mark", "Mark", "Parameters", "W-01", true),
		rawParam("mark", "mark", "Parameters", "W-02", true),
	}

	result := DedupeAndCategorize(raw)
	require.Len(t, result.Parent, 1)
	// First-wins: и имя, и значение из первой записи.
	assert.Equal(t, "Mark", result.Parent[0].Name)
	assert.Equal(t, "W-01", result.Parent[0].Value)
}

func TestDedupeNullBackfill(t *testing.T) {
	t.Run("null replaced by later non-null", func(t *testing.T) {
		raw := []models.RawParameter{
			rawParam("Width", "Width", "Dimensions", nil, true),
			rawParam("width", "width", "Dimensions", 300.0, true),
		}
		result := DedupeAndCategorize(raw)
		require.Len(t, result.Parent, 1)
		assert.Equal(t, 300.0, result.Parent[0].Value)
	})

	t.Run("non-null never replaced by null", func(t *testing.T) {
		raw := []models.RawParameter{
			rawParam("Width", "Width", "Dimensions", 300.0, true),
			rawParam("width", "width", "Dimensions", nil, true),
		}
		result := DedupeAndCategorize(raw)
		require.Len(t, result.Parent, 1)
		assert.Equal(t, "Width", result.Parent[0].Name)
		assert.Equal(t, 300.0, result.Parent[0].Value)
	})
}

func TestScopesDedupeIndependently(t *testing.T) {
	raw := []models.RawParameter{
		rawParam("Width", "Width", "Dimensions", 300.0, true),
		rawParam("Width", "Width", "Dimensions", 80.0, false),
	}

	result := DedupeAndCategorize(raw)
	require.Len(t, result.Parent, 1)
	require.Len(t, result.Child, 1)
	assert.Equal(t, 300.0, result.Parent[0].Value)
	assert.Equal(t, 80.0, result.Child[0].Value)
}

func TestOriginCascade(t *testing.T) {
	tests := []struct {
		name  string
		param models.RawParameter
		want  models.ParameterKind
	}{
		{"pset prefix", rawParam("Pset_WallCommon.Reference", "Reference", "Pset_WallCommon", "x", true), models.KindBIM},
		{"structural group", rawParam("Dimensions.Width", "Width", "Dimensions", 300.0, true), models.KindBIM},
		{"bim id suffix", rawParam("Wall.Type", "Type", "Wall", "Basic", true), models.KindBIM},
		{"ifc prefix", rawParam("IfcGuid", "IfcGuid", "Custom", "abc", true), models.KindBIM},
		{"free annotation", rawParam("Comments.MyNote", "MyNote", "Comments", "hello", true), models.KindUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndCategorize([]models.RawParameter{tt.param})
			require.Len(t, result.Parent, 1)
			assert.Equal(t, tt.want, result.Parent[0].Kind)
		})
	}
}

func TestNestedInheritsContainerOrigin(t *testing.T) {
	container := rawParam("Pset_WallCommon", "Pset_WallCommon", "Parameters", `{"Note":"x"}`, true)
	container.Metadata.IsJSONString = true

	nested := rawParam("Pset_WallCommon.Note", "Note", "Parameters", "x", true)
	nested.Metadata.IsNested = true
	nested.Metadata.ParentKey = "Pset_WallCommon"

	result := DedupeAndCategorize([]models.RawParameter{container, nested})
	require.Len(t, result.Parent, 2)
	for _, p := range result.Parent {
		assert.Equal(t, models.KindBIM, p.Kind, p.ID)
	}
}

func TestNestedObjectValueStaysStructural(t *testing.T) {
	elements := []models.ElementData{
		{
			ID:       "w1",
			Category: "Walls",
			Parameters: map[string]any{
				"Pset_X": `{"Sub":{"a":1},"Items":[1,2]}`,
			},
		},
	}

	result := DedupeAndCategorize(extractor.Extract(elements))
	require.Len(t, result.Parent, 3)

	byID := map[string]models.AvailableParameter{}
	for _, p := range result.Parent {
		byID[p.ID] = p
	}

	// Контейнер сам — строковый параметр, но его вложенные значения
	// сохраняют структурную форму.
	sub := byID["Pset_X.Sub"]
	assert.Equal(t, models.TypeObject, sub.Type)
	assert.Equal(t, map[string]any{"a": 1.0}, sub.Value)

	items := byID["Pset_X.Items"]
	assert.Equal(t, models.TypeArray, items.Type)
	assert.Equal(t, []any{1.0, 2.0}, items.Value)
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name  string
		param models.RawParameter
		want  models.ParameterType
	}{
		{"id stays string even when numeric", rawParam("ElementId", "ElementId", "Parameters", "12345", true), models.TypeString},
		{"global id", rawParam("GlobalId", "GlobalId", "Parameters", "2Fk$...", true), models.TypeString},
		{"type column", rawParam("Wall.Type", "Type", "Wall", "Basic", true), models.TypeString},
		{"identity data group", rawParam("Identity Data.Mark", "Mark", "Identity Data", "07", true), models.TypeString},
		{"numeric value", rawParam("Dimensions.Width", "Width", "Dimensions", 300.0, true), models.TypeNumber},
		{"numeric string coerced", rawParam("Dimensions.Area", "Area", "Dimensions", "12.5", true), models.TypeNumber},
		{"boolean", rawParam("LoadBearing", "LoadBearing", "Parameters", true, true), models.TypeBoolean},
		{"plain text", rawParam("Comments.Note", "Note", "Comments", "hello", true), models.TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classifier.Classify(tt.param.Value)
			assert.Equal(t, tt.want, InferType(tt.param, c))
		})
	}
}

func TestValueCoercionFlowsIntoAvailable(t *testing.T) {
	raw := []models.RawParameter{
		rawParam("Dimensions.Area", "Area", "Dimensions", "12.5", true),
	}
	result := DedupeAndCategorize(raw)
	require.Len(t, result.Parent, 1)
	assert.Equal(t, 12.5, result.Parent[0].Value)
	assert.Equal(t, models.TypeNumber, result.Parent[0].Type)
}
