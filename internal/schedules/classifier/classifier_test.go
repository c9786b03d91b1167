package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bim-schedules/internal/schedules/models"
)

func TestClassifyNumericCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		kind  Kind
		want  any
	}{
		{"integer string", "42", KindNumber, 42.0},
		{"float string", "42.5", KindNumber, 42.5},
		{"negative string", "-3.14", KindNumber, -3.14},
		{"plain string", "abc", KindString, "abc"},
		{"empty string", "", KindString, ""},
		{"float64", 42.5, KindNumber, 42.5},
		{"int", 7, KindNumber, 7.0},
		{"bool", true, KindBoolean, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.value)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.want, c.Value)
		})
	}
}

func TestClassifyNull(t *testing.T) {
	c := Classify(nil)
	assert.Equal(t, KindNull, c.Kind)
	assert.Nil(t, c.Value)

	assert.True(t, IsNull(nil))
	assert.False(t, IsNull(""))
	assert.False(t, IsNull(0))
}

func TestClassifyEquation(t *testing.T) {
	t.Run("struct passes through untouched", func(t *testing.T) {
		eq := &models.Equation{Expression: "a + b", References: []string{"a", "b"}}
		c := Classify(eq)
		require.Equal(t, KindEquation, c.Kind)
		assert.Same(t, eq, c.Value)
	})

	t.Run("structural map form", func(t *testing.T) {
		c := Classify(map[string]any{
			"kind":       "equation",
			"expression": "width * height",
			"references": []any{"width", "height"},
			"resultType": "number",
		})
		require.Equal(t, KindEquation, c.Kind)
		eq, ok := c.Value.(*models.Equation)
		require.True(t, ok)
		assert.Equal(t, "width * height", eq.Expression)
		assert.Equal(t, []string{"width", "height"}, eq.References)
		assert.Equal(t, models.TypeNumber, eq.ResultType)
	})

	t.Run("map without kind is not an equation", func(t *testing.T) {
		c := Classify(map[string]any{"expression": "a + b"})
		assert.NotEqual(t, KindEquation, c.Kind)
	})
}

func TestClassifyStructuredValues(t *testing.T) {
	t.Run("top-level map serialized to string", func(t *testing.T) {
		c := Classify(map[string]any{"a": 1.0})
		require.Equal(t, KindString, c.Kind)
		assert.JSONEq(t, `{"a":1}`, c.Value.(string))
	})

	t.Run("top-level slice serialized to string", func(t *testing.T) {
		c := Classify([]any{1.0, 2.0})
		require.Equal(t, KindString, c.Kind)
		assert.JSONEq(t, `[1,2]`, c.Value.(string))
	})

	t.Run("nested map stays structural", func(t *testing.T) {
		v := map[string]any{"a": 1.0}
		c := ClassifyNested(v)
		assert.Equal(t, KindObject, c.Kind)
		assert.Equal(t, v, c.Value)
	})

	t.Run("nested slice stays structural", func(t *testing.T) {
		c := ClassifyNested([]any{"x"})
		assert.Equal(t, KindArray, c.Kind)
	})
}
