package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"bim-schedules/internal/schedules/models"
)

// ============================================================
// Value Classifier
// ============================================================

type Kind string

const (
	KindNull     Kind = "null"
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindEquation Kind = "equation"
	KindObject   Kind = "object"
	KindArray    Kind = "array"
)

type Classified struct {
	Kind  Kind
	Value any
}

// Classify сводит произвольное значение к закрытому набору видов.
// Числовые строки намеренно коэрцируются в number ("42" -> 42):
// от этого зависят старые сохраненные таблицы. Исключений не бросает,
// нераспознанное падает в string.
func Classify(value any) Classified {
	return classify(value, false)
}

// ClassifyNested — вариант для пути распаковки вложенного JSON:
// объекты и массивы остаются структурными, а не сериализуются в строку.
func ClassifyNested(value any) Classified {
	return classify(value, true)
}

func classify(value any, nested bool) Classified {
	if value == nil {
		return Classified{Kind: KindNull, Value: nil}
	}

	if eq, ok := asEquation(value); ok {
		return Classified{Kind: KindEquation, Value: eq}
	}

	switch v := value.(type) {
	case bool:
		return Classified{Kind: KindBoolean, Value: v}
	case float64:
		return Classified{Kind: KindNumber, Value: v}
	case float32:
		return Classified{Kind: KindNumber, Value: float64(v)}
	case int:
		return Classified{Kind: KindNumber, Value: float64(v)}
	case int64:
		return Classified{Kind: KindNumber, Value: float64(v)}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return Classified{Kind: KindNumber, Value: f}
		}
		return Classified{Kind: KindString, Value: v.String()}
	case string:
		if f, ok := numericString(v); ok {
			return Classified{Kind: KindNumber, Value: f}
		}
		return Classified{Kind: KindString, Value: v}
	case []any:
		if nested {
			return Classified{Kind: KindArray, Value: v}
		}
		return Classified{Kind: KindString, Value: stringify(v)}
	case map[string]any:
		if nested {
			return Classified{Kind: KindObject, Value: v}
		}
		return Classified{Kind: KindString, Value: stringify(v)}
	}

	// Неизвестная форма — безопасное строковое представление.
	return Classified{Kind: KindString, Value: fmt.Sprintf("%v", value)}
}

// asEquation распознает структурную форму формулы и пропускает ее
// без изменений.
func asEquation(value any) (*models.Equation, bool) {
	switch v := value.(type) {
	case *models.Equation:
		return v, v != nil
	case models.Equation:
		return &v, true
	case map[string]any:
		if v["kind"] != "equation" {
			return nil, false
		}
		expr, ok := v["expression"].(string)
		if !ok {
			return nil, false
		}
		eq := &models.Equation{Expression: expr}
		if rt, ok := v["resultType"].(string); ok {
			eq.ResultType = models.ParameterType(rt)
		}
		switch refs := v["references"].(type) {
		case []string:
			eq.References = refs
		case []any:
			for _, r := range refs {
				if s, ok := r.(string); ok {
					eq.References = append(eq.References, s)
				}
			}
		}
		return eq, true
	}
	return nil, false
}

func numericString(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func stringify(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// IsNull — null-проверка с учетом коэрции (nil либо kind null).
func IsNull(value any) bool {
	return Classify(value).Kind == KindNull
}
