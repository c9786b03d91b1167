package dedup

import (
	"strings"

	"bim-schedules/internal/schedules/classifier"
	"bim-schedules/internal/schedules/models"
)

// ============================================================
// Parameter Deduplicator & Categorizer
// ============================================================

// Result — дедуплицированные параметры, разнесенные по scope.
type Result struct {
	Parent []models.AvailableParameter
	Child  []models.AvailableParameter
}

// DedupeAndCategorize схлопывает дубликаты имен (без учета регистра)
// внутри каждого scope независимо: параметр, найденный и как parent, и
// как child, не мержится между scope.
func DedupeAndCategorize(raw []models.RawParameter) Result {
	var parentRaw, childRaw []models.RawParameter
	for _, p := range raw {
		if p.Metadata.IsParent {
			parentRaw = append(parentRaw, p)
		} else {
			childRaw = append(childRaw, p)
		}
	}

	return Result{
		Parent: buildScope(parentRaw),
		Child:  buildScope(childRaw),
	}
}

func buildScope(raw []models.RawParameter) []models.AvailableParameter {
	// Происхождение считается до дедупликации: вложенному параметру
	// нужен вердикт контейнера, даже если контейнер потом схлопнется.
	origins := inferOrigins(raw)

	deduped := dedupe(raw)

	out := make([]models.AvailableParameter, 0, len(deduped))
	for _, p := range deduped {
		var c classifier.Classified
		if p.Metadata.IsNested {
			// Значения из распакованных контейнеров остаются
			// структурными (object/array), не сериализуются в строку.
			c = classifier.ClassifyNested(p.Value)
		} else {
			c = classifier.Classify(p.Value)
		}
		p.Value = c.Value // коэрцированное значение ("42" -> 42)
		out = append(out, models.FromRaw(p, origins[p.ID], InferType(p, c)))
	}
	return out
}

// dedupe — first-wins, но с асимметрией: запись с null-значением
// замещается более поздней не-null записью того же имени. Так элементы,
// обработанные позже, "дозаполняют" пустой параметр. Правило менять
// нельзя.
func dedupe(raw []models.RawParameter) []models.RawParameter {
	kept := make([]models.RawParameter, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, p := range raw {
		key := strings.ToLower(p.Name)
		at, seen := index[key]
		if !seen {
			index[key] = len(kept)
			kept = append(kept, p)
			continue
		}
		if classifier.IsNull(kept[at].Value) && !classifier.IsNull(p.Value) {
			kept[at] = p
		}
	}
	return kept
}

// InferType — вывод типа по id/имени/группе, затем по виду значения.
func InferType(p models.RawParameter, c classifier.Classified) models.ParameterType {
	name := p.Name
	id := p.ID
	if containsAny(id, name, "Id", "GlobalId") {
		return models.TypeString
	}
	if containsAny(id, name, "Type", "Category") {
		return models.TypeString
	}
	if p.Group.FetchedGroup == "Identity Data" {
		return models.TypeString
	}

	switch c.Kind {
	case classifier.KindEquation:
		if eq, ok := c.Value.(*models.Equation); ok && eq.ResultType != "" {
			return eq.ResultType
		}
		return models.TypeEquation
	case classifier.KindNumber:
		return models.TypeNumber
	case classifier.KindBoolean:
		return models.TypeBoolean
	case classifier.KindObject:
		return models.TypeObject
	case classifier.KindArray:
		return models.TypeArray
	}
	return models.TypeString
}

func containsAny(id, name string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(id, n) || strings.Contains(name, n) {
			return true
		}
	}
	return false
}
