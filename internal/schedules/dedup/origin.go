package dedup

import (
	"bim-schedules/internal/schedules/categories"
	"bim-schedules/internal/schedules/models"
)

// ============================================================
// BIM vs user origin
// ============================================================

// inferOrigins классифицирует происхождение каждого параметра. Каскад,
// первое совпадение побеждает:
//  1. Pset_-префикс -> bim
//  2. группа из allow-list структурных групп -> bim
//  3. BIM-паттерн в id (".Type", IFC* и т.п.) -> bim
//  4. вложенный параметр bim-контейнера -> bim
//  5. иначе -> user (свободная пользовательская аннотация)
//
// Первые три правила стабилизируют имена групп в сохраненных таблицах.
func inferOrigins(raw []models.RawParameter) map[string]models.ParameterKind {
	origins := make(map[string]models.ParameterKind, len(raw))

	// Сначала контейнеры и обычные параметры, чтобы вложенные могли
	// унаследовать вердикт родителя.
	for _, p := range raw {
		if p.Metadata.IsNested {
			continue
		}
		origins[p.ID] = classifyOrigin(p)
	}
	for _, p := range raw {
		if !p.Metadata.IsNested {
			continue
		}
		kind := classifyOrigin(p)
		if kind == models.KindUser && origins[p.Metadata.ParentKey] == models.KindBIM {
			kind = models.KindBIM
		}
		origins[p.ID] = kind
	}
	return origins
}

func classifyOrigin(p models.RawParameter) models.ParameterKind {
	if categories.HasPsetPrefix(p.ID) || categories.HasPsetPrefix(p.Group.FetchedGroup) {
		return models.KindBIM
	}
	if categories.IsBimGroup(p.Group.FetchedGroup) {
		return models.KindBIM
	}
	if categories.MatchesBimID(p.ID) {
		return models.KindBIM
	}
	return models.KindUser
}
