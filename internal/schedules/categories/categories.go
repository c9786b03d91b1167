package categories

import (
	"regexp"
	"strings"
)

// ============================================================
// Static category & group tables
// ============================================================

// parentCategories — категории, чьи элементы попадают в parent-таблицу.
// Остальные (обычно hosted-элементы) идут в child.
var parentCategories = map[string]bool{
	"Walls":         true,
	"Floors":        true,
	"Roofs":         true,
	"Ceilings":      true,
	"Columns":       true,
	"Stairs":        true,
	"Ramps":         true,
	"Curtain Walls": true,
	"Pads":          true,
	"Uncategorized": true,
}

// bimGroups — известные структурные/identity группы. Имена групп
// попадают в сохраненные таблицы, список менять с осторожностью.
var bimGroups = map[string]bool{
	"Identity Data":          true,
	"Dimensions":             true,
	"Constraints":            true,
	"Parameters":             true,
	"Phasing":                true,
	"Construction":           true,
	"Graphics":               true,
	"Structural":             true,
	"Materials and Finishes": true,
	"General":                true,
	"Other":                  true,
}

// bimIDSuffix ловит идентификаторы вида "*.Type", "*.Family" и т.п.
var bimIDSuffix = regexp.MustCompile(`\.(Type|Category|Family|Material)$`)

// IsParentCategory проверяет принадлежность категории parent-scope.
func IsParentCategory(category string) bool {
	return parentCategories[category]
}

// IsBimGroup проверяет группу по allow-list структурных групп.
func IsBimGroup(group string) bool {
	return bimGroups[group]
}

// MatchesBimID проверяет id по известным BIM-паттернам.
func MatchesBimID(id string) bool {
	if bimIDSuffix.MatchString(id) {
		return true
	}
	upper := strings.ToUpper(id)
	return strings.HasPrefix(upper, "IFC")
}

// HasPsetPrefix — зарезервированный property-set префикс.
func HasPsetPrefix(s string) bool {
	return strings.HasPrefix(s, "Pset_")
}
