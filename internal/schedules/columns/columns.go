package columns

import (
	"bim-schedules/internal/schedules/models"
)

// ============================================================
// Column Merge Engine
// ============================================================

// DefaultBase — фиксированные identity-колонки: Mark (ключ строки) и
// Category, обе неудаляемые и всегда первые. Набор — конфигурационная
// константа, не вычисляется.
func DefaultBase() []models.TableColumn {
	return []models.TableColumn{
		fixedColumn("mark", "Mark", 0),
		fixedColumn("category", "Category", 1),
	}
}

func fixedColumn(field, header string, order int) models.TableColumn {
	return models.TableColumn{
		SelectedParameter: models.SelectedParameter{
			ID:      field,
			Name:    header,
			Kind:    models.KindBIM,
			Type:    models.TypeString,
			Group:   models.DefaultGroup,
			Visible: true,
			Order:   order,
		},
		Field:      field,
		Header:     header,
		Sortable:   true,
		Filterable: true,
		Removable:  false,
		IsFixed:    true,
	}
}

// Merge объединяет фиксированные колонки с выбранными параметрами.
// Итоговый порядок — конкатенация [base, projected], НЕ сортировка по
// order: иначе fixed-колонки уплывали бы после reorder параметров.
// При коллизии field побеждает base-колонка.
func Merge(base []models.TableColumn, selected []models.SelectedParameter) []models.TableColumn {
	result := append([]models.TableColumn(nil), base...)

	taken := make(map[string]bool, len(base)+len(selected))
	for _, col := range base {
		taken[col.Field] = true
	}

	appended := 0
	for _, param := range selected {
		if taken[param.ID] {
			continue
		}
		taken[param.ID] = true
		result = append(result, Project(param, len(base)+appended))
		appended++
	}
	return result
}

// Project превращает выбранный параметр в обычную (удаляемую) колонку.
func Project(param models.SelectedParameter, order int) models.TableColumn {
	p := param
	p.Order = order
	return models.TableColumn{
		SelectedParameter: p,
		Field:             param.ID,
		Header:            param.Name,
		Sortable:          true,
		Filterable:        true,
		Removable:         true,
		IsFixed:           false,
	}
}

// ============================================================
// Category filter
// ============================================================

// FilterElements применяет фильтры категорий до извлечения. Пустой
// список для scope отключает фильтрацию этого scope ("показать все").
// Элемент без категории всегда проходит parent-фильтр.
func FilterElements(elements []models.ElementData, filters models.CategoryFilters) []models.ElementData {
	if len(filters.SelectedParentCategories) == 0 && len(filters.SelectedChildCategories) == 0 {
		return elements
	}

	out := make([]models.ElementData, 0, len(elements))
	for _, el := range elements {
		category := el.Category
		if category == "" {
			category = models.UncategorizedCategory
		}

		if el.IsChild {
			if len(filters.SelectedChildCategories) == 0 || containsString(filters.SelectedChildCategories, category) {
				out = append(out, el)
			}
			continue
		}

		if len(filters.SelectedParentCategories) == 0 ||
			category == models.UncategorizedCategory ||
			containsString(filters.SelectedParentCategories, category) {
			out = append(out, el)
		}
	}
	return out
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
