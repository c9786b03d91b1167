package selection

import (
	"sort"

	"bim-schedules/internal/schedules/models"
)

// ============================================================
// Selection & Ordering Engine
// ============================================================

// Reconcile сводит свежий available-набор с ранее сохраненным выбором.
// Совпавшие по id записи сохраняют visible/order пользователя, новые
// добавляются в конец (после максимального существующего order),
// исчезнувшие из available выбрасываются. Итоговые order переупакованы
// плотно с нуля. Функция идемпотентна: повторный вызов с теми же
// входами дает байт-идентичный результат.
func Reconcile(available []models.AvailableParameter, existing []models.SelectedParameter) []models.SelectedParameter {
	// Детерминированный дефолтный порядок: (group, name), с учетом
	// регистра.
	sorted := append([]models.AvailableParameter(nil), available...)
	sort.SliceStable(sorted, func(i, j int) bool {
		gi, gj := sorted[i].DisplayGroup(), sorted[j].DisplayGroup()
		if gi != gj {
			return gi < gj
		}
		return sorted[i].Name < sorted[j].Name
	})

	existingByID := make(map[string]models.SelectedParameter, len(existing))
	maxOrder := -1
	for _, s := range existing {
		existingByID[s.ID] = s
		if s.Order > maxOrder {
			maxOrder = s.Order
		}
	}

	result := make([]models.SelectedParameter, 0, len(sorted))
	appended := 0
	for _, avail := range sorted {
		if prev, ok := existingByID[avail.ID]; ok {
			s := avail.ToSelected(prev.Order)
			s.Visible = prev.Visible
			result = append(result, s)
			continue
		}
		// Новые параметры дописываются после существующих, а не
		// вклиниваются.
		result = append(result, avail.ToSelected(maxOrder+1+appended))
		appended++
	}

	// Переупаковка в плотный 0..n-1 со стабильным относительным
	// порядком.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})
	for i := range result {
		result[i].Order = i
	}
	return result
}
