package extractor

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"

	"bim-schedules/internal/schedules/categories"
	"bim-schedules/internal/schedules/models"
)

// ============================================================
// Raw Parameter Extractor
// ============================================================

var errEmptyKey = errors.New("empty key")

// Stats — счетчики одного прохода извлечения. Диагностика, не контракт.
type Stats struct {
	Elements int
	Seen     int
	Skipped  int
	Emitted  int
	Nested   int
}

// Extract обходит элементы и извлекает все пары ключ/значение.
// Один битый параметр логируется и пропускается, остальные элементы
// и параметры не страдают.
func Extract(elements []models.ElementData) []models.RawParameter {
	raw, _ := ExtractWithStats(elements)
	return raw
}

func ExtractWithStats(elements []models.ElementData) ([]models.RawParameter, Stats) {
	var out []models.RawParameter
	stats := Stats{Elements: len(elements)}

	for _, el := range elements {
		extractElement(el, &out, &stats)
	}

	log.Printf("[EXTRACT] elements=%d seen=%d skipped=%d emitted=%d nested=%d",
		stats.Elements, stats.Seen, stats.Skipped, stats.Emitted, stats.Nested)
	return out, stats
}

func extractElement(el models.ElementData, out *[]models.RawParameter, stats *Stats) {
	category := el.Category
	if category == "" {
		category = models.UncategorizedCategory
	}
	isParent := !el.IsChild || categories.IsParentCategory(category)

	// Map-порядок в Go недетерминирован, а дедупликация зависит от
	// стабильного порядка входа — сортируем ключи.
	keys := make([]string, 0, len(el.Parameters))
	for key := range el.Parameters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		stats.Seen++
		if key == "" {
			stats.Skipped++
			log.Printf("[EXTRACT] %v", &models.ExtractionError{ElementID: el.ID, Key: key, Err: errEmptyKey})
			continue
		}
		if strings.HasPrefix(key, models.SystemPrefix) {
			// Зарезервированные ключи учитываются в статистике, но не
			// эмитятся.
			stats.Skipped++
			continue
		}

		group, name := splitKey(key)
		value := el.Parameters[key]

		meta := models.RawMetadata{
			Category:  category,
			ElementID: el.ID,
			IsParent:  isParent,
			IsSystem:  strings.HasPrefix(group, models.SystemPrefix),
		}

		nestedEntries, isContainer := tryUnpackJSON(value)
		param := models.RawParameter{
			ID:    key,
			Name:  name,
			Value: value,
			Group: models.ParameterGroup{FetchedGroup: group, CurrentGroup: group},
			Metadata: func() models.RawMetadata {
				m := meta
				m.IsJSONString = isContainer
				return m
			}(),
		}
		*out = append(*out, param)
		stats.Emitted++

		if !isContainer {
			continue
		}

		// Контейнер распакован: каждая запись становится синтетическим
		// вложенным параметром, наследующим группу и метаданные.
		nestedKeys := make([]string, 0, len(nestedEntries))
		for nk := range nestedEntries {
			nestedKeys = append(nestedKeys, nk)
		}
		sort.Strings(nestedKeys)

		for _, nk := range nestedKeys {
			nestedMeta := meta
			nestedMeta.IsNested = true
			nestedMeta.ParentKey = key

			*out = append(*out, models.RawParameter{
				ID:       key + "." + nk,
				Name:     nk,
				Value:    nestedEntries[nk],
				Group:    models.ParameterGroup{FetchedGroup: group, CurrentGroup: group},
				Metadata: nestedMeta,
			})
			stats.Emitted++
			stats.Nested++
		}
	}
}

// splitKey разбирает dotted-ключ на (group, name). Префикс "Parameters."
// всегда дает группу "Parameters" независимо от глубины вложенности;
// ключ без точки падает в DefaultGroup.
func splitKey(key string) (group, name string) {
	if strings.HasPrefix(key, models.DefaultGroup+".") {
		return models.DefaultGroup, key[len(models.DefaultGroup)+1:]
	}
	if idx := strings.Index(key, "."); idx > 0 {
		return key[:idx], key[idx+1:]
	}
	return models.DefaultGroup, key
}

// tryUnpackJSON распознает строку-JSON-объект. Массивы и невалидный
// JSON трактуются как обычный скаляр.
func tryUnpackJSON(value any) (map[string]any, bool) {
	s, ok := value.(string)
	if !ok {
		return nil, false
	}
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, false
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}
