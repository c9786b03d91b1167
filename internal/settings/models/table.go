package models

import "encoding/json"

// ============================================================
// Settings Models
// ============================================================

// NamedTable — сохраненная конфигурация таблицы. Config хранится как
// непрозрачный JSON: сервис настроек не знает о его структуре и не
// валидирует содержимое.
type NamedTable struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Config      json.RawMessage `json:"config"`
	UpdatedAt   int64           `json:"updatedAt"`
}
