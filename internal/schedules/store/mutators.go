package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bim-schedules/internal/schedules/columns"
	"bim-schedules/internal/schedules/models"
)

// ============================================================
// Column mutators
// ============================================================

// SetCurrentColumns заменяет набор колонок scope целиком. Фиксированные
// колонки обязаны присутствовать: их удаление — ошибка состояния, не
// silent fix.
func (s *Store) SetCurrentColumns(scope Scope, cols []models.TableColumn) error {
	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		if seen[col.Field] {
			return &models.ColumnStateError{Field: col.Field, Op: "set", Reason: "duplicate field"}
		}
		seen[col.Field] = true
	}
	for _, fixed := range s.base {
		if !seen[fixed.Field] {
			return &models.ColumnStateError{Field: fixed.Field, Op: "set", Reason: "fixed column cannot be removed"}
		}
	}

	selected := make([]models.SelectedParameter, 0, len(cols))
	for _, col := range cols {
		if col.IsFixed {
			continue
		}
		selected = append(selected, col.SelectedParameter)
	}
	for i := range selected {
		selected[i].Order = i
	}

	s.mu.Lock()
	s.applyScopeLocked(scope, selected)
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetColumnVisibility переключает видимость колонки, не трогая порядок.
func (s *Store) SetColumnVisibility(scope Scope, field string, visible bool) error {
	s.mu.Lock()
	selected := s.selectedLocked(scope)
	idx := indexOfParam(selected, field)
	if idx < 0 {
		s.mu.Unlock()
		return &models.ColumnStateError{Field: field, Op: "visibility", Reason: "unknown column"}
	}
	selected[idx].Visible = visible
	s.applyScopeLocked(scope, selected)
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetColumnOrder переносит колонку на новую позицию среди нефиксированных.
// Позиция задается в терминах полного списка колонок; фиксированный
// префикс неподвижен.
func (s *Store) SetColumnOrder(scope Scope, field string, position int) error {
	s.mu.Lock()
	selected := s.selectedLocked(scope)
	idx := indexOfParam(selected, field)
	if idx < 0 {
		s.mu.Unlock()
		op := "order"
		for _, fixed := range s.base {
			if fixed.Field == field {
				return &models.ColumnStateError{Field: field, Op: op, Reason: "fixed column cannot be reordered"}
			}
		}
		return &models.ColumnStateError{Field: field, Op: op, Reason: "unknown column"}
	}

	target := position - len(s.base)
	if target < 0 {
		target = 0
	}
	if target >= len(selected) {
		target = len(selected) - 1
	}

	moved := selected[idx]
	selected = append(selected[:idx], selected[idx+1:]...)
	selected = append(selected[:target], append([]models.SelectedParameter{moved}, selected[target:]...)...)
	for i := range selected {
		selected[i].Order = i
	}

	s.applyScopeLocked(scope, selected)
	s.mu.Unlock()
	s.notify()
	return nil
}

// applyScopeLocked коммитит новый выбор scope и перестраивает колонки.
// Вызывается строго под s.mu.
func (s *Store) applyScopeLocked(scope Scope, selected []models.SelectedParameter) {
	merged := columns.Merge(s.base, selected)
	if scope == ScopeChild {
		s.selectedChild = selected
		s.childColumns = merged
		return
	}
	s.selectedParent = selected
	s.parentColumns = merged
}

func (s *Store) selectedLocked(scope Scope) []models.SelectedParameter {
	if scope == ScopeChild {
		return append([]models.SelectedParameter(nil), s.selectedChild...)
	}
	return append([]models.SelectedParameter(nil), s.selectedParent...)
}

func indexOfParam(list []models.SelectedParameter, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ============================================================
// Category filters
// ============================================================

// SetParentCategories задает фильтр родительских категорий и запускает
// повторный discovery на отфильтрованном наборе.
func (s *Store) SetParentCategories(ctx context.Context, cats []string) error {
	s.mu.Lock()
	s.filters.SelectedParentCategories = append([]string(nil), cats...)
	s.mu.Unlock()
	return s.DiscoverParameters(ctx)
}

func (s *Store) SetChildCategories(ctx context.Context, cats []string) error {
	s.mu.Lock()
	s.filters.SelectedChildCategories = append([]string(nil), cats...)
	s.mu.Unlock()
	return s.DiscoverParameters(ctx)
}

// ============================================================
// User parameters
// ============================================================

// AddUserParameter регистрирует пользовательский параметр (fixed-значение
// или формулу) и вливает его в available обоих scope следующим
// discovery-проходом.
func (s *Store) AddUserParameter(ctx context.Context, name, group string, value any, eq *models.Equation) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &models.ValidationError{ParameterID: "", Reason: "empty parameter name"}
	}

	s.mu.Lock()
	lower := strings.ToLower(name)
	for _, p := range s.userParams {
		if strings.ToLower(p.Name) == lower {
			s.mu.Unlock()
			return &models.ValidationError{ParameterID: p.ID, Reason: "duplicate parameter name"}
		}
	}
	param := models.NewAvailableUserParameter(uuid.NewString(), name, group, value, eq)
	s.userParams = append(s.userParams, param)
	s.mu.Unlock()

	log.Printf("[STORE] user parameter added: %s (%s)", name, param.Type)
	return s.DiscoverParameters(ctx)
}

// ============================================================
// Named tables
// ============================================================

// SaveTable сохраняет текущую конфигурацию как новую именованную таблицу
// и делает ее текущей.
func (s *Store) SaveTable(ctx context.Context, name, displayName string) (models.NamedTableConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NamedTableConfig{}, &models.ValidationError{Reason: "empty table name"}
	}
	if displayName == "" {
		displayName = name
	}

	cfg := s.snapshotConfig()
	cfg.Name = name
	cfg.DisplayName = displayName

	created, err := s.settings.CreateNamedTable(ctx, cfg)
	if err != nil {
		return models.NamedTableConfig{}, fmt.Errorf("save table %q: %w", name, err)
	}

	s.mu.Lock()
	s.namedTables[created.ID] = created
	s.currentTableID = created.ID
	s.mu.Unlock()
	s.notify()

	log.Printf("[STORE] table saved: %s (%s)", created.Name, created.ID)
	return created, nil
}

// UpdateTable перезаписывает именованную таблицу актуальной
// конфигурацией. Пустой id означает текущую таблицу.
func (s *Store) UpdateTable(ctx context.Context, id string) (models.NamedTableConfig, error) {
	s.mu.RLock()
	if id == "" {
		id = s.currentTableID
	}
	prev, ok := s.namedTables[id]
	s.mu.RUnlock()
	if id == "" || !ok {
		return models.NamedTableConfig{}, &models.ColumnStateError{Op: "update", Reason: "no table selected"}
	}

	cfg := s.snapshotConfig()
	cfg.ID = id
	cfg.Name = prev.Name
	cfg.DisplayName = prev.DisplayName

	updated, err := s.settings.UpdateNamedTable(ctx, id, cfg)
	if err != nil {
		return models.NamedTableConfig{}, fmt.Errorf("update table %s: %w", id, err)
	}

	s.mu.Lock()
	s.namedTables[id] = updated
	s.mu.Unlock()
	s.notify()
	return updated, nil
}

// SelectTable применяет сохраненную конфигурацию целиком: колонки обоих
// scope и фильтры категорий, затем пересчитывает пайплайн под новые
// фильтры.
func (s *Store) SelectTable(ctx context.Context, id string) error {
	s.mu.RLock()
	cfg, ok := s.namedTables[id]
	s.mu.RUnlock()
	if !ok {
		loaded, err := s.settings.GetNamedTable(ctx, id)
		if err != nil {
			return fmt.Errorf("select table %s: %w", id, err)
		}
		cfg = loaded
	}

	s.mu.Lock()
	s.namedTables[id] = cfg
	s.currentTableID = id
	s.filters = models.CategoryFilters{
		SelectedParentCategories: append([]string(nil), cfg.CategoryFilters.SelectedParentCategories...),
		SelectedChildCategories:  append([]string(nil), cfg.CategoryFilters.SelectedChildCategories...),
	}
	s.applyScopeLocked(ScopeParent, selectedFromColumns(cfg.ParentColumns))
	s.applyScopeLocked(ScopeChild, selectedFromColumns(cfg.ChildColumns))
	s.mu.Unlock()
	s.notify()

	log.Printf("[STORE] table selected: %s", id)
	return s.DiscoverParameters(ctx)
}

// DeleteTable удаляет именованную таблицу; если она была текущей, стор
// остается на текущих колонках, но без привязки к таблице.
func (s *Store) DeleteTable(ctx context.Context, id string) error {
	if err := s.settings.DeleteNamedTable(ctx, id); err != nil {
		return fmt.Errorf("delete table %s: %w", id, err)
	}

	s.mu.Lock()
	delete(s.namedTables, id)
	if s.currentTableID == id {
		s.currentTableID = ""
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// snapshotConfig собирает сериализуемую конфигурацию текущего состояния.
func (s *Store) snapshotConfig() models.NamedTableConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.NamedTableConfig{
		ParentColumns: append([]models.TableColumn(nil), s.parentColumns...),
		ChildColumns:  append([]models.TableColumn(nil), s.childColumns...),
		CategoryFilters: models.CategoryFilters{
			SelectedParentCategories: append([]string(nil), s.filters.SelectedParentCategories...),
			SelectedChildCategories:  append([]string(nil), s.filters.SelectedChildCategories...),
		},
		LastUpdateTimestamp: time.Now().UnixMilli(),
	}
}

func selectedFromColumns(cols []models.TableColumn) []models.SelectedParameter {
	selected := make([]models.SelectedParameter, 0, len(cols))
	for _, col := range cols {
		if col.IsFixed {
			continue
		}
		selected = append(selected, col.SelectedParameter)
	}
	for i := range selected {
		selected[i].Order = i
	}
	return selected
}
