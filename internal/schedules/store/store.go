package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bim-schedules/internal/schedules/columns"
	"bim-schedules/internal/schedules/dedup"
	"bim-schedules/internal/schedules/extractor"
	"bim-schedules/internal/schedules/models"
	"bim-schedules/internal/schedules/selection"
	"bim-schedules/internal/schedules/settings"
	"bim-schedules/internal/schedules/viewer"
)

// ============================================================
// Schedule Store
// ============================================================

// Phase — состояние discovery-пайплайна. UI наблюдает терминальные
// ready/error; промежуточные фазы — для диагностики.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseExtracting    Phase = "extracting"
	PhaseDeduplicating Phase = "deduplicating"
	PhaseBuilding      Phase = "building"
	PhaseReconciling   Phase = "reconciling"
	PhaseMerging       Phase = "merging"
	PhaseReady         Phase = "ready"
	PhaseError         Phase = "error"
)

type Scope string

const (
	ScopeParent Scope = "parent"
	ScopeChild  Scope = "child"
)

const defaultRetryBackoff = 1000 * time.Millisecond

type Options struct {
	ProjectID    string
	RetryBackoff time.Duration
	BaseColumns  []models.TableColumn
}

// Store — явно конструируемое наблюдаемое состояние schedules-фичи.
// Никаких глобальных синглтонов: владелец создает и передает по ссылке.
type Store struct {
	mu sync.RWMutex

	viewer   viewer.Source
	settings settings.Store

	projectID    string
	retryBackoff time.Duration
	base         []models.TableColumn

	phase       Phase
	lastErr     error
	initialized bool
	loading     bool

	filters    models.CategoryFilters
	userParams []models.AvailableParameter

	availableParent []models.AvailableParameter
	availableChild  []models.AvailableParameter
	selectedParent  []models.SelectedParameter
	selectedChild   []models.SelectedParameter
	parentColumns   []models.TableColumn
	childColumns    []models.TableColumn

	namedTables    map[string]models.NamedTableConfig
	currentTableID string

	cancelDiscovery context.CancelFunc
	subscribers     []func()
}

func New(src viewer.Source, cfg settings.Store, opts Options) *Store {
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	base := opts.BaseColumns
	if base == nil {
		base = columns.DefaultBase()
	}
	return &Store{
		viewer:        src,
		settings:      cfg,
		projectID:     opts.ProjectID,
		retryBackoff:  backoff,
		base:          base,
		phase:         PhaseIdle,
		parentColumns: append([]models.TableColumn(nil), base...),
		childColumns:  append([]models.TableColumn(nil), base...),
		namedTables:   map[string]models.NamedTableConfig{},
	}
}

// ============================================================
// Lifecycle
// ============================================================

// Initialize ждет готовности сцены, грузит сохраненные настройки и
// запускает первый discovery-проход.
func (s *Store) Initialize(ctx context.Context) error {
	if s.projectID == "" {
		// Без project id ретраить бессмысленно — поднимаем сразу.
		err := &models.InitializationError{Reason: "missing project id", Recoverable: false}
		s.fail(err)
		return err
	}

	if err := s.viewer.WaitReady(ctx); err != nil {
		s.fail(err)
		return err
	}

	tables, err := s.settings.LoadSettings(ctx)
	if err != nil {
		ie := &models.InitializationError{Reason: "load settings", Recoverable: true, Err: err}
		s.fail(ie)
		return ie
	}

	s.mu.Lock()
	if tables != nil {
		s.namedTables = tables
	}
	s.initialized = true
	s.mu.Unlock()
	s.notify()

	log.Printf("[STORE] initialized project=%s tables=%d", s.projectID, len(tables))
	return s.DiscoverParameters(ctx)
}

// Retry — явный повтор после сбоя, с фиксированным backoff. Не
// автоматический: вызывается caller-ом и только для recoverable ошибок.
func (s *Store) Retry(ctx context.Context) error {
	s.mu.RLock()
	lastErr := s.lastErr
	initialized := s.initialized
	s.mu.RUnlock()

	var ie *models.InitializationError
	if errors.As(lastErr, &ie) && !ie.Recoverable {
		return lastErr
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.retryBackoff):
	}

	if !initialized {
		return s.Initialize(ctx)
	}
	return s.DiscoverParameters(ctx)
}

// Reset возвращает стор к idle-состоянию, отменяя активный discovery.
func (s *Store) Reset() {
	s.mu.Lock()
	if s.cancelDiscovery != nil {
		s.cancelDiscovery()
		s.cancelDiscovery = nil
	}
	s.phase = PhaseIdle
	s.lastErr = nil
	s.initialized = false
	s.loading = false
	s.availableParent = nil
	s.availableChild = nil
	s.selectedParent = nil
	s.selectedChild = nil
	s.parentColumns = append([]models.TableColumn(nil), s.base...)
	s.childColumns = append([]models.TableColumn(nil), s.base...)
	s.currentTableID = ""
	s.mu.Unlock()
	s.notify()
}

// ============================================================
// Discovery pipeline
// ============================================================

// DiscoverParameters прогоняет полный цикл
// extract -> dedupe -> build -> reconcile -> merge на свежем снапшоте
// элементов. Новый вызов явно отменяет незавершенный предыдущий, чтобы
// медленный устаревший проход не затер более свежий результат.
// Наблюдаемое состояние коммитится атомарно и только на ready.
func (s *Store) DiscoverParameters(ctx context.Context) error {
	s.mu.Lock()
	if s.cancelDiscovery != nil {
		s.cancelDiscovery()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelDiscovery = cancel
	s.loading = true

	// Снапшот под merge: engine не должен видеть живую мутирующую
	// ссылку.
	existingParent := append([]models.SelectedParameter(nil), s.selectedParent...)
	existingChild := append([]models.SelectedParameter(nil), s.selectedChild...)
	userParams := append([]models.AvailableParameter(nil), s.userParams...)
	filters := s.filters
	s.mu.Unlock()

	err := s.runDiscovery(runCtx, existingParent, existingChild, userParams, filters)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		log.Printf("[STORE] discovery superseded")
		return err
	}
	s.fail(err)
	return err
}

func (s *Store) runDiscovery(ctx context.Context, existingParent, existingChild []models.SelectedParameter, userParams []models.AvailableParameter, filters models.CategoryFilters) error {
	s.setPhase(PhaseExtracting)
	elements, err := s.viewer.Elements(ctx)
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}
	elements = columns.FilterElements(elements, filters)
	raw := extractor.Extract(elements)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.setPhase(PhaseDeduplicating)
	result := dedup.DedupeAndCategorize(raw)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.setPhase(PhaseBuilding)
	availableParent := append(result.Parent, userParams...)
	availableChild := append(result.Child, userParams...)

	s.setPhase(PhaseReconciling)
	selectedParent := selection.Reconcile(availableParent, existingParent)
	selectedChild := selection.Reconcile(availableChild, existingChild)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.setPhase(PhaseMerging)
	parentColumns := columns.Merge(s.base, selectedParent)
	childColumns := columns.Merge(s.base, selectedChild)

	s.mu.Lock()
	// Проверка отмены под тем же локом, что и коммит: перегнанный более
	// свежим вызовом проход не должен затереть его результат.
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.availableParent = availableParent
	s.availableChild = availableChild
	s.selectedParent = selectedParent
	s.selectedChild = selectedChild
	s.parentColumns = parentColumns
	s.childColumns = childColumns
	s.phase = PhaseReady
	s.lastErr = nil
	s.loading = false
	s.mu.Unlock()
	s.notify()

	log.Printf("[STORE] discovery ready: parent=%d child=%d", len(selectedParent), len(selectedChild))
	return nil
}

func (s *Store) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.phase = PhaseError
	s.lastErr = err
	s.loading = false
	s.mu.Unlock()
	s.notify()
	log.Printf("[STORE] pipeline error: %v", err)
}

// ============================================================
// Observers & getters
// ============================================================

// Subscribe регистрирует callback, вызываемый после каждого коммита
// состояния.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := append([]func(){}, s.subscribers...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Columns(scope Scope) []models.TableColumn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if scope == ScopeChild {
		return append([]models.TableColumn(nil), s.childColumns...)
	}
	return append([]models.TableColumn(nil), s.parentColumns...)
}

func (s *Store) AvailableParameters(scope Scope) []models.AvailableParameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if scope == ScopeChild {
		return append([]models.AvailableParameter(nil), s.availableChild...)
	}
	return append([]models.AvailableParameter(nil), s.availableParent...)
}

func (s *Store) SelectedParameters(scope Scope) []models.SelectedParameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if scope == ScopeChild {
		return append([]models.SelectedParameter(nil), s.selectedChild...)
	}
	return append([]models.SelectedParameter(nil), s.selectedParent...)
}

func (s *Store) CategoryFilters() models.CategoryFilters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CategoryFilters{
		SelectedParentCategories: append([]string(nil), s.filters.SelectedParentCategories...),
		SelectedChildCategories:  append([]string(nil), s.filters.SelectedChildCategories...),
	}
}

func (s *Store) NamedTables() map[string]models.NamedTableConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.NamedTableConfig, len(s.namedTables))
	for id, cfg := range s.namedTables {
		out[id] = cfg
	}
	return out
}

func (s *Store) CurrentTableID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTableID
}
