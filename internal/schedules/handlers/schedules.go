package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"bim-schedules/internal/schedules/models"
	"bim-schedules/internal/schedules/store"
)

// ============================================================
// Schedules Handler
// ============================================================

type ScheduleHandler struct {
	store *store.Store
}

func NewScheduleHandler(st *store.Store) *ScheduleHandler {
	return &ScheduleHandler{store: st}
}

// RegisterRoutes вешает все schedule-маршруты на роутер.
func (h *ScheduleHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1/schedules")

	api.Get("/state", h.State)
	api.Post("/discover", h.Discover)
	api.Post("/retry", h.Retry)

	api.Get("/columns/:scope", h.Columns)
	api.Put("/columns/:scope", h.SetColumns)
	api.Put("/columns/:scope/:field/visibility", h.SetVisibility)
	api.Put("/columns/:scope/:field/order", h.SetOrder)

	api.Get("/parameters/available/:scope", h.AvailableParameters)
	api.Get("/parameters/selected/:scope", h.SelectedParameters)
	api.Post("/parameters/user", h.AddUserParameter)

	api.Get("/categories", h.Categories)
	api.Put("/categories", h.SetCategories)

	api.Get("/tables", h.Tables)
	api.Post("/tables", h.SaveTable)
	api.Put("/tables/:id", h.UpdateTable)
	api.Post("/tables/:id/select", h.SelectTable)
	api.Delete("/tables/:id", h.DeleteTable)
}

// State отдает сводку состояния пайплайна для UI.
func (h *ScheduleHandler) State(c fiber.Ctx) error {
	var lastError string
	if err := h.store.LastError(); err != nil {
		lastError = err.Error()
	}
	return c.JSON(fiber.Map{
		"phase":          h.store.Phase(),
		"initialized":    h.store.IsInitialized(),
		"loading":        h.store.IsLoading(),
		"error":          lastError,
		"currentTableId": h.store.CurrentTableID(),
	})
}

// Discover запускает повторный discovery-проход.
func (h *ScheduleHandler) Discover(c fiber.Ctx) error {
	if err := h.store.DiscoverParameters(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"phase": h.store.Phase()})
}

// Retry повторяет упавшую инициализацию/discovery.
func (h *ScheduleHandler) Retry(c fiber.Ctx) error {
	if err := h.store.Retry(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"phase": h.store.Phase()})
}

// ============================================================
// Columns
// ============================================================

func (h *ScheduleHandler) Columns(c fiber.Ctx) error {
	scope, err := parseScope(c.Params("scope"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"columns": h.store.Columns(scope)})
}

func (h *ScheduleHandler) SetColumns(c fiber.Ctx) error {
	scope, err := parseScope(c.Params("scope"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		Columns []models.TableColumn `json:"columns"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	if err := h.store.SetCurrentColumns(scope, req.Columns); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"columns": h.store.Columns(scope)})
}

func (h *ScheduleHandler) SetVisibility(c fiber.Ctx) error {
	scope, err := parseScope(c.Params("scope"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		Visible bool `json:"visible"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	if err := h.store.SetColumnVisibility(scope, c.Params("field"), req.Visible); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"columns": h.store.Columns(scope)})
}

func (h *ScheduleHandler) SetOrder(c fiber.Ctx) error {
	scope, err := parseScope(c.Params("scope"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		Position int `json:"position"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	if err := h.store.SetColumnOrder(scope, c.Params("field"), req.Position); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"columns": h.store.Columns(scope)})
}

// ============================================================
// Parameters
// ============================================================

func (h *ScheduleHandler) AvailableParameters(c fiber.Ctx) error {
	scope, err := parseScope(c.Params("scope"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"parameters": h.store.AvailableParameters(scope)})
}

func (h *ScheduleHandler) SelectedParameters(c fiber.Ctx) error {
	scope, err := parseScope(c.Params("scope"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"parameters": h.store.SelectedParameters(scope)})
}

func (h *ScheduleHandler) AddUserParameter(c fiber.Ctx) error {
	var req struct {
		Name     string           `json:"name"`
		Group    string           `json:"group"`
		Value    any              `json:"value"`
		Equation *models.Equation `json:"equation"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	if err := h.store.AddUserParameter(c.Context(), req.Name, req.Group, req.Value, req.Equation); err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"phase": h.store.Phase()})
}

// ============================================================
// Category filters
// ============================================================

func (h *ScheduleHandler) Categories(c fiber.Ctx) error {
	return c.JSON(h.store.CategoryFilters())
}

func (h *ScheduleHandler) SetCategories(c fiber.Ctx) error {
	var req struct {
		Parent *[]string `json:"selectedParentCategories"`
		Child  *[]string `json:"selectedChildCategories"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	// nil означает "не трогать"; пустой список — снять фильтр.
	if req.Parent != nil {
		if err := h.store.SetParentCategories(c.Context(), *req.Parent); err != nil {
			return h.fail(c, err)
		}
	}
	if req.Child != nil {
		if err := h.store.SetChildCategories(c.Context(), *req.Child); err != nil {
			return h.fail(c, err)
		}
	}
	return c.JSON(h.store.CategoryFilters())
}

// ============================================================
// Named tables
// ============================================================

func (h *ScheduleHandler) Tables(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"namedTables":    h.store.NamedTables(),
		"currentTableId": h.store.CurrentTableID(),
	})
}

func (h *ScheduleHandler) SaveTable(c fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	created, err := h.store.SaveTable(c.Context(), req.Name, req.DisplayName)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(created)
}

// UpdateTable перезаписывает сохраненную таблицу текущей конфигурацией.
// id "current" адресует выбранную таблицу.
func (h *ScheduleHandler) UpdateTable(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "current" {
		id = ""
	}
	updated, err := h.store.UpdateTable(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(updated)
}

func (h *ScheduleHandler) SelectTable(c fiber.Ctx) error {
	if err := h.store.SelectTable(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"currentTableId": h.store.CurrentTableID()})
}

func (h *ScheduleHandler) DeleteTable(c fiber.Ctx) error {
	if err := h.store.DeleteTable(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// ============================================================
// Helpers
// ============================================================

func parseScope(raw string) (store.Scope, error) {
	switch store.Scope(raw) {
	case store.ScopeParent:
		return store.ScopeParent, nil
	case store.ScopeChild:
		return store.ScopeChild, nil
	default:
		return "", errors.New("scope must be parent or child")
	}
}

// fail маппит доменные ошибки на HTTP-статусы.
func (h *ScheduleHandler) fail(c fiber.Ctx, err error) error {
	var (
		colErr  *models.ColumnStateError
		valErr  *models.ValidationError
		initErr *models.InitializationError
	)
	switch {
	case errors.As(err, &colErr):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": colErr.Error()})
	case errors.As(err, &valErr):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": valErr.Error()})
	case errors.As(err, &initErr):
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error":       initErr.Error(),
			"recoverable": initErr.Recoverable,
		})
	}
	log.Printf("[SCHEDULES] request failed: %v", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
