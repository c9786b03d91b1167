package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"bim-schedules/internal/settings/models"
	"bim-schedules/internal/settings/repository"
)

// ============================================================
// Tables Handler
// ============================================================

type TableHandler struct {
	repo *repository.Repository
}

func NewTableHandler(repo *repository.Repository) *TableHandler {
	return &TableHandler{repo: repo}
}

type tableRequest struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Config      json.RawMessage `json:"config"`
}

// Settings отдает все сохраненные конфигурации одной мапой id -> config.
func (h *TableHandler) Settings(c fiber.Ctx) error {
	tables, err := h.repo.List(c.Context())
	if err != nil {
		log.Printf("[SETTINGS] list failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load settings"})
	}

	named := make(map[string]json.RawMessage, len(tables))
	for _, t := range tables {
		named[t.ID] = t.Config
	}
	return c.JSON(fiber.Map{"namedTables": named})
}

// CreateTable сохраняет новую конфигурацию. Сервер владеет идентификатором:
// сгенерированный id прописывается внутрь непрозрачного config до записи,
// чтобы клиент получил конфигурацию уже со своим id.
func (h *TableHandler) CreateTable(c fiber.Ctx) error {
	var req tableRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.Name == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "name required"})
	}
	if len(req.Config) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "config required"})
	}

	id := uuid.NewString()
	config, err := patchConfigID(req.Config, id)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "config must be a json object"})
	}

	table := &models.NamedTable{
		ID:          id,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Config:      config,
	}
	if table.DisplayName == "" {
		table.DisplayName = table.Name
	}

	if err := h.repo.Create(c.Context(), table); err != nil {
		log.Printf("[SETTINGS] create failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create table"})
	}

	log.Printf("[SETTINGS] table created: %s (%s)", table.Name, table.ID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":     table.ID,
		"config": table.Config,
	})
}

func (h *TableHandler) GetTable(c fiber.Ctx) error {
	table, err := h.repo.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "table not found"})
		}
		log.Printf("[SETTINGS] get failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load table"})
	}
	return c.JSON(fiber.Map{
		"id":     table.ID,
		"config": table.Config,
	})
}

func (h *TableHandler) UpdateTable(c fiber.Ctx) error {
	var req tableRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if len(req.Config) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "config required"})
	}

	id := c.Params("id")
	config, err := patchConfigID(req.Config, id)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "config must be a json object"})
	}

	table := &models.NamedTable{
		ID:          id,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Config:      config,
	}
	if table.DisplayName == "" {
		table.DisplayName = table.Name
	}

	if err := h.repo.Update(c.Context(), table); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "table not found"})
		}
		log.Printf("[SETTINGS] update failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update table"})
	}
	return c.JSON(fiber.Map{
		"id":     table.ID,
		"config": table.Config,
	})
}

func (h *TableHandler) DeleteTable(c fiber.Ctx) error {
	if err := h.repo.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "table not found"})
		}
		log.Printf("[SETTINGS] delete failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete table"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// patchConfigID прописывает id внутрь непрозрачного config-объекта, не
// трогая остальные поля.
func patchConfigID(raw json.RawMessage, id string) (json.RawMessage, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	obj["id"] = id
	return json.Marshal(obj)
}
