package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"bim-schedules/internal/schedules/models"
)

// ============================================================
// Settings Client
// ============================================================

// Store — контракт persistence-коллаборатора: непрозрачный async
// key-value стор именованных конфигураций.
type Store interface {
	LoadSettings(ctx context.Context) (map[string]models.NamedTableConfig, error)
	GetNamedTable(ctx context.Context, id string) (models.NamedTableConfig, error)
	CreateNamedTable(ctx context.Context, cfg models.NamedTableConfig) (models.NamedTableConfig, error)
	UpdateNamedTable(ctx context.Context, id string, cfg models.NamedTableConfig) (models.NamedTableConfig, error)
	DeleteNamedTable(ctx context.Context, id string) error
}

const configCacheSize = 64

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *lru.Cache[string, models.NamedTableConfig]
}

func NewClient(baseURL string) (*Client, error) {
	cache, err := lru.New[string, models.NamedTableConfig](configCacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
	}, nil
}

func (c *Client) LoadSettings(ctx context.Context) (map[string]models.NamedTableConfig, error) {
	var payload struct {
		NamedTables map[string]models.NamedTableConfig `json:"namedTables"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/settings", nil, &payload); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	for id, cfg := range payload.NamedTables {
		if cfg.ID == "" {
			cfg.ID = id
			payload.NamedTables[id] = cfg
		}
		c.cache.Add(id, cfg)
	}
	return payload.NamedTables, nil
}

func (c *Client) GetNamedTable(ctx context.Context, id string) (models.NamedTableConfig, error) {
	if cfg, ok := c.cache.Get(id); ok {
		return cfg, nil
	}

	var payload struct {
		ID     string                  `json:"id"`
		Config models.NamedTableConfig `json:"config"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/tables/"+id, nil, &payload); err != nil {
		return models.NamedTableConfig{}, fmt.Errorf("get table %s: %w", id, err)
	}
	if payload.Config.ID == "" {
		payload.Config.ID = payload.ID
	}
	c.cache.Add(id, payload.Config)
	return payload.Config, nil
}

func (c *Client) CreateNamedTable(ctx context.Context, cfg models.NamedTableConfig) (models.NamedTableConfig, error) {
	body := map[string]any{
		"name":        cfg.Name,
		"displayName": cfg.DisplayName,
		"config":      cfg,
	}

	var payload struct {
		ID     string                  `json:"id"`
		Config models.NamedTableConfig `json:"config"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/tables", body, &payload); err != nil {
		return models.NamedTableConfig{}, fmt.Errorf("create table %q: %w", cfg.Name, err)
	}
	if payload.Config.ID == "" {
		payload.Config.ID = payload.ID
	}
	c.cache.Add(payload.Config.ID, payload.Config)
	return payload.Config, nil
}

func (c *Client) UpdateNamedTable(ctx context.Context, id string, cfg models.NamedTableConfig) (models.NamedTableConfig, error) {
	body := map[string]any{
		"name":        cfg.Name,
		"displayName": cfg.DisplayName,
		"config":      cfg,
	}

	var payload struct {
		Config models.NamedTableConfig `json:"config"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/tables/"+id, body, &payload); err != nil {
		return models.NamedTableConfig{}, fmt.Errorf("update table %s: %w", id, err)
	}
	if payload.Config.ID == "" {
		payload.Config.ID = id
	}
	c.cache.Add(id, payload.Config)
	return payload.Config, nil
}

func (c *Client) DeleteNamedTable(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/tables/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete table %s: %w", id, err)
	}
	c.cache.Remove(id)
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		log.Printf("[SETTINGS] %s %s -> %d: %s", method, path, resp.StatusCode, data)
		return fmt.Errorf("settings service status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
