package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"bim-schedules/internal/schedules/models"
)

// ============================================================
// Viewer Client
// ============================================================

// Source — контракт viewer-коллаборатора: сигнал готовности сцены и
// снапшот элементов. Извлечение не запускается до готовности.
type Source interface {
	WaitReady(ctx context.Context) error
	Elements(ctx context.Context) ([]models.ElementData, error)
}

const (
	defaultReadyTimeout = 10 * time.Second
	defaultPollInterval = 200 * time.Millisecond
)

type Client struct {
	baseURL      string
	httpClient   *http.Client
	readyTimeout time.Duration
	pollInterval time.Duration
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		readyTimeout: defaultReadyTimeout,
		pollInterval: defaultPollInterval,
	}
}

// WaitReady опрашивает viewer до готовности сцены. По таймауту операция
// фейлится насовсем (recoverable — caller может явно ретраить), а не
// висит.
func (c *Client) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.readyTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		ready, err := c.checkReady(ctx)
		if err != nil {
			log.Printf("[VIEWER] readiness check: %v", err)
		}
		if ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return &models.InitializationError{
				Reason:      "scene readiness timeout",
				Recoverable: true,
				Err:         ctx.Err(),
			}
		case <-ticker.C:
		}
	}
}

func (c *Client) checkReady(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ready", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var payload struct {
		Ready bool `json:"ready"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, err
	}
	return payload.Ready, nil
}

// Elements забирает свежий снапшот элементов. Каждый discovery-проход
// работает со своим снапшотом, данные между проходами не шарятся.
func (c *Client) Elements(ctx context.Context) ([]models.ElementData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/elements", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch elements: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("viewer returned status %d", resp.StatusCode)
	}

	var elements []models.ElementData
	if err := json.NewDecoder(resp.Body).Decode(&elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	return elements, nil
}
