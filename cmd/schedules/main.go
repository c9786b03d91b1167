package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"bim-schedules/internal/common/config"
	"bim-schedules/internal/common/middleware"
	"bim-schedules/internal/schedules/handlers"
	"bim-schedules/internal/schedules/settings"
	"bim-schedules/internal/schedules/store"
	"bim-schedules/internal/schedules/viewer"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Schedules Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	viewerURL := getenv("VIEWER_URL", "http://localhost:3003")
	settingsURL := getenv("SETTINGS_URL", "http://localhost:3002")
	projectID := os.Getenv("PROJECT_ID")

	settingsClient, err := settings.NewClient(settingsURL)
	if err != nil {
		log.Fatalf("settings client: %v", err)
	}

	st := store.New(viewer.NewClient(viewerURL), settingsClient, store.Options{
		ProjectID: projectID,
	})

	// Инициализация в фоне: сервис поднимается сразу, UI наблюдает фазы
	// через /state и ретраит recoverable-ошибки.
	go func() {
		if err := st.Initialize(context.Background()); err != nil {
			log.Printf("[SCHEDULES] initialization failed: %v", err)
		}
	}()

	scheduleHandler := handlers.NewScheduleHandler(st)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Schedules Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
			"phase":  st.Phase(),
		})
	})

	// ============================================================
	// Schedule Routes
	// ============================================================

	scheduleHandler.RegisterRoutes(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Schedules Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getenv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
