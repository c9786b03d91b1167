package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"bim-schedules/internal/common/config"
	"bim-schedules/internal/common/middleware"
	"bim-schedules/internal/gateway/handlers"
	"bim-schedules/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "API Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.CORS())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe)
	app.Get("/health/startup", handlers.StartupProbe)

	// ============================================================
	// Swagger
	// ============================================================

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "API Gateway v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	// Schedules Service
	schedulesURL := getEnv("SCHEDULES_URL", "http://localhost:3001")
	api.All("/schedules/*", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/api/v1/schedules/%s?%s", schedulesURL, c.Params("*"), c.Request().URI().QueryString()))
	})

	// Settings Service
	settingsURL := getEnv("SETTINGS_URL", "http://localhost:3002")
	api.Get("/settings", proxy.ProxyTo(settingsURL+"/settings"))
	api.Post("/tables", proxy.ProxyTo(settingsURL+"/tables"))
	api.Get("/tables/:id", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/tables/%s", settingsURL, c.Params("id")))
	})
	api.Put("/tables/:id", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/tables/%s", settingsURL, c.Params("id")))
	})
	api.Delete("/tables/:id", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/tables/%s", settingsURL, c.Params("id")))
	})

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting API Gateway on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Proxying /schedules to %s, /settings to %s", schedulesURL, settingsURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
