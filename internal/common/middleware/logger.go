package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger возвращает настроенный middleware для логирования запросов.
// Формат согласован с [TAG]-префиксами остальных логов сервисов.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[HTTP] ${time} ${status} ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
