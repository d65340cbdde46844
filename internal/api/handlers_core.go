package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "EndoCare API live"})
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	timestamp := handler.now().UTC().Format(time.RFC3339)
	if err := handler.records.Ping(ctx); err != nil {
		handler.logger.WithError(err).Error("health check failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":    "unhealthy",
			"database":  "disconnected",
			"backend":   handler.records.BackendName(),
			"error":     err.Error(),
			"timestamp": timestamp,
		})
	}

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"database":  "connected",
		"backend":   handler.records.BackendName(),
		"timestamp": timestamp,
	})
}
