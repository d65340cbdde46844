package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func (handler *Handler) AccessLog(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fiberErr *fiber.Error
	if err != nil {
		status = fiber.StatusInternalServerError
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}
	}

	entry := handler.logger.WithFields(logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     status,
		"latency_ms": time.Since(started).Milliseconds(),
		"request_id": currentRequestID(c),
	})
	if ownerID := currentOwner(c); ownerID != 0 {
		entry = entry.WithField("owner_id", ownerID)
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		entry.Error("request")
	case status >= fiber.StatusBadRequest:
		entry.Warn("request")
	default:
		entry.Info("request")
	}
	return err
}
