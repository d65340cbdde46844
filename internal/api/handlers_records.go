package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/endocare/internal/models"
	"github.com/terraincognita07/endocare/internal/services"
)

func (handler *Handler) InsertRecord(kind models.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields, err := parseFields(c)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}

		ownerID := currentOwner(c)
		record, err := handler.records.Insert(c.UserContext(), ownerID, kind, fields)
		if err != nil {
			if validationErr, ok := services.AsValidationError(err); ok {
				return validationError(c, validationErr)
			}
			handler.logger.WithError(err).WithFields(logrus.Fields{
				"kind":     kind,
				"owner_id": ownerID,
			}).Error("insert failed")
			return apiError(c, fiber.StatusInternalServerError, fmt.Sprintf("failed to insert %s log", kind))
		}

		return c.Status(fiber.StatusCreated).JSON(record)
	}
}

func (handler *Handler) ListRecords(kind models.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := handler.records.ListAll(c.UserContext(), currentOwner(c), kind)
		if err != nil {
			if errors.Is(err, services.ErrStoreRead) {
				handler.logger.WithError(err).WithField("kind", kind).Error("list failed")
			}
			return apiError(c, fiber.StatusInternalServerError, fmt.Sprintf("failed to fetch %s records", kind))
		}
		return c.JSON(records)
	}
}
