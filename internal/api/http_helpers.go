package api

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/endocare/internal/services"
)

var errInvalidBody = errors.New("request body must be a JSON object")

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func validationError(c *fiber.Ctx, err *services.ValidationError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
		"field": err.Field,
	})
}

// parseFields decodes the body into a field map. An empty body is an empty
// map so the first required field is reported as missing.
func parseFields(c *fiber.Ctx) (services.Fields, error) {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return services.Fields{}, nil
	}

	fields := services.Fields{}
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, errInvalidBody
	}
	return fields, nil
}
