package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/endocare/internal/services"
)

func (handler *Handler) PredictFlare(c *fiber.Ctx) error {
	fields, err := parseFields(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	request, err := services.ParseFlareRequest(fields)
	if err != nil {
		if validationErr, ok := services.AsValidationError(err); ok {
			return validationError(c, validationErr)
		}
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := handler.flares.PredictFlare(c.UserContext(), currentOwner(c), request)
	if err != nil {
		if validationErr, ok := services.AsValidationError(err); ok {
			return validationError(c, validationErr)
		}
		handler.logger.WithError(err).Error("flare prediction failed")
		return apiError(c, fiber.StatusInternalServerError, "prediction failed")
	}

	response := fiber.Map{
		"flareProbability": result.Probability,
		"recorded":         result.Recorded,
	}
	if result.Prediction != nil {
		response["predictionId"] = result.Prediction.ID
	}
	return c.JSON(response)
}
