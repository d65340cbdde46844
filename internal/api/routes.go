package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/endocare/internal/models"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/", handler.Root)
	app.Get("/health", handler.Health)
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	for _, kind := range models.LogKinds() {
		app.Post("/insert_"+string(kind), handler.ResolveOwner, handler.InsertRecord(kind))
		app.Get("/get_all_"+string(kind), handler.ResolveOwner, handler.ListRecords(kind))
	}
	app.Get("/get_all_predictions", handler.ResolveOwner, handler.ListRecords(models.KindPrediction))
	app.Post("/predict-flare", handler.ResolveOwner, handler.PredictFlare)

	app.Use(handler.NotFound)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
