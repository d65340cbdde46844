package api

import "github.com/gofiber/fiber/v2"

const (
	contextOwnerKey     = "owner_id"
	contextRequestIDKey = "request_id"
	requestIDHeader     = "X-Request-ID"
)

func currentOwner(c *fiber.Ctx) uint {
	ownerID, _ := c.Locals(contextOwnerKey).(uint)
	return ownerID
}

func currentRequestID(c *fiber.Ctx) string {
	requestID, _ := c.Locals(contextRequestIDKey).(string)
	return requestID
}
