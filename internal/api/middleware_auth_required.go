package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ResolveOwner stores the request's owner id in the context. A bearer token
// wins over the configured default owner; a bad token is always rejected.
func (handler *Handler) ResolveOwner(c *fiber.Ctx) error {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		if handler.authRequired {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		c.Locals(contextOwnerKey, handler.defaultOwnerID)
		return c.Next()
	}

	ownerID, err := handler.ownerFromAuthorization(header)
	if err != nil {
		handler.logger.WithError(err).WithField("request_id", currentRequestID(c)).Debug("rejected bearer token")
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextOwnerKey, ownerID)
	return c.Next()
}
