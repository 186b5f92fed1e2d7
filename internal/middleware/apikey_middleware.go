package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// APIKeyAuth is a Fiber middleware that gates every route behind a shared
// secret supplied in the x-api-key header. The comparison is an exact
// string match; no normalization is applied.
func APIKeyAuth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("x-api-key")
		if key == "" || key != apiKey {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Forbidden: Invalid API Key",
			})
		}

		return c.Next()
	}
}
