package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// ValidateProduct is a Fiber middleware applied to product create/update
// bodies. Rules run in order and the first failure wins; a rejected
// request never reaches the handler or the store.
//
// The body is decoded into a generic map rather than a struct because the
// rules are type-sensitive: a numeric "name" or a string "price" must be
// rejected, which struct binding cannot distinguish from an absent field.
func ValidateProduct() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]interface{}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if name, ok := body["name"].(string); !ok || name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Product name is required and must be a string.",
			})
		}

		if price, ok := body["price"].(float64); !ok || price <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Price must be a positive number.",
			})
		}

		if category, ok := body["category"].(string); !ok || category == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Category is required and must be a string.",
			})
		}

		return c.Next()
	}
}
