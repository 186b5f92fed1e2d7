package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"productapi/internal/apperrors"
)

// ErrorHandler is the terminal stage of the pipeline: any error returned
// out of a handler lands here. The status comes from the error value's
// kind lookup; unrecognized errors default to 500. Internal detail is
// logged server-side and never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var appErr *apperrors.Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		status = appErr.StatusCode()
		message = appErr.Message
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	}

	if status >= fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		message = "Internal Server Error"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
