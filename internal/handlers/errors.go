package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"taskboard/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// genericServerError is the only body a 5xx response ever carries.
const genericServerError = "Unexpected error occurred."

var validate = validator.New()

// validateRequest checks the validate tags of req and writes a 400 when they fail.
// It returns true when the response has been written.
func validateRequest(c *fiber.Ctx, req any) (bool, error) {
	err := validate.Struct(req)
	if err == nil {
		return false, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// parseID reads a positive numeric route parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s '%s'", services.ErrValidation, param, raw)
	}
	return uint(id), nil
}

// respondError maps the service error taxonomy onto an HTTP response.
// message describes the failed operation for 4xx bodies.
func respondError(c *fiber.Ctx, err error, message string) error {
	var status int
	switch {
	case errors.Is(err, services.ErrValidation):
		status, message = fiber.StatusBadRequest, "Validation failed"
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	default:
		return serverError(c, err)
	}

	slog.DebugContext(c.UserContext(), message, "status", status, "error", err)
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func serverError(c *fiber.Ctx, err error) error {
	slog.ErrorContext(c.UserContext(), "request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": genericServerError,
	})
}

// ErrorHandler is the application-wide fiber.ErrorHandler. Fiber errors keep
// their status; anything else, including recovered panics, becomes a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{
			"message": fe.Message,
		})
	}
	return serverError(c, err)
}

// gated prepends gate to handler when gate is set. Gates are attached per
// route so that they never run for other routes sharing the prefix.
func gated(gate, handler fiber.Handler) []fiber.Handler {
	if gate == nil {
		return []fiber.Handler{handler}
	}
	return []fiber.Handler{gate, handler}
}
