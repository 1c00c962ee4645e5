package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// SystemHandler serves liveness and greeting endpoints.
type SystemHandler struct{}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

func (h *SystemHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
	router.Get("/hello/:name", h.HandleHello)
}

func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *SystemHandler) HandleHello(c *fiber.Ctx) error {
	return c.SendString("Hello, " + c.Params("name") + "!")
}
