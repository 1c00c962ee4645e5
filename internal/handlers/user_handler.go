package handlers

import (
	"fmt"

	"taskboard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/:id", h.HandleGetUserByID)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
	userRoutes.Get("/:id/tasks", h.HandleGetUserTasks)
}

// UserRequest is the body of user create and update requests.
type UserRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=200"`
}

// HandleGetUsers retrieves all users.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve users")
	}
	return c.JSON(users)
}

// HandleCreateUser creates a user without credentials.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req UserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if done, err := validateRequest(c, req); done {
		return err
	}

	user, err := h.service.CreateUser(c.UserContext(), req.Username, req.Email)
	if err != nil {
		return respondError(c, err, "Could not create user")
	}

	c.Location(fmt.Sprintf("/users/%d", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUserByID retrieves a single user by its ID.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}

	user, err := h.service.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("User with ID %d not found", id))
	}
	return c.JSON(user)
}

// HandleUpdateUser replaces the username and email of a user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}

	var req UserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if done, err := validateRequest(c, req); done {
		return err
	}

	if err := h.service.UpdateUser(c.UserContext(), id, req.Username, req.Email); err != nil {
		return respondError(c, err, "Could not update user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDeleteUser deletes a user and every task it owns.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}

	if err := h.service.DeleteUser(c.UserContext(), id); err != nil {
		return respondError(c, err, fmt.Sprintf("User with ID %d not found", id))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetUserTasks lists the tasks owned by a user.
func (h *UserHandler) HandleGetUserTasks(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid user ID")
	}

	tasks, err := h.service.GetUserTasks(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("User with ID %d not found", id))
	}
	return c.JSON(tasks)
}
