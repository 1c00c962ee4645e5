package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/middleware"
	"taskboard/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	service *services.TaskService
	auth    fiber.Handler
}

// NewTaskHandler creates a new TaskHandler. Every task route is guarded by auth.
func NewTaskHandler(service *services.TaskService, auth fiber.Handler) *TaskHandler {
	return &TaskHandler{
		service: service,
		auth:    auth,
	}
}

// RegisterRoutes registers the task routes with the Fiber app.
func (h *TaskHandler) RegisterRoutes(router fiber.Router) {
	taskRoutes := router.Group("/tasks")
	taskRoutes.Post("/", gated(h.auth, h.HandleCreateTask)...)
	taskRoutes.Get("/:id", gated(h.auth, h.HandleGetTaskByID)...)
}

// CreateTaskRequest is the body of a task create request.
type CreateTaskRequest struct {
	UserID      uint       `json:"userId"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	DueDate     *time.Time `json:"dueDate"`
}

// HandleCreateTask creates a task for an existing user.
func (h *TaskHandler) HandleCreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if done, err := validateRequest(c, req); done {
		return err
	}

	task, err := h.service.CreateTask(c.UserContext(), services.CreateTaskInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return respondError(c, err, "Could not create task")
	}

	slog.InfoContext(c.UserContext(), "task created", "task_id", task.ID, "user_id", task.UserID, "by", c.Locals(middleware.LocalUsername))
	c.Location(fmt.Sprintf("/tasks/%d", task.ID))
	return c.Status(fiber.StatusCreated).JSON(task)
}

// HandleGetTaskByID retrieves a single task by its ID.
func (h *TaskHandler) HandleGetTaskByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid task ID")
	}

	task, err := h.service.GetTaskByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Task with ID %d not found", id))
	}
	return c.JSON(task)
}
