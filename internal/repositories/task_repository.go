package repositories

import (
	"context"

	"taskboard/internal/models"
)

// TaskRepository defines the interface for task data access.
type TaskRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) error
}
