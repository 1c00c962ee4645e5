package repositories

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/models"

	"gorm.io/gorm"
)

// GORMTaskRepository is a GORM implementation of TaskRepository.
type GORMTaskRepository struct {
	db *gorm.DB
}

var _ TaskRepository = (*GORMTaskRepository)(nil)

// NewGORMTaskRepository creates a new instance of GORMTaskRepository.
func NewGORMTaskRepository(db *gorm.DB) *GORMTaskRepository {
	return &GORMTaskRepository{
		db: db,
	}
}

// GetByID retrieves a single task by its ID from the database.
func (r *GORMTaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task with ID %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get task by ID %d: %w", id, err)
	}
	return &task, nil
}

// GetByUserID retrieves the tasks owned by a user, oldest first.
func (r *GORMTaskRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to get tasks of user %d: %w", userID, err)
	}
	return tasks, nil
}

// Create creates a new task in the database.
func (r *GORMTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("owner %d of task: %w", task.UserID, ErrRecordNotFound)
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}
