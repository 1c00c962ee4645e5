package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// CreateTaskInput carries the caller-supplied fields of a new task.
type CreateTaskInput struct {
	UserID      uint
	Title       string
	Description *string
	DueDate     *time.Time
}

// TaskService handles business logic related to tasks.
type TaskService struct {
	taskRepo repositories.TaskRepository
	userRepo repositories.UserRepository
	events   EventPublisher
}

// NewTaskService creates a new TaskService. events may be nil.
func NewTaskService(taskRepo repositories.TaskRepository, userRepo repositories.UserRepository, events EventPublisher) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		events:   events,
	}
}

// CreateTask validates the input, checks that the owner exists and stores the task.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	title, err := checkField("title", in.Title, titleRule)
	if err != nil {
		return nil, err
	}

	var description *string
	if in.Description != nil {
		d, err := checkField("description", *in.Description, descriptionRule)
		if err != nil {
			return nil, err
		}
		if d != "" {
			description = &d
		}
	}

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, translateRepoError(err, "user", in.UserID)
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		UserID:      in.UserID,
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		task.DueDate = &due
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		// The owner can be deleted between the lookup and the insert.
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user with ID %d", ErrNotFound, in.UserID)
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	publishEvent(ctx, s.events, EventTaskCreated, task)
	return task, nil
}

// GetTaskByID retrieves a single task by its ID.
func (s *TaskService) GetTaskByID(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, "task", id)
	}
	return task, nil
}
