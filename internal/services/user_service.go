package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// UserService handles business logic related to users and their reports.
type UserService struct {
	repo     repositories.UserRepository
	taskRepo repositories.TaskRepository
	events   EventPublisher
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(repo repositories.UserRepository, taskRepo repositories.TaskRepository, events EventPublisher) *UserService {
	return &UserService{
		repo:     repo,
		taskRepo: taskRepo,
		events:   events,
	}
}

// GetAllUsers retrieves all users.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return users, nil
}

// GetUserByID retrieves a single user by its ID.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, "user", id)
	}
	return user, nil
}

// CreateUser stores a user without credentials; such a user cannot log in.
func (s *UserService) CreateUser(ctx context.Context, username, email string) (*models.User, error) {
	username, email, err := checkUserFields(username, email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	publishEvent(ctx, s.events, EventUserCreated, user)
	return user, nil
}

// UpdateUser replaces the username and email of an existing user. No retry on failure.
func (s *UserService) UpdateUser(ctx context.Context, id uint, username, email string) error {
	username, email, err := checkUserFields(username, email)
	if err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateRepoError(err, "user", id)
	}

	user.Username = username
	user.Email = email
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("%w: username or email already registered", ErrConflict)
		}
		return translateRepoError(err, "user", id)
	}

	publishEvent(ctx, s.events, EventUserUpdated, user)
	return nil
}

// DeleteUser deletes a user by its ID along with all of its tasks.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, "user", id)
	}

	publishEvent(ctx, s.events, EventUserDeleted, map[string]uint{"id": id})
	return nil
}

// GetUserTasks returns the tasks of a user. An empty result is checked against
// the user table so that a missing user is reported as ErrNotFound, not as [].
func (s *UserService) GetUserTasks(ctx context.Context, id uint) ([]models.Task, error) {
	tasks, err := s.taskRepo.GetByUserID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if len(tasks) > 0 {
		return tasks, nil
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: user with ID %d", ErrNotFound, id)
	}
	return []models.Task{}, nil
}

// NewUsersReport lists users created within the inclusive window [from, to].
// A nil bound leaves that side open.
func (s *UserService) NewUsersReport(ctx context.Context, from, to *time.Time) ([]models.User, error) {
	if from != nil && to != nil && from.After(*to) {
		return []models.User{}, nil
	}
	users, err := s.repo.CreatedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return users, nil
}

// translateRepoError maps repository errors onto the service taxonomy.
func translateRepoError(err error, entity string, id uint) error {
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s with ID %d", ErrNotFound, entity, id)
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
