package repositories

import (
	"context"
	"time"

	"taskboard/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// CreatedBetween returns users created within the inclusive window; a nil bound is open.
	CreatedBetween(ctx context.Context, from, to *time.Time) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user together with every task it owns.
	Delete(ctx context.Context, id uint) error
}
