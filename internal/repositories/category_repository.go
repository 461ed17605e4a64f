package repositories

import (
	"context"

	"pustaka/internal/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	// GetAll returns every category ordered by name.
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}
