package repositories

import (
	"context"

	"pustaka/internal/models"
)

// BookRepository defines the interface for book data access.
type BookRepository interface {
	// GetAll returns every book in storage order, with categories populated.
	GetAll(ctx context.Context) ([]models.Book, error)
	// GetByID returns the book with its category populated.
	GetByID(ctx context.Context, id string) (*models.Book, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id string) error
}
