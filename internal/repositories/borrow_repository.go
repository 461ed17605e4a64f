package repositories

import (
	"context"
	"time"

	"pustaka/internal/models"
)

// BorrowRepository defines the interface for borrow record access.
type BorrowRepository interface {
	Create(ctx context.Context, borrow *models.Borrow) error
	GetByID(ctx context.Context, id string) (*models.Borrow, error)
	// ListByUser returns the user's borrows newest first, with books populated.
	ListByUser(ctx context.Context, userID string) ([]models.Borrow, error)
	// FindActive returns the unreturned borrow of bookID by userID.
	FindActive(ctx context.Context, userID, bookID string) (*models.Borrow, error)
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
	CountActiveByBook(ctx context.Context, bookID string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	// MarkReturned sets the return date of an active borrow. It returns
	// ErrNotFound when no active borrow with that id exists.
	MarkReturned(ctx context.Context, id string, at time.Time) error
}

// ReadRepository defines the interface for reading history access.
type ReadRepository interface {
	Create(ctx context.Context, read *models.Read) error
	// ListByUser returns the user's reads newest first, with books populated.
	ListByUser(ctx context.Context, userID string) ([]models.Read, error)
}
