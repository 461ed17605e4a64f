package services

import (
	"context"
	"fmt"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
)

// Stats are the admin dashboard counters.
type Stats struct {
	Books         int64 `json:"books"`
	Categories    int64 `json:"categories"`
	Students      int64 `json:"students"`
	ActiveBorrows int64 `json:"activeBorrows"`
}

type StatsService struct {
	books      repositories.BookRepository
	categories repositories.CategoryRepository
	users      repositories.UserRepository
	borrows    repositories.BorrowRepository
}

func NewStatsService(books repositories.BookRepository, categories repositories.CategoryRepository, users repositories.UserRepository, borrows repositories.BorrowRepository) *StatsService {
	return &StatsService{books: books, categories: categories, users: users, borrows: borrows}
}

func (s *StatsService) Overview(ctx context.Context, actor *models.Session) (*Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		stats Stats
		err   error
	)
	if stats.Books, err = s.books.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}
	if stats.Categories, err = s.categories.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	if stats.Students, err = s.users.CountByRole(ctx, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if stats.ActiveBorrows, err = s.borrows.CountActive(ctx); err != nil {
		return nil, fmt.Errorf("failed to count active borrows: %w", err)
	}
	return &stats, nil
}
