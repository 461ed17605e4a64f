package services

import (
	"context"
	"fmt"
	"strings"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
)

// BookFilter narrows a catalog listing. Empty fields do not filter.
type BookFilter struct {
	Search     string
	CategoryID string
}

// IsAllCategories reports whether id is one of the "no category filter"
// values sent by clients.
func IsAllCategories(id string) bool {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "", "all", "todas":
		return true
	}
	return false
}

// CatalogService answers read-only catalog queries.
type CatalogService struct {
	books repositories.BookRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(books repositories.BookRepository) *CatalogService {
	return &CatalogService{books: books}
}

// ListBooks returns books whose title or author contains Search
// (case-insensitive) and whose category is CategoryID. Storage order is kept.
func (s *CatalogService) ListBooks(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	books, err := s.books.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	categoryID := strings.TrimSpace(filter.CategoryID)
	if IsAllCategories(categoryID) {
		categoryID = ""
	}

	matched := make([]models.Book, 0, len(books))
	for _, book := range books {
		if categoryID != "" && book.CategoryID != categoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(book.Title), search) &&
			!strings.Contains(strings.ToLower(book.Author), search) {
			continue
		}
		matched = append(matched, book)
	}
	return matched, nil
}
