package repositories

import (
	"context"
	"fmt"
	"time"

	"pustaka/internal/models"

	"github.com/google/uuid"
)

// MemoryBookRepository is an in-memory implementation of BookRepository.
type MemoryBookRepository struct {
	store *MemoryStore
}

// NewMemoryBookRepository creates a BookRepository backed by store.
func NewMemoryBookRepository(store *MemoryStore) *MemoryBookRepository {
	return &MemoryBookRepository{store: store}
}

func (r *MemoryBookRepository) GetAll(_ context.Context) ([]models.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	books := make([]models.Book, 0, len(r.store.books.rows))
	r.store.books.each(func(b models.Book) bool {
		books = append(books, *r.store.withBook(b.ID))
		return true
	})
	return books, nil
}

func (r *MemoryBookRepository) GetByID(_ context.Context, id string) (*models.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	book := r.store.withBook(id)
	if book == nil {
		return nil, fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
	}
	return book, nil
}

func (r *MemoryBookRepository) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	r.store.books.each(func(b models.Book) bool {
		if b.CategoryID == categoryID {
			count++
		}
		return true
	})
	return count, nil
}

func (r *MemoryBookRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.books.rows)), nil
}

func (r *MemoryBookRepository) Create(_ context.Context, book *models.Book) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories.get(book.CategoryID); !ok {
		return fmt.Errorf("failed to create book: %w", ErrReferenced)
	}
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	row := *book
	row.Category = nil
	s.books.put(row.ID, row)
	return nil
}

func (r *MemoryBookRepository) Update(_ context.Context, book *models.Book) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.books.get(book.ID)
	if !ok {
		return fmt.Errorf("book with ID %s not found for update: %w", book.ID, ErrNotFound)
	}
	if _, ok := s.categories.get(book.CategoryID); !ok {
		return fmt.Errorf("failed to update book: %w", ErrReferenced)
	}
	row := *book
	row.Category = nil
	row.CreatedAt = existing.CreatedAt
	row.UpdatedAt = time.Now()
	s.books.put(row.ID, row)
	book.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *MemoryBookRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.books.remove(id) {
		return fmt.Errorf("book with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	s.cascadeDelete(func(_, bookID string) bool { return bookID == id })
	return nil
}
