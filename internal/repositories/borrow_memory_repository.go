package repositories

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pustaka/internal/models"

	"github.com/google/uuid"
)

// MemoryBorrowRepository is an in-memory implementation of BorrowRepository.
type MemoryBorrowRepository struct {
	store *MemoryStore
}

// NewMemoryBorrowRepository creates a BorrowRepository backed by store.
func NewMemoryBorrowRepository(store *MemoryStore) *MemoryBorrowRepository {
	return &MemoryBorrowRepository{store: store}
}

func (r *MemoryBorrowRepository) Create(_ context.Context, borrow *models.Borrow) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(borrow.UserID); !ok {
		return fmt.Errorf("failed to create borrow: %w", ErrReferenced)
	}
	if _, ok := s.books.get(borrow.BookID); !ok {
		return fmt.Errorf("failed to create borrow: %w", ErrReferenced)
	}
	if borrow.ID == "" {
		borrow.ID = uuid.New().String()
	}
	if borrow.BorrowDate.IsZero() {
		borrow.BorrowDate = time.Now()
	}
	row := *borrow
	row.Book = nil
	s.borrows.put(row.ID, row)
	return nil
}

func (r *MemoryBorrowRepository) GetByID(_ context.Context, id string) (*models.Borrow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	borrow, ok := r.store.borrows.get(id)
	if !ok {
		return nil, fmt.Errorf("borrow with ID %s: %w", id, ErrNotFound)
	}
	borrow.Book = r.store.withBook(borrow.BookID)
	return &borrow, nil
}

func (r *MemoryBorrowRepository) ListByUser(_ context.Context, userID string) ([]models.Borrow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	borrows := make([]models.Borrow, 0)
	r.store.borrows.each(func(b models.Borrow) bool {
		if b.UserID == userID {
			b.Book = r.store.withBook(b.BookID)
			borrows = append(borrows, b)
		}
		return true
	})
	sort.SliceStable(borrows, func(i, j int) bool {
		return borrows[i].BorrowDate.After(borrows[j].BorrowDate)
	})
	return borrows, nil
}

func (r *MemoryBorrowRepository) FindActive(_ context.Context, userID, bookID string) (*models.Borrow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *models.Borrow
	r.store.borrows.each(func(b models.Borrow) bool {
		if b.UserID == userID && b.BookID == bookID && b.Active() {
			found = &b
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("active borrow: %w", ErrNotFound)
	}
	return found, nil
}

func (r *MemoryBorrowRepository) CountActiveByUser(_ context.Context, userID string) (int64, error) {
	return r.countActive(func(b models.Borrow) bool { return b.UserID == userID }), nil
}

func (r *MemoryBorrowRepository) CountActiveByBook(_ context.Context, bookID string) (int64, error) {
	return r.countActive(func(b models.Borrow) bool { return b.BookID == bookID }), nil
}

func (r *MemoryBorrowRepository) CountActive(_ context.Context) (int64, error) {
	return r.countActive(func(models.Borrow) bool { return true }), nil
}

func (r *MemoryBorrowRepository) MarkReturned(_ context.Context, id string, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	borrow, ok := s.borrows.get(id)
	if !ok || !borrow.Active() {
		return fmt.Errorf("active borrow with ID %s not found: %w", id, ErrNotFound)
	}
	borrow.ReturnDate = &at
	s.borrows.put(id, borrow)
	return nil
}

func (r *MemoryBorrowRepository) countActive(match func(models.Borrow) bool) int64 {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	r.store.borrows.each(func(b models.Borrow) bool {
		if b.Active() && match(b) {
			count++
		}
		return true
	})
	return count
}

// MemoryReadRepository is an in-memory implementation of ReadRepository.
type MemoryReadRepository struct {
	store *MemoryStore
}

// NewMemoryReadRepository creates a ReadRepository backed by store.
func NewMemoryReadRepository(store *MemoryStore) *MemoryReadRepository {
	return &MemoryReadRepository{store: store}
}

func (r *MemoryReadRepository) Create(_ context.Context, read *models.Read) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(read.UserID); !ok {
		return fmt.Errorf("failed to record read: %w", ErrReferenced)
	}
	if _, ok := s.books.get(read.BookID); !ok {
		return fmt.Errorf("failed to record read: %w", ErrReferenced)
	}
	if read.ID == "" {
		read.ID = uuid.New().String()
	}
	if read.ReadDate.IsZero() {
		read.ReadDate = time.Now()
	}
	row := *read
	row.Book = nil
	s.reads.put(row.ID, row)
	return nil
}

func (r *MemoryReadRepository) ListByUser(_ context.Context, userID string) ([]models.Read, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	reads := make([]models.Read, 0)
	r.store.reads.each(func(rd models.Read) bool {
		if rd.UserID == userID {
			rd.Book = r.store.withBook(rd.BookID)
			reads = append(reads, rd)
		}
		return true
	})
	sort.SliceStable(reads, func(i, j int) bool {
		return reads[i].ReadDate.After(reads[j].ReadDate)
	})
	return reads, nil
}
