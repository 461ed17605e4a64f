package repositories

import (
	"sync"

	"pustaka/internal/models"
)

// MemoryStore is an in-memory datastore shared by the Memory*Repository
// types. It enforces the same uniqueness and foreign key rules as the SQL
// schema so services behave identically against either backend.
type MemoryStore struct {
	mu sync.RWMutex

	users      *table[models.User]
	categories *table[models.Category]
	books      *table[models.Book]
	borrows    *table[models.Borrow]
	reads      *table[models.Read]
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      newTable[models.User](),
		categories: newTable[models.Category](),
		books:      newTable[models.Book](),
		borrows:    newTable[models.Borrow](),
		reads:      newTable[models.Read](),
	}
}

// table keeps rows by id and remembers insertion order.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) put(id string, row T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// each visits rows in insertion order until fn returns false.
func (t *table[T]) each(fn func(T) bool) {
	for _, id := range t.order {
		if !fn(t.rows[id]) {
			return
		}
	}
}

// cascadeDelete drops borrows and reads matched by fn(userID, bookID). It
// must be called with the write lock held.
func (s *MemoryStore) cascadeDelete(fn func(userID, bookID string) bool) {
	var borrowIDs, readIDs []string
	s.borrows.each(func(b models.Borrow) bool {
		if fn(b.UserID, b.BookID) {
			borrowIDs = append(borrowIDs, b.ID)
		}
		return true
	})
	s.reads.each(func(r models.Read) bool {
		if fn(r.UserID, r.BookID) {
			readIDs = append(readIDs, r.ID)
		}
		return true
	})
	for _, id := range borrowIDs {
		s.borrows.remove(id)
	}
	for _, id := range readIDs {
		s.reads.remove(id)
	}
}

// withBook returns a copy of the book with its category attached. It must be
// called with the lock held.
func (s *MemoryStore) withBook(bookID string) *models.Book {
	book, ok := s.books.get(bookID)
	if !ok {
		return nil
	}
	if category, ok := s.categories.get(book.CategoryID); ok {
		book.Category = &category
	}
	return &book
}
