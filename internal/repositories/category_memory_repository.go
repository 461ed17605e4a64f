package repositories

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pustaka/internal/models"

	"github.com/google/uuid"
)

// MemoryCategoryRepository is an in-memory implementation of CategoryRepository.
type MemoryCategoryRepository struct {
	store *MemoryStore
}

// NewMemoryCategoryRepository creates a CategoryRepository backed by store.
func NewMemoryCategoryRepository(store *MemoryStore) *MemoryCategoryRepository {
	return &MemoryCategoryRepository{store: store}
}

func (r *MemoryCategoryRepository) GetAll(_ context.Context) ([]models.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	categories := make([]models.Category, 0, len(r.store.categories.rows))
	r.store.categories.each(func(c models.Category) bool {
		categories = append(categories, c)
		return true
	})
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *MemoryCategoryRepository) GetByID(_ context.Context, id string) (*models.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	category, ok := r.store.categories.get(id)
	if !ok {
		return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return &category, nil
}

func (r *MemoryCategoryRepository) GetByName(_ context.Context, name string) (*models.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if category := r.byName(name, ""); category != nil {
		return category, nil
	}
	return nil, fmt.Errorf("category named %q: %w", name, ErrNotFound)
}

func (r *MemoryCategoryRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.categories.rows)), nil
}

func (r *MemoryCategoryRepository) Create(_ context.Context, category *models.Category) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.byName(category.Name, "") != nil {
		return fmt.Errorf("failed to create category: %w", ErrDuplicate)
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	s.categories.put(category.ID, *category)
	return nil
}

func (r *MemoryCategoryRepository) Update(_ context.Context, category *models.Category) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories.get(category.ID)
	if !ok {
		return fmt.Errorf("category with ID %s not found for update: %w", category.ID, ErrNotFound)
	}
	if r.byName(category.Name, category.ID) != nil {
		return fmt.Errorf("failed to update category: %w", ErrDuplicate)
	}
	existing.Name = category.Name
	existing.UpdatedAt = time.Now()
	s.categories.put(existing.ID, existing)
	*category = existing
	return nil
}

func (r *MemoryCategoryRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories.get(id); !ok {
		return fmt.Errorf("category with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	referenced := false
	s.books.each(func(b models.Book) bool {
		referenced = b.CategoryID == id
		return !referenced
	})
	if referenced {
		return fmt.Errorf("failed to delete category: %w", ErrReferenced)
	}
	s.categories.remove(id)
	return nil
}

// byName must be called with the store lock held.
func (r *MemoryCategoryRepository) byName(name, exceptID string) *models.Category {
	var found *models.Category
	r.store.categories.each(func(c models.Category) bool {
		if c.Name == name && c.ID != exceptID {
			found = &c
			return false
		}
		return true
	})
	return found
}
