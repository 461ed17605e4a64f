package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
)

type categoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryService handles business logic related to categories.
// Names are compared after trimming, case-sensitively.
type CategoryService struct {
	repo   repositories.CategoryRepository
	books  repositories.BookRepository
	events *Events
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, books repositories.BookRepository, events *Events) *CategoryService {
	return &CategoryService{repo: repo, books: books, events: events}
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Get retrieves a single category by its ID.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("category", id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// Create adds a category with a name no other category uses.
func (s *CategoryService) Create(ctx context.Context, actor *models.Session, name string) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name, err := cleanCategoryName(name)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		// Lost a race with a concurrent create.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, duplicateCategory(name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.events.emit("category.created", actor, category.ID, category)
	return category, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, actor *models.Session, id, name string) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name, err := cleanCategoryName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, id); err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, duplicateCategory(name)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, notFound("category", id)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	s.events.emit("category.updated", actor, category.ID, category)
	return category, nil
}

// Delete removes a category that no book uses.
func (s *CategoryService) Delete(ctx context.Context, actor *models.Session, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.books.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count books: %w", err)
	}
	if count > 0 {
		return &DependentsError{Resource: "category", Dependent: "book", Count: count}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrReferenced):
			return conflict("category is still used by books")
		case errors.Is(err, repositories.ErrNotFound):
			return notFound("category", id)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.events.emit("category.deleted", actor, id, nil)
	return nil
}

// ensureNameFree fails when a category other than selfID already has name.
func (s *CategoryService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return duplicateCategory(name)
		}
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check category name: %w", err)
	}
}

func cleanCategoryName(name string) (string, error) {
	in := categoryInput{Name: strings.TrimSpace(name)}
	if err := validateStruct(in); err != nil {
		return "", err
	}
	return in.Name, nil
}

func duplicateCategory(name string) error {
	return conflict("category %q already exists", name)
}
