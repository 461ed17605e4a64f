package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
)

// BookInput carries the writable fields of a book. Year and Pages are nil
// when not given.
type BookInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Author      string `json:"author" validate:"required,max=255"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage" validate:"omitempty,fileref,max=1024"`
	FileURL     string `json:"fileUrl" validate:"required,fileref,max=1024"`
	ISBN        string `json:"isbn" validate:"omitempty,max=32"`
	Publisher   string `json:"publisher" validate:"omitempty,max=255"`
	Year        *int   `json:"year" validate:"omitempty,gt=0,lte=9999"`
	Pages       *int   `json:"pages" validate:"omitempty,gt=0"`
	CategoryID  string `json:"categoryId" validate:"required"`
}

func (in *BookInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Description = strings.TrimSpace(in.Description)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	in.FileURL = strings.TrimSpace(in.FileURL)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Publisher = strings.TrimSpace(in.Publisher)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
}

func (in *BookInput) apply(book *models.Book) {
	book.Title = in.Title
	book.Author = in.Author
	book.Description = in.Description
	book.CoverImage = in.CoverImage
	book.FileURL = in.FileURL
	book.ISBN = in.ISBN
	book.Publisher = in.Publisher
	book.Year = in.Year
	book.Pages = in.Pages
	book.CategoryID = in.CategoryID
}

// BookService handles business logic related to books.
type BookService struct {
	repo       repositories.BookRepository
	categories repositories.CategoryRepository
	borrows    repositories.BorrowRepository
	events     *Events
}

// NewBookService creates a new BookService.
func NewBookService(repo repositories.BookRepository, categories repositories.CategoryRepository, borrows repositories.BorrowRepository, events *Events) *BookService {
	return &BookService{repo: repo, categories: categories, borrows: borrows, events: events}
}

// Get retrieves a single book with its category.
func (s *BookService) Get(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("book", id)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// Create adds a book to an existing category.
func (s *BookService) Create(ctx context.Context, actor *models.Session, input BookInput) (*models.Book, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	input.normalize()
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	category, err := s.requireCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	book := &models.Book{}
	input.apply(book)
	if err := s.repo.Create(ctx, book); err != nil {
		// The category was deleted between the check and the insert.
		if errors.Is(err, repositories.ErrReferenced) {
			return nil, missingCategory(input.CategoryID)
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	book.Category = category
	s.events.emit("book.created", actor, book.ID, book)
	return book, nil
}

// Update replaces the writable fields of a book.
func (s *BookService) Update(ctx context.Context, actor *models.Session, id string, input BookInput) (*models.Book, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	input.normalize()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	book, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category, err := s.requireCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	input.apply(book)
	book.Category = nil
	if err := s.repo.Update(ctx, book); err != nil {
		switch {
		case errors.Is(err, repositories.ErrReferenced):
			return nil, missingCategory(input.CategoryID)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, notFound("book", id)
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	book.Category = category
	s.events.emit("book.updated", actor, book.ID, book)
	return book, nil
}

// Delete removes a book together with its reading history and returned
// borrows. It is refused while any copy is still out on loan.
func (s *BookService) Delete(ctx context.Context, actor *models.Session, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	active, err := s.borrows.CountActiveByBook(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count active borrows: %w", err)
	}
	if active > 0 {
		return &DependentsError{Resource: "book", Dependent: "active borrow", Count: active}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("book", id)
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	s.events.emit("book.deleted", actor, id, nil)
	return nil
}

func (s *BookService) requireCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, missingCategory(id)
		}
		return nil, fmt.Errorf("failed to check category: %w", err)
	}
	return category, nil
}

func missingCategory(id string) error {
	return invalid("category %q does not exist", id)
}
