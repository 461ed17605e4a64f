package repositories

import (
	"context"
	"fmt"
	"time"

	"pustaka/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMBookRepository is a GORM implementation of BookRepository.
type GORMBookRepository struct {
	db *gorm.DB
}

// NewGORMBookRepository creates a new instance of GORMBookRepository.
func NewGORMBookRepository(db *gorm.DB) *GORMBookRepository {
	return &GORMBookRepository{db: db}
}

// GetAll retrieves all books with their categories in insertion order.
func (r *GORMBookRepository) GetAll(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.WithContext(ctx).Preload("Category").Order("created_at asc").Order("id asc").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to get all books: %w", err)
	}
	return books, nil
}

// GetByID retrieves a single book with its category.
func (r *GORMBookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Preload("Category").First(&book, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get book by ID %s: %w", id, translateError(err))
	}
	return &book, nil
}

// CountByCategory counts books assigned to categoryID.
func (r *GORMBookRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Book{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count books of category %s: %w", categoryID, err)
	}
	return count, nil
}

// Count returns the number of books.
func (r *GORMBookRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

// Create inserts a new book. An unknown category yields ErrReferenced.
func (r *GORMBookRepository) Create(ctx context.Context, book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", translateError(err))
	}
	return nil
}

// Update overwrites every editable column, storing nil year/pages as NULL.
func (r *GORMBookRepository) Update(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", book.ID).Updates(map[string]interface{}{
		"title":       book.Title,
		"author":      book.Author,
		"description": book.Description,
		"cover_image": book.CoverImage,
		"file_url":    book.FileURL,
		"isbn":        book.ISBN,
		"publisher":   book.Publisher,
		"year":        book.Year,
		"pages":       book.Pages,
		"category_id": book.CategoryID,
		"updated_at":  book.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update book: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %s not found for update: %w", book.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a book by its ID.
func (r *GORMBookRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete book: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
