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

// GORMBorrowRepository is a GORM implementation of BorrowRepository.
type GORMBorrowRepository struct {
	db *gorm.DB
}

// NewGORMBorrowRepository creates a new instance of GORMBorrowRepository.
func NewGORMBorrowRepository(db *gorm.DB) *GORMBorrowRepository {
	return &GORMBorrowRepository{db: db}
}

func (r *GORMBorrowRepository) Create(ctx context.Context, borrow *models.Borrow) error {
	if borrow.ID == "" {
		borrow.ID = uuid.New().String()
	}
	if borrow.BorrowDate.IsZero() {
		borrow.BorrowDate = time.Now()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(borrow).Error; err != nil {
		return fmt.Errorf("failed to create borrow: %w", translateError(err))
	}
	return nil
}

func (r *GORMBorrowRepository) GetByID(ctx context.Context, id string) (*models.Borrow, error) {
	var borrow models.Borrow
	if err := r.db.WithContext(ctx).Preload("Book").First(&borrow, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get borrow by ID %s: %w", id, translateError(err))
	}
	return &borrow, nil
}

func (r *GORMBorrowRepository) ListByUser(ctx context.Context, userID string) ([]models.Borrow, error) {
	var borrows []models.Borrow
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("borrow_date desc").
		Find(&borrows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list borrows of user %s: %w", userID, err)
	}
	return borrows, nil
}

func (r *GORMBorrowRepository) FindActive(ctx context.Context, userID, bookID string) (*models.Borrow, error) {
	var borrow models.Borrow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", userID, bookID).
		First(&borrow).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active borrow: %w", translateError(err))
	}
	return &borrow, nil
}

func (r *GORMBorrowRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Borrow{}).
		Where("user_id = ? AND return_date IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active borrows of user %s: %w", userID, err)
	}
	return count, nil
}

func (r *GORMBorrowRepository) CountActiveByBook(ctx context.Context, bookID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Borrow{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active borrows of book %s: %w", bookID, err)
	}
	return count, nil
}

func (r *GORMBorrowRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Borrow{}).Where("return_date IS NULL").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active borrows: %w", err)
	}
	return count, nil
}

func (r *GORMBorrowRepository) MarkReturned(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Borrow{}).
		Where("id = ? AND return_date IS NULL", id).
		Update("return_date", at)
	if res.Error != nil {
		return fmt.Errorf("failed to mark borrow %s returned: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("active borrow with ID %s not found: %w", id, ErrNotFound)
	}
	return nil
}

// GORMReadRepository is a GORM implementation of ReadRepository.
type GORMReadRepository struct {
	db *gorm.DB
}

// NewGORMReadRepository creates a new instance of GORMReadRepository.
func NewGORMReadRepository(db *gorm.DB) *GORMReadRepository {
	return &GORMReadRepository{db: db}
}

func (r *GORMReadRepository) Create(ctx context.Context, read *models.Read) error {
	if read.ID == "" {
		read.ID = uuid.New().String()
	}
	if read.ReadDate.IsZero() {
		read.ReadDate = time.Now()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(read).Error; err != nil {
		return fmt.Errorf("failed to record read: %w", translateError(err))
	}
	return nil
}

func (r *GORMReadRepository) ListByUser(ctx context.Context, userID string) ([]models.Read, error) {
	var reads []models.Read
	err := r.db.WithContext(ctx).
		Preload("Book.Category").
		Where("user_id = ?", userID).
		Order("read_date desc").
		Find(&reads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reads of user %s: %w", userID, err)
	}
	return reads, nil
}
