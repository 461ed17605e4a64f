package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
	"pustaka/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	category, err := f.category.Create(ctx, adminSession, "  Fiction ")
	require.NoError(t, err)
	assert.Equal(t, "Fiction", category.Name)
	assert.NotEmpty(t, category.ID)

	_, err = f.category.Create(ctx, adminSession, "Fiction")
	assert.ErrorIs(t, err, services.ErrConflict)

	// Names are compared case-sensitively.
	_, err = f.category.Create(ctx, adminSession, "fiction")
	assert.NoError(t, err)

	_, err = f.category.Create(ctx, adminSession, "   ")
	assert.ErrorIs(t, err, services.ErrValidation)

	categories, err := f.category.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Fiction", categories[0].Name)
	assert.Equal(t, "fiction", categories[1].Name)
}

func TestCategoryService_Update(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	fiction := f.mustCategory(t, "Fiction")
	history := f.mustCategory(t, "History")

	renamed, err := f.category.Update(ctx, adminSession, fiction.ID, "Novels")
	require.NoError(t, err)
	assert.Equal(t, "Novels", renamed.Name)

	// Keeping its own name is not a conflict.
	_, err = f.category.Update(ctx, adminSession, fiction.ID, " Novels ")
	assert.NoError(t, err)

	_, err = f.category.Update(ctx, adminSession, history.ID, "Novels")
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = f.category.Update(ctx, adminSession, "missing", "Poetry")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCategoryService_DeleteGuard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	fiction := f.mustCategory(t, "Fiction")
	other := f.mustCategory(t, "Other")
	book := f.mustBook(t, "1984", "George Orwell", fiction.ID)
	f.mustBook(t, "Animal Farm", "George Orwell", fiction.ID)

	err := f.category.Delete(ctx, adminSession, fiction.ID)
	require.ErrorIs(t, err, services.ErrConflict)
	var depErr *services.DependentsError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, int64(2), depErr.Count)
	assert.Equal(t, "category has 2 books", err.Error())

	// Reassign one book, delete the other.
	_, err = f.book.Update(ctx, adminSession, book.ID, services.BookInput{
		Title: book.Title, Author: book.Author, FileURL: book.FileURL, CategoryID: other.ID,
	})
	require.NoError(t, err)
	err = f.category.Delete(ctx, adminSession, fiction.ID)
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, "category has 1 book", err.Error())

	books, err := f.catalog.ListBooks(ctx, services.BookFilter{CategoryID: fiction.ID})
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.NoError(t, f.book.Delete(ctx, adminSession, books[0].ID))

	require.NoError(t, f.category.Delete(ctx, adminSession, fiction.ID))
	_, err = f.category.Get(ctx, fiction.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	err = f.category.Delete(ctx, adminSession, fiction.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCategoryService_RequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	category := f.mustCategory(t, "Fiction")

	_, err := f.category.Create(ctx, studentSession, "Poetry")
	assert.ErrorIs(t, err, services.ErrForbidden)
	_, err = f.category.Update(ctx, studentSession, category.ID, "Poetry")
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.ErrorIs(t, f.category.Delete(ctx, studentSession, category.ID), services.ErrForbidden)

	_, err = f.category.Create(ctx, nil, "Poetry")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	categories, err := f.category.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCategoryService_GetIsRepeatable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	category := f.mustCategory(t, "Fiction")

	first, err := f.category.Get(ctx, category.ID)
	require.NoError(t, err)
	second, err := f.category.Get(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// racingCategoryRepository lets the duplicate pre-check pass and then fails
// the insert the way a unique index would.
type racingCategoryRepository struct {
	repositories.CategoryRepository
	mock.Mock
}

func (r *racingCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return nil, fmt.Errorf("category by name: %w", repositories.ErrNotFound)
}

func (r *racingCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := r.Called(category.Name)
	return args.Error(0)
}

func TestCategoryService_StoreUniquenessIsConflict(t *testing.T) {
	repo := &racingCategoryRepository{}
	repo.On("Create", "Fiction").Return(fmt.Errorf("failed to create category: %w", repositories.ErrDuplicate)).Once()
	svc := services.NewCategoryService(repo, nil, nil)

	_, err := svc.Create(context.Background(), adminSession, "Fiction")
	assert.ErrorIs(t, err, services.ErrConflict)
	repo.AssertExpectations(t)
}
