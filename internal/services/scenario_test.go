package services_test

import (
	"context"
	"errors"
	"testing"

	"pustaka/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryScenario(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	fiction, err := f.category.Create(ctx, adminSession, "Fiction")
	require.NoError(t, err)

	book, err := f.book.Create(ctx, adminSession, services.BookInput{
		Title:      "1984",
		Author:     "Orwell",
		FileURL:    "http://x/1984.pdf",
		CategoryID: fiction.ID,
	})
	require.NoError(t, err)

	found, err := f.catalog.ListBooks(ctx, services.BookFilter{Search: "1984"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, book.ID, found[0].ID)

	err = f.category.Delete(ctx, adminSession, fiction.ID)
	require.ErrorIs(t, err, services.ErrConflict)
	var depErr *services.DependentsError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, int64(1), depErr.Count)

	require.NoError(t, f.book.Delete(ctx, adminSession, book.ID))
	require.NoError(t, f.category.Delete(ctx, adminSession, fiction.ID))
}
