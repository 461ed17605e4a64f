package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Great Book.pdf", "My-Great-Book.pdf"},
		{"  spaced\tout  name.epub ", "spaced-out-name.epub"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\cover art.png`, "cover-art.png"},
		{"plain.pdf", "plain.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), tt.in)
	}

	for _, unusable := range []string{"", "   ", "..", "/"} {
		_, err := uuid.Parse(SanitizeName(unusable))
		assert.NoError(t, err, "%q should become a random name", unusable)
	}
}

func TestLocalStoreStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewLocalStore(fs, "public/uploads", "/uploads/")
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	url, err := store.Store(context.Background(), []byte("%PDF"), "Da Vinci Code.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-Da-Vinci-Code.pdf", url)

	data, err := afero.ReadFile(fs, filepath.Join("public/uploads", "1700000000000-Da-Vinci-Code.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestLocalStoreRejects(t *testing.T) {
	store := NewLocalStore(afero.NewMemMapFs(), "uploads", "/uploads")

	_, err := store.Store(context.Background(), nil, "empty.pdf")
	assert.ErrorIs(t, err, ErrEmptyFile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Store(ctx, []byte("x"), "late.pdf")
	assert.ErrorIs(t, err, context.Canceled)

	readOnly := NewLocalStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "uploads", "/uploads")
	_, err = readOnly.Store(context.Background(), []byte("x"), "book.pdf")
	assert.Error(t, err)
}
