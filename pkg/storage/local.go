// Package storage persists uploaded book files and covers.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrEmptyFile is returned when there is nothing to store.
var ErrEmptyFile = errors.New("file is empty")

var whitespace = regexp.MustCompile(`\s+`)

// LocalStore writes files into a directory and returns the public URL they
// are served from.
type LocalStore struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStore creates a LocalStore rooted at dir on fs. URLs are built as
// urlPrefix + "/" + file name.
func NewLocalStore(fs afero.Fs, dir, urlPrefix string) *LocalStore {
	return &LocalStore{
		fs:        fs,
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		now:       time.Now,
	}
}

// Store saves data as "<unix millis>-<sanitized name>" and returns its URL.
func (s *LocalStore) Store(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), SanitizeName(suggestedName))
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", name, err)
	}
	return path.Join(s.urlPrefix, name), nil
}

// SanitizeName drops any directory part and replaces whitespace runs with '-'.
// An unusable name is replaced by a random one.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	name = whitespace.ReplaceAllString(name, "-")
	if name == "" || name == "." || name == "/" || name == ".." {
		return uuid.New().String()
	}
	return name
}
