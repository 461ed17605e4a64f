package services

import (
	"errors"
	"fmt"

	"pustaka/internal/models"
)

// Error kinds returned by the services. Callers match them with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session")
	ErrForbidden          = errors.New("admin role required")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
)

// DependentsError reports that a delete was refused because other records
// still depend on the target. It matches ErrConflict.
type DependentsError struct {
	Resource  string // e.g. "category"
	Dependent string // singular, e.g. "book"
	Count     int64
}

func (e *DependentsError) Error() string {
	dependent := e.Dependent
	if e.Count != 1 {
		dependent += "s"
	}
	return fmt.Sprintf("%s has %d %s", e.Resource, e.Count, dependent)
}

func (e *DependentsError) Is(target error) bool {
	return target == ErrConflict
}

func notFound(resource, id string) error {
	return fmt.Errorf("%s %q %w", resource, id, ErrNotFound)
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func requireSession(actor *models.Session) error {
	if actor == nil || actor.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// requireAdmin re-checks the caller's role for writes even though the
// HTTP gate already filtered the route.
func requireAdmin(actor *models.Session) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
