package repositories

import (
	"context"
	"fmt"
	"time"

	"pustaka/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	store *MemoryStore
}

// NewMemoryUserRepository creates a UserRepository backed by store.
func NewMemoryUserRepository(store *MemoryStore) *MemoryUserRepository {
	return &MemoryUserRepository{store: store}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return fmt.Errorf("failed to create user: %w", ErrDuplicate)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users.put(user.ID, *user)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users.get(id)
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var found *models.User
	r.store.users.each(func(u models.User) bool {
		if u.Email == email {
			found = &u
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("user by email: %w", ErrNotFound)
	}
	return found, nil
}

func (r *MemoryUserRepository) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]models.User, 0)
	r.store.users.each(func(u models.User) bool {
		if u.Role == role {
			users = append(users, u)
		}
		return true
	})
	return users, nil
}

func (r *MemoryUserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	users, err := r.ListByRole(ctx, role)
	return int64(len(users)), err
}

func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users.get(user.ID)
	if !ok {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, ErrNotFound)
	}
	if r.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("failed to update user: %w", ErrDuplicate)
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.PasswordHash = user.PasswordHash
	existing.Role = user.Role
	existing.UpdatedAt = time.Now()
	s.users.put(existing.ID, existing)
	*user = existing
	return nil
}

// Delete removes the user together with their borrows and reads, mirroring
// the cascading foreign keys of the SQL schema.
func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.users.remove(id) {
		return fmt.Errorf("user with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	s.cascadeDelete(func(userID, _ string) bool { return userID == id })
	return nil
}

// emailTaken must be called with the store lock held.
func (r *MemoryUserRepository) emailTaken(email, exceptID string) bool {
	taken := false
	r.store.users.each(func(u models.User) bool {
		if u.Email == email && u.ID != exceptID {
			taken = true
			return false
		}
		return true
	})
	return taken
}
