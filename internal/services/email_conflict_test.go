package services_test

import (
	"context"
	"fmt"
	"testing"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
	"pustaka/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// A concurrent writer can claim the email between the lookup and the
// insert. The store's uniqueness error must read as the usual Conflict.
func storeDuplicate(op string) error {
	return fmt.Errorf("failed to %s user: %w", op, repositories.ErrDuplicate)
}

func TestStudentService_Create_StoreDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("GetByEmail", ctx, "late@example.com").Return(nil, repositories.ErrNotFound).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(storeDuplicate("create")).Once()

	hasher := &services.BcryptHasher{Cost: bcrypt.MinCost}
	service := services.NewStudentService(repo, nil, hasher, nil)

	_, err := service.Create(ctx, adminSession, services.StudentInput{
		Name: "Late", Email: "Late@Example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "late@example.com is already registered")
	repo.AssertExpectations(t)
}

func TestAuthService_Register_StoreDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("GetByEmail", ctx, "late@example.com").Return(nil, repositories.ErrNotFound).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(storeDuplicate("create")).Once()

	_, err := newMockAuthService(repo).Register(ctx, services.RegisterInput{
		Name: "Late", Email: "late@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, services.ErrConflict)
	repo.AssertExpectations(t)
}

func TestStudentService_Update_StoreDuplicate(t *testing.T) {
	ctx := context.Background()
	student := &models.User{ID: "student-9", Name: "Siti", Email: "siti@example.com", Role: models.RoleStudent}

	repo := new(MockUserRepository)
	repo.On("GetByID", ctx, "student-9").Return(student, nil).Once()
	repo.On("GetByEmail", ctx, "taken@example.com").Return(nil, repositories.ErrNotFound).Once()
	repo.On("Update", ctx, mock.AnythingOfType("*models.User")).Return(storeDuplicate("update")).Once()

	service := services.NewStudentService(repo, nil, &services.BcryptHasher{Cost: bcrypt.MinCost}, nil)
	_, err := service.Update(ctx, adminSession, "student-9", services.StudentUpdate{
		Name: "Siti", Email: "taken@example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrConflict)
	repo.AssertExpectations(t)
}
