package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
	"pustaka/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newMockAuthService(repo *MockUserRepository) *services.AuthService {
	return services.NewAuthService(repo, &services.BcryptHasher{Cost: bcrypt.MinCost}, testJWTSecret, time.Hour, nil)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newMockAuthService(mockRepo)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-123",
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleStudent,
	}

	t.Run("normalizes email and issues a token", func(t *testing.T) {
		mockRepo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

		token, session, err := authService.Login(ctx, "  Test@Example.COM ", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "user-123", session.UserID)
		assert.Equal(t, models.RoleStudent, session.Role)
		assert.True(t, session.ExpiresAt.After(time.Now()))

		validated, err := authService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, session.UserID, validated.UserID)
		assert.Equal(t, session.Role, validated.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		mockRepo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
		mockRepo.On("GetByEmail", ctx, "nobody@example.com").
			Return(nil, fmt.Errorf("user by email: %w", repositories.ErrNotFound)).Once()

		_, _, wrongPassword := authService.Login(ctx, "test@example.com", "wrongpassword")
		_, _, unknownEmail := authService.Login(ctx, "nobody@example.com", "password123")

		assert.ErrorIs(t, wrongPassword, services.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, services.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
		mockRepo.AssertExpectations(t)
	})

	t.Run("corrupt stored hash is an authentication failure", func(t *testing.T) {
		broken := *user
		broken.PasswordHash = "not-a-bcrypt-hash"
		mockRepo.On("GetByEmail", ctx, "test@example.com").Return(&broken, nil).Once()

		_, _, err := authService.Login(ctx, "test@example.com", "password123")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, errors.New("connection refused")).Once()

		_, _, err := authService.Login(ctx, "test@example.com", "password123")
		require.Error(t, err)
		assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing fields are a validation error", func(t *testing.T) {
		_, _, err := authService.Login(ctx, " ", "")
		assert.ErrorIs(t, err, services.ErrValidation)
	})
}

// MockPasswordHasher is a mock implementation of services.PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(plain, hash string) (bool, error) {
	args := m.Called(plain, hash)
	return args.Bool(0), args.Error(1)
}

func TestAuthService_Login_UnknownEmailComparesHash(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	hasher := new(MockPasswordHasher)
	authService := services.NewAuthService(repo, hasher, testJWTSecret, time.Hour, nil)

	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repositories.ErrNotFound).Once()
	hasher.On("Verify", "password123", mock.MatchedBy(func(hash string) bool {
		cost, err := bcrypt.Cost([]byte(hash))
		return err == nil && cost == services.DefaultPasswordCost
	})).Return(false, nil).Once()

	_, _, err := authService.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	repo.AssertExpectations(t)
	hasher.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newMockAuthService(new(MockUserRepository))

	sign := func(method jwt.SigningMethod, secret []byte, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
		require.NoError(t, err)
		return token
	}
	future := time.Now().Add(time.Hour).Unix()

	t.Run("valid token", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, []byte(testJWTSecret), &services.Claims{
			UserID:         "admin-1",
			Role:           models.RoleAdmin,
			StandardClaims: jwt.StandardClaims{ExpiresAt: future},
		})
		session, err := authService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", session.UserID)
		assert.True(t, session.IsAdmin())
	})

	invalidCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("other-secret"), &services.Claims{
			UserID: "admin-1", Role: models.RoleAdmin, StandardClaims: jwt.StandardClaims{ExpiresAt: future},
		})},
		{"expired", sign(jwt.SigningMethodHS256, []byte(testJWTSecret), &services.Claims{
			UserID: "admin-1", Role: models.RoleAdmin, StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
		})},
		{"unknown role", sign(jwt.SigningMethodHS256, []byte(testJWTSecret), &services.Claims{
			UserID: "admin-1", Role: "ROOT", StandardClaims: jwt.StandardClaims{ExpiresAt: future},
		})},
		{"missing user", sign(jwt.SigningMethodHS256, []byte(testJWTSecret), &services.Claims{
			Role: models.RoleStudent, StandardClaims: jwt.StandardClaims{ExpiresAt: future},
		})},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte(testJWTSecret), &services.Claims{
			UserID: "admin-1", Role: models.RoleAdmin,
		})},
	}
	for _, tc := range invalidCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := authService.ValidateToken(tc.token)
			assert.ErrorIs(t, err, services.ErrInvalidToken)
		})
	}
}

func TestAuthService_ExpiredSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.mustStudent(t, "Budi", "budi@example.com", "secret123")

	expiring := services.NewAuthService(f.users, f.hasher, testJWTSecret, -time.Minute, nil)
	token, _, err := expiring.Login(ctx, "budi@example.com", "secret123")
	require.NoError(t, err)

	_, err = expiring.ValidateToken(token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthService_StudentCredentials(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	student := f.mustStudent(t, "Siti", "Siti@Example.com", "rahasia1")
	assert.Equal(t, "siti@example.com", student.Email)

	_, session, err := f.auth.Login(ctx, "siti@example.com", "rahasia1")
	require.NoError(t, err)
	assert.Equal(t, student.ID, session.UserID)
	assert.Equal(t, models.RoleStudent, session.Role)

	user, err := f.auth.CurrentUser(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "Siti", user.Name)
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, services.RegisterInput{Name: "Andi", Email: "andi@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	_, err = f.auth.Register(ctx, services.RegisterInput{Name: "Andi 2", Email: "ANDI@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = f.auth.Register(ctx, services.RegisterInput{Name: "Short", Email: "short@example.com", Password: "123"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	admin, created, err := f.auth.EnsureAdmin(ctx, "Admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	again, created, err := f.auth.EnsureAdmin(ctx, "Admin", "Admin@Example.com", "different")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	f.mustStudent(t, "Student", "student@example.com", "secret123")
	_, _, err = f.auth.EnsureAdmin(ctx, "Admin", "student@example.com", "admin123")
	assert.ErrorIs(t, err, services.ErrConflict)
}
