package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
	"pustaka/internal/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

var (
	adminSession   = &models.Session{UserID: "admin-1", Role: models.RoleAdmin}
	studentSession = &models.Session{UserID: "student-1", Role: models.RoleStudent}
)

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, payload interface{}) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}

// fixture wires every service over one in-memory store.
type fixture struct {
	store      *repositories.MemoryStore
	users      repositories.UserRepository
	categories repositories.CategoryRepository
	books      repositories.BookRepository
	borrows    repositories.BorrowRepository
	reads      repositories.ReadRepository

	hasher   services.PasswordHasher
	auth     *services.AuthService
	category *services.CategoryService
	book     *services.BookService
	catalog  *services.CatalogService
	student  *services.StudentService
	reading  *services.ReadingService
	stats    *services.StatsService
}

func newFixture(t *testing.T, events *services.Events) *fixture {
	t.Helper()

	store := repositories.NewMemoryStore()
	f := &fixture{
		store:      store,
		users:      repositories.NewMemoryUserRepository(store),
		categories: repositories.NewMemoryCategoryRepository(store),
		books:      repositories.NewMemoryBookRepository(store),
		borrows:    repositories.NewMemoryBorrowRepository(store),
		reads:      repositories.NewMemoryReadRepository(store),
		hasher:     &services.BcryptHasher{Cost: bcrypt.MinCost},
	}
	f.auth = services.NewAuthService(f.users, f.hasher, testJWTSecret, time.Hour, events)
	f.category = services.NewCategoryService(f.categories, f.books, events)
	f.book = services.NewBookService(f.books, f.categories, f.borrows, events)
	f.catalog = services.NewCatalogService(f.books)
	f.student = services.NewStudentService(f.users, f.borrows, f.hasher, events)
	f.reading = services.NewReadingService(f.books, f.borrows, f.reads, events)
	f.stats = services.NewStatsService(f.books, f.categories, f.users, f.borrows)
	return f
}

func (f *fixture) mustCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category, err := f.category.Create(context.Background(), adminSession, name)
	require.NoError(t, err)
	return category
}

func (f *fixture) mustBook(t *testing.T, title, author, categoryID string) *models.Book {
	t.Helper()
	book, err := f.book.Create(context.Background(), adminSession, services.BookInput{
		Title:      title,
		Author:     author,
		FileURL:    "http://x/" + strings.ReplaceAll(title, " ", "-") + ".pdf",
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return book
}

func (f *fixture) mustStudent(t *testing.T, name, email, password string) *models.User {
	t.Helper()
	user, err := f.student.Create(context.Background(), adminSession, services.StudentInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func sessionOf(user *models.User) *models.Session {
	return &models.Session{UserID: user.ID, Role: user.Role}
}

func intPtr(v int) *int {
	return &v
}
