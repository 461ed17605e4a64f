package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
)

// StudentInput is the payload for creating a student.
type StudentInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// StudentUpdate changes a student's profile. An empty Password keeps the
// current one.
type StudentUpdate struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
}

// StudentDetail is a student together with their borrow history.
type StudentDetail struct {
	models.User
	Borrows []models.Borrow `json:"borrows"`
}

// StudentService manages STUDENT accounts. Every operation requires ADMIN.
type StudentService struct {
	users   repositories.UserRepository
	borrows repositories.BorrowRepository
	hasher  PasswordHasher
	events  *Events
}

// NewStudentService creates a new StudentService.
func NewStudentService(users repositories.UserRepository, borrows repositories.BorrowRepository, hasher PasswordHasher, events *Events) *StudentService {
	return &StudentService{users: users, borrows: borrows, hasher: hasher, events: events}
}

// List returns all students.
func (s *StudentService) List(ctx context.Context, actor *models.Session) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	students, err := s.users.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// Get returns a student with borrow history, newest first.
func (s *StudentService) Get(ctx context.Context, actor *models.Session, id string) (*StudentDetail, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	borrows, err := s.borrows.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrows of student %s: %w", id, err)
	}
	return &StudentDetail{User: *student, Borrows: borrows}, nil
}

// Create hashes the password and stores a new student.
func (s *StudentService) Create(ctx context.Context, actor *models.Session, input StudentInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := createUser(ctx, s.users, s.hasher, input, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	s.events.emit("student.created", actor, user.ID, user)
	return user, nil
}

// Update changes name, email and optionally the password of a student.
func (s *StudentService) Update(ctx context.Context, actor *models.Session, id string, input StudentUpdate) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	student, err := s.getStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != student.Email {
		other, err := s.users.GetByEmail(ctx, input.Email)
		switch {
		case err == nil && other.ID != id:
			return nil, conflict("email %s is already registered", input.Email)
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	student.Name = input.Name
	student.Email = input.Email
	if input.Password != "" {
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		student.PasswordHash = hash
	}

	if err := s.users.Update(ctx, student); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, conflict("email %s is already registered", input.Email)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, notFound("student", id)
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	s.events.emit("student.updated", actor, student.ID, student)
	return student, nil
}

// Delete removes a student. It is refused while the student has books
// that have not been returned.
func (s *StudentService) Delete(ctx context.Context, actor *models.Session, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.getStudent(ctx, id); err != nil {
		return err
	}

	active, err := s.borrows.CountActiveByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count active borrows: %w", err)
	}
	if active > 0 {
		return &DependentsError{Resource: "student", Dependent: "active borrow", Count: active}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("student", id)
		}
		return fmt.Errorf("failed to delete student: %w", err)
	}
	s.events.emit("student.deleted", actor, id, nil)
	return nil
}

// getStudent treats admin accounts as absent from the student resource.
func (s *StudentService) getStudent(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("student", id)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if user.Role != models.RoleStudent {
		return nil, notFound("student", id)
	}
	return user, nil
}

// createUser validates input, hashes the password and inserts the user.
// Nothing is written unless hashing succeeds.
func createUser(ctx context.Context, repo repositories.UserRepository, hasher PasswordHasher, input StudentInput, role models.Role) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if _, err := repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, conflict("email %s is already registered", input.Email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("email %s is already registered", input.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
