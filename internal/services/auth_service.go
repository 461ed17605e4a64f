package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pustaka/internal/models"
	"pustaka/internal/repositories"
	"pustaka/pkg/metrics"

	"github.com/dgrijalva/jwt-go"
)

// Claims is the JWT payload of a session token.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.StandardClaims
}

// RegisterInput is a self-registration request. It follows the same rules
// as admin-created students.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService handles credential checks and session tokens.
type AuthService struct {
	userRepo      repositories.UserRepository
	hasher        PasswordHasher
	jwtSecret     []byte
	tokenDuration time.Duration
	events        *Events
	now           func() time.Time
}

// NewAuthService creates a new AuthService. Tokens are valid for tokenDuration.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, jwtSecret string, tokenDuration time.Duration, events *Events) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		hasher:        hasher,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
		events:        events,
		now:           time.Now,
	}
}

// Login verifies the credentials and returns a signed session token.
// Unknown email and wrong password produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, invalid("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_, _ = s.hasher.Verify(password, unknownAccountHash())
			metrics.RecordLogin(false)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		metrics.RecordLogin(false)
		return "", nil, ErrInvalidCredentials
	}

	token, session, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	metrics.RecordLogin(true)
	return token, session, nil
}

func (s *AuthService) issueToken(user *models.User) (string, *models.Session, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: user.ID,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, &models.Session{
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: time.Unix(expiresAt.Unix(), 0),
	}, nil
}

// ValidateToken checks the token signature and expiry and returns the
// session it carries. The credential store is not consulted.
func (s *AuthService) ValidateToken(tokenString string) (*models.Session, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() || claims.ExpiresAt == 0 {
		return nil, ErrInvalidToken
	}

	return &models.Session{
		UserID:    claims.UserID,
		Role:      claims.Role,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}

// CurrentUser loads the account behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, session *models.Session) (*models.User, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("user", session.UserID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Register creates a STUDENT account for an anonymous caller.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	user, err := createUser(ctx, s.userRepo, s.hasher, StudentInput(input), models.RoleStudent)
	if err != nil {
		return nil, err
	}
	s.events.emit("student.created", &models.Session{UserID: user.ID, Role: user.Role}, user.ID, user)
	return user, nil
}

// EnsureAdmin creates an ADMIN account unless one with that email already
// exists. The bool reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	existing, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			return nil, false, conflict("email %s belongs to a non-admin account", existing.Email)
		}
		return existing, false, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up admin: %w", err)
	}

	user, err := createUser(ctx, s.userRepo, s.hasher, StudentInput{Name: name, Email: email, Password: password}, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
