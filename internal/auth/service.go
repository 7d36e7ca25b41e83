package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/database/users"
	"github.com/mrlokans/storyshelf/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrAuthRequired     = errors.New("authentication required")
	ErrAdminRequired    = errors.New("admin access required")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

// UserRepository defines the user data access the service needs.
type UserRepository interface {
	CreateUser(user *entities.User) error
	GetUserByID(id uint) (*entities.User, error)
	GetUserByUsername(username string) (*entities.User, error)
	GetUserByTokenHash(hash string) (*entities.User, error)
	SetTokenHash(userID uint, hash string) error
	TouchLastLogin(userID uint) error
	CountUsers() (int64, error)
}

// Service handles authentication and user management.
type Service struct {
	repo   UserRepository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo UserRepository, cfg config.Auth) *Service {
	return &Service{repo: repo, config: cfg}
}

// CreateUser creates a new user with password authentication.
func (s *Service) CreateUser(username, password string, isAdmin bool) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	_, err := s.repo.GetUserByUsername(username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, users.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	}
	if err := s.repo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{"username": username, "is_admin": isAdmin}).Info("User created")
	return user, nil
}

// Authenticate validates credentials and returns the user.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.repo.GetUserByUsername(username)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}

	if err := s.repo.TouchLastLogin(user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.repo.GetUserByID(id)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ValidateToken checks a plaintext API token and returns its owner.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.repo.GetUserByTokenHash(HashToken(token))
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

// GenerateToken creates a new API token for a user, replacing any previous one.
// Only the hash is stored; the plaintext is returned once.
func (s *Service) GenerateToken(userID uint) (string, error) {
	if _, err := s.GetUserByID(userID); err != nil {
		return "", err
	}
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.repo.SetTokenHash(userID, hash); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	return plaintext, nil
}

// RevokeToken removes a user's API token.
func (s *Service) RevokeToken(userID uint) error {
	if err := s.repo.SetTokenHash(userID, ""); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.repo.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}
