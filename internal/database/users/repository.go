// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByTokenHash(hash)
package users

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/storyshelf/internal/entities"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user record.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	return r.first(r.db.Where("id = ?", id), &user)
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	return r.first(r.db.Where("username = ?", username), &user)
}

// GetUserByTokenHash retrieves a user by the SHA-256 hash of their API token.
func (r *Repository) GetUserByTokenHash(hash string) (*entities.User, error) {
	if hash == "" {
		return nil, ErrUserNotFound
	}
	var user entities.User
	return r.first(r.db.Where("token_hash = ?", hash), &user)
}

// SetTokenHash stores (or clears, with "") the API token hash of a user.
func (r *Repository) SetTokenHash(userID uint, hash string) error {
	return r.db.Model(&entities.User{}).Where("id = ?", userID).Update("token_hash", hash).Error
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(userID uint) error {
	return r.db.Model(&entities.User{}).Where("id = ?", userID).Update("last_login_at", time.Now()).Error
}

// CountUsers returns the number of user accounts.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) first(query *gorm.DB, user *entities.User) (*entities.User, error) {
	err := query.First(user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
