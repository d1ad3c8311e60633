// Package service provides authentication business logic,
// delegating persistence to an AuthRepository and hashing to a PasswordHasher.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/gophauth/internal/common"
	"github.com/atinyakov/gophauth/internal/models"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new user and returns its id.
	// Returns common.ErrDuplicateUsername if the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	// FindByUsername returns the user with the given username or common.ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByID returns the user with the given id or common.ErrNotFound.
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// ValidationError reports a missing or malformed form field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DuplicateUsernameError is returned by Register when the username is taken.
type DuplicateUsernameError struct {
	Username string
}

func (e *DuplicateUsernameError) Error() string {
	return fmt.Sprintf("User %s is already registered.", e.Username)
}

// Unwrap lets callers match common.ErrDuplicateUsername.
func (e *DuplicateUsernameError) Unwrap() error { return common.ErrDuplicateUsername }

var (
	// ErrUsernameRequired is returned for an empty username.
	ErrUsernameRequired = &ValidationError{Message: "Username is required."}
	// ErrPasswordRequired is returned for an empty password.
	ErrPasswordRequired = &ValidationError{Message: "Password is required."}

	// ErrIncorrectUsername is returned by Login when no such user exists.
	// Together with ErrIncorrectPassword it lets a client tell registered
	// usernames apart.
	ErrIncorrectUsername = errors.New("Incorrect username")
	// ErrIncorrectPassword is returned by Login when the password does not match.
	ErrIncorrectPassword = errors.New("Incorrect password")
)

// Service implements registration and login.
type Service struct {
	// repo performs the data-layer operations.
	repo   AuthRepository
	hasher PasswordHasher
}

// NewAuthService constructs a new Service using the provided repository and hasher.
func NewAuthService(repo AuthRepository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register validates the credentials and creates a new user.
// It does not log the user in.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	if _, err := s.repo.CreateUser(ctx, username, hash); err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return &DuplicateUsernameError{Username: username}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login checks the credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrIncorrectUsername
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

// UserByID loads the user with the given id.
// Returns common.ErrNotFound if it does not exist.
func (s *Service) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}
