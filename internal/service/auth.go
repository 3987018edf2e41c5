// Package service holds the business logic between the HTTP handlers and
// the storage layer: credential checks, profile changes, first-run seeding
// and image uploads.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/stoneworks/internal/auth"
	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/repository"
)

// ErrInvalidCredentials is returned when a username or password does not match.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// GetUserByUsername returns (nil, nil) when no user matches.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// CreateUser stores a user whose password is already hashed.
	CreateUser(ctx context.Context, in models.UserInput) (*models.User, error)
	// UpdateUser overwrites the set fields of upd.
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

// AuthService verifies credentials and manages account changes.
type AuthService struct {
	// repo performs the data-layer operations.
	repo UserRepository
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Authenticate returns the user matching username and password, or
// ErrInvalidCredentials. The error does not reveal which part was wrong.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("check password for %q: %w", username, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpdateProfile changes the username and/or password of user id. The
// password is hashed before it is stored. credentialsChanged reports
// whether the caller must sign in again.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, p models.ProfileUpdate) (u *models.User, credentialsChanged bool, err error) {
	var upd models.UserUpdate
	if p.Username != nil {
		upd.Username = p.Username
	}
	if p.Password != nil {
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}

	updated, err := s.repo.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, false, err
	}
	return updated, upd.Username != nil || upd.PasswordHash != nil, nil
}

// Seed creates an admin account with the given credentials unless the
// username already exists. Losing a race with another seeder counts as
// success. created reports whether this call inserted the user.
func (s *AuthService) Seed(ctx context.Context, username, password string) (created bool, err error) {
	existing, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("look up %q: %w", username, err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	_, err = s.repo.CreateUser(ctx, models.UserInput{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if errors.Is(err, repository.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create %q: %w", username, err)
	}
	return true, nil
}
