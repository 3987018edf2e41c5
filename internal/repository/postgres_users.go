package repository

import (
	"cmp"
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/atinyakov/stoneworks/internal/models"
)

// GetUser fetches a user by id. It returns (nil, nil) when no user matches.
func (s *PostgresStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(ctx, "get user",
		`SELECT id, username, password, role FROM users WHERE id = $1`, id)
}

// GetUserByUsername fetches a user by login name. It returns (nil, nil)
// when no user matches.
func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(ctx, "get user by username",
		`SELECT id, username, password, role FROM users WHERE username = $1`, username)
}

func (s *PostgresStorage) scanUser(ctx context.Context, op, query string, arg string) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(op, err)
	}
	return &u, nil
}

// CreateUser inserts a new user. A taken username yields ErrConflict.
func (s *PostgresStorage) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	u := models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		Role:         cmp.Or(in.Role, models.RolePublic),
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (id, username, password, role) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, u.PasswordHash, u.Role,
	)
	if err != nil {
		return nil, mapError("create user", err)
	}
	return &u, nil
}

// UpdateUser overwrites the non-nil fields of upd. An unknown id yields
// ErrNotFound, a taken username ErrConflict.
func (s *PostgresStorage) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, `
		UPDATE users SET
			username = COALESCE($2, username),
			password = COALESCE($3, password),
			role = COALESCE($4, role)
		WHERE id = $1
		RETURNING id, username, password, role
	`, id, upd.Username, upd.PasswordHash, upd.Role).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	if err != nil {
		return nil, mapError("update user", err)
	}
	return &u, nil
}
