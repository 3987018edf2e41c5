package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// PostgresStorage implements Storage against a PostgreSQL database.
// The schema is created by db.InitPostgres.
type PostgresStorage struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

var _ Storage = (*PostgresStorage)(nil)

// NewPostgresStorage creates a PostgresStorage using the given connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{DB: db}
}

// Ping verifies the database connection is alive.
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return mapError("ping", s.DB.PingContext(ctx))
}

// Close closes the underlying connection pool.
func (s *PostgresStorage) Close() error {
	return s.DB.Close()
}

const (
	pqUniqueViolation  = "23505"
	pqConnectionClass  = "08"
	pqAdminShutdown    = "57P01"
	pqCrashShutdown    = "57P02"
	pqCannotConnectNow = "57P03"
)

// mapError translates driver errors into the package sentinels so callers
// can tell a missing row, a duplicate key and an unreachable database apart.
// The original error stays in the chain.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		case pqErr.Code.Class() == pqConnectionClass,
			pqErr.Code == pqAdminShutdown,
			pqErr.Code == pqCrashShutdown,
			pqErr.Code == pqCannotConnectNow:
			return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
