// Package repository provides persistence implementations for authentication services.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/atinyakov/gophauth/internal/common"
	"github.com/atinyakov/gophauth/internal/models"
)

// PostgresAuthRepository stores user credentials in a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a new user and returns the id assigned by the database.
// Uniqueness of the username is left to the table constraint, so two
// concurrent registrations cannot both succeed; the loser receives
// common.ErrDuplicateUsername.
func (s *PostgresAuthRepository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id`,
		username, passwordHash,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, common.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// FindByUsername returns the user with exactly the given username,
// or common.ErrNotFound.
func (s *PostgresAuthRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.DB.QueryRowContext(
		ctx,
		`SELECT id, username, password FROM users WHERE username = $1`,
		username,
	)
	return scanUser(row)
}

// FindByID returns the user with the given id, or common.ErrNotFound.
func (s *PostgresAuthRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.DB.QueryRowContext(
		ctx,
		`SELECT id, username, password FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}
