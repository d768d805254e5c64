// Package repository implements the credential store on PostgreSQL through
// the pgx driver for database/sql.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Registers the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage wraps the PostgreSQL connection pool.
type Storage struct {
	DB *sql.DB
}

// New opens a connection pool and checks that the server answers.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.repository.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the pool.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady checks that the users table exists.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("required table users: %w", err)
	}
	if !exists {
		return errors.New("required table users missing")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
