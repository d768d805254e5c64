// Package storage defines the errors shared by the credential store
// implementations (Postgres in storage/repository, in-memory in storage/memory).
package storage

import "errors"

var (
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when an insert violates the unique email constraint.
	ErrUserExists = errors.New("user already exists")
)
