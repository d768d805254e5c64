package services

import (
	"errors"
	"fmt"
)

// Domain failures returned by AuthService. Handlers map them to HTTP statuses
// with errors.Is; anything else is an internal error.
var (
	ErrConflict           = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account not verified")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrValidation         = errors.New("validation failed")
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// ErrPasswordTooLong is an ErrValidation for passwords bcrypt cannot hash.
var ErrPasswordTooLong = fmt.Errorf("%w: password exceeds 72 bytes", ErrValidation)
