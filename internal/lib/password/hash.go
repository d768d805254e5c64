// Package password hashes and checks account passwords with bcrypt.
//
// bcrypt reads at most MaxBytes of input, so CheckLength guards every
// password before it is hashed. Length is counted in bytes, not characters.
package password

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator"
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for every stored hash.
const Cost = 12

// MaxBytes is the longest password bcrypt accepts.
const MaxBytes = 72

// ValidatorTag names the struct tag checked by ValidateBytes.
const ValidatorTag = "bcrypt_bytes"

// ErrTooLong is returned for passwords longer than MaxBytes.
var ErrTooLong = errors.New("password exceeds 72 bytes")

// CheckLength rejects passwords bcrypt cannot hash.
func CheckLength(password string) error {
	if len(password) > MaxBytes {
		return ErrTooLong
	}
	return nil
}

// ValidateBytes is a validator.Func for string fields holding a password.
func ValidateBytes(fl validator.FieldLevel) bool {
	return CheckLength(fl.Field().String()) == nil
}

// GetHash returns the bcrypt hash of password.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	if err := CheckLength(password); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash returns nil when candidate matches hash.
func CompareHash(hash, candidate string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
