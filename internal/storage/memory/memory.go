// Package memory implements the credential store in process memory. It
// enforces the same uniqueness and conditional-update rules as the Postgres
// store and backs the service tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/magabrotheeeer/techwatch-auth/internal/lib/onetime"
	"github.com/magabrotheeeer/techwatch-auth/internal/models"
	"github.com/magabrotheeeer/techwatch-auth/internal/storage"
)

// Storage keeps users keyed by id with an email index.
type Storage struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

// New creates an empty Storage.
func New() *Storage {
	return &Storage{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func clone(u *models.User) *models.User {
	c := *u
	c.VerificationCode = copyString(u.VerificationCode)
	c.PasswordResetToken = copyString(u.PasswordResetToken)
	c.PasswordResetAt = copyTime(u.PasswordResetAt)
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func matches(stored *string, digest string) bool {
	return stored != nil && onetime.Equal(*stored, digest)
}

// CreateUser stores a new user.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.memory.CreateUser"
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return "", fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}
	if _, ok := s.users[user.UUID]; ok || user.UUID == "" {
		return "", fmt.Errorf("%s: invalid or duplicate id", op)
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now

	s.users[user.UUID] = clone(&user)
	s.byEmail[user.Email] = user.UUID
	return user.UUID, nil
}

// GetUserByEmail returns the user with the given email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.memory.GetUserByEmail"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return clone(s.users[id]), nil
}

// GetUserByID returns the user with the given id.
func (s *Storage) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.memory.GetUserByID"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userUID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return clone(u), nil
}

// SetVerificationCode replaces the verification digest of a user.
func (s *Storage) SetVerificationCode(ctx context.Context, userUID string, code *string) error {
	const op = "storage.memory.SetVerificationCode"
	return s.update(ctx, op, userUID, func(u *models.User) {
		u.VerificationCode = copyString(code)
	})
}

// ConsumeVerificationCode verifies the owner of code and clears the digest.
func (s *Storage) ConsumeVerificationCode(ctx context.Context, code string) (*models.User, error) {
	const op = "storage.memory.ConsumeVerificationCode"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if matches(u.VerificationCode, code) {
			u.Verified = true
			u.VerificationCode = nil
			u.UpdatedAt = s.now()
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
}

// SetPasswordResetToken replaces the reset digest and expiry of a user.
func (s *Storage) SetPasswordResetToken(ctx context.Context, userUID string, token *string, expiresAt *time.Time) error {
	const op = "storage.memory.SetPasswordResetToken"
	if (token == nil) != (expiresAt == nil) {
		return fmt.Errorf("%s: reset token and expiry must be set together", op)
	}
	return s.update(ctx, op, userUID, func(u *models.User) {
		u.PasswordResetToken = copyString(token)
		u.PasswordResetAt = copyTime(expiresAt)
	})
}

// GetUserByPasswordResetToken returns the owner of an unexpired reset token.
func (s *Storage) GetUserByPasswordResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	const op = "storage.memory.GetUserByPasswordResetToken"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if matches(u.PasswordResetToken, token) && u.PasswordResetAt != nil && u.PasswordResetAt.After(now) {
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
}

// UpdatePassword sets a new hash and clears the reset fields when the user
// still holds token.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, token, passwordHash string) error {
	const op = "storage.memory.UpdatePassword"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userUID]
	if !ok || !matches(u.PasswordResetToken, token) {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	u.PasswordHash = passwordHash
	u.PasswordResetToken = nil
	u.PasswordResetAt = nil
	u.UpdatedAt = s.now()
	return nil
}

// SetRole changes the role of a user. It exists for seeding admins.
func (s *Storage) SetRole(ctx context.Context, userUID string, role models.Role) error {
	const op = "storage.memory.SetRole"
	return s.update(ctx, op, userUID, func(u *models.User) {
		u.Role = role
	})
}

// DeleteUser removes a user.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.memory.DeleteUser"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userUID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	delete(s.byEmail, u.Email)
	delete(s.users, userUID)
	return nil
}

// Len returns the number of stored users.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Storage) update(ctx context.Context, op, userUID string, fn func(*models.User)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userUID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	fn(u)
	u.UpdatedAt = s.now()
	return nil
}
