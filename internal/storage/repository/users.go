package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/techwatch-auth/internal/models"
	"github.com/magabrotheeeer/techwatch-auth/internal/storage"
)

const userColumns = `uid, pseudo, email, password_hash, role, verified,
			      verification_code, password_reset_token, password_reset_at,
			      created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                       models.User
		role                    string
		verificationCode, token sql.NullString
		resetAt                 sql.NullTime
	)
	if err := row.Scan(&u.UUID, &u.Pseudo, &u.Email, &u.PasswordHash, &role, &u.Verified,
		&verificationCode, &token, &resetAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	if verificationCode.Valid {
		u.VerificationCode = &verificationCode.String
	}
	if token.Valid {
		u.PasswordResetToken = &token.String
	}
	if resetAt.Valid {
		u.PasswordResetAt = &resetAt.Time
	}
	return &u, nil
}

func notFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func expectOneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return nil
}

// CreateUser inserts a new user and returns its id.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.repository.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	var newID string
	query := `INSERT INTO users (uid, pseudo, email, password_hash, role, verified, verification_code)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UUID, user.Pseudo, user.Email, user.PasswordHash, string(user.Role), user.Verified,
		user.VerificationCode).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail returns the user with the given email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.repository.GetUserByEmail"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// GetUserByID returns the user with the given id.
func (s *Storage) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.repository.GetUserByID"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// SetVerificationCode replaces the verification digest; nil clears it.
func (s *Storage) SetVerificationCode(ctx context.Context, userUID string, code *string) error {
	const op = "storage.repository.SetVerificationCode"

	query := `UPDATE users
			  SET verification_code = $1, updated_at = NOW()
			  WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, code, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}

// ConsumeVerificationCode marks the owner of code as verified and clears the
// digest in one statement, so a code can be used once.
func (s *Storage) ConsumeVerificationCode(ctx context.Context, code string) (*models.User, error) {
	const op = "storage.repository.ConsumeVerificationCode"

	query := `UPDATE users
			  SET verified = TRUE, verification_code = NULL, updated_at = NOW()
			  WHERE verification_code = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// SetPasswordResetToken replaces the reset digest and its expiry.
func (s *Storage) SetPasswordResetToken(ctx context.Context, userUID string, token *string, expiresAt *time.Time) error {
	const op = "storage.repository.SetPasswordResetToken"

	query := `UPDATE users
			  SET password_reset_token = $1, password_reset_at = $2, updated_at = NOW()
			  WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, token, expiresAt, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}

// GetUserByPasswordResetToken returns the owner of token if it expires after now.
func (s *Storage) GetUserByPasswordResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	const op = "storage.repository.GetUserByPasswordResetToken"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE password_reset_token = $1 AND password_reset_at > $2`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, token, now))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// UpdatePassword stores the new hash and clears the reset fields if the user
// still holds token.
func (s *Storage) UpdatePassword(ctx context.Context, userUID, token, passwordHash string) error {
	const op = "storage.repository.UpdatePassword"

	query := `UPDATE users
			  SET password_hash = $1,
			      password_reset_token = NULL,
			      password_reset_at = NULL,
			      updated_at = NOW()
			  WHERE uid = $2 AND password_reset_token = $3`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, userUID, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, res)
}
