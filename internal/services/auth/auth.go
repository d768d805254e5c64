// Package services contains the authentication and credential lifecycle logic:
// registration, email verification, login, admin login, password reset and
// access token resolution.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/techwatch-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/onetime"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/password"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	"github.com/magabrotheeeer/techwatch-auth/internal/models"
	"github.com/magabrotheeeer/techwatch-auth/internal/storage"
)

// DefaultResetTokenTTL is the password reset window used when Options leaves it unset.
const DefaultResetTokenTTL = 10 * time.Minute

// UserRepository is the credential store contract.
type UserRepository interface {
	// CreateUser inserts user and returns its id. A duplicate email yields storage.ErrUserExists.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail returns the account with the given normalized email or storage.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns the account with the given id or storage.ErrUserNotFound.
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)

	// SetVerificationCode replaces the verification digest; nil clears it.
	SetVerificationCode(ctx context.Context, userUID string, code *string) error

	// ConsumeVerificationCode marks the owner of code as verified and clears
	// the digest in the same update. No owner yields storage.ErrUserNotFound.
	ConsumeVerificationCode(ctx context.Context, code string) (*models.User, error)

	// SetPasswordResetToken replaces the reset digest and its expiry together.
	SetPasswordResetToken(ctx context.Context, userUID string, token *string, expiresAt *time.Time) error

	// GetUserByPasswordResetToken returns the owner of token when its expiry is after now.
	GetUserByPasswordResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)

	// UpdatePassword stores passwordHash and clears the reset fields if the
	// account still holds token. Otherwise it returns storage.ErrUserNotFound.
	UpdatePassword(ctx context.Context, userUID, token, passwordHash string) error
}

// Mailer delivers the links that carry one-time codes.
type Mailer interface {
	SendVerificationCode(ctx context.Context, user models.User, url string) error
	SendPasswordResetToken(ctx context.Context, user models.User, url string) error
}

// Options holds the static settings of AuthService.
type Options struct {
	// ClientURL is the frontend base URL used to build email links.
	ClientURL string
	// ResetTokenTTL is how long a password reset token stays valid.
	ResetTokenTTL time.Duration
}

// Option customizes an AuthService.
type Option func(*AuthService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		s.now = now
	}
}

// AuthService coordinates the credential store, the token codec, the
// one-time code generator and the mailer.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	mailer   Mailer
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, mailer Mailer, opts Options, log *slog.Logger, options ...Option) *AuthService {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = DefaultResetTokenTTL
	}
	opts.ClientURL = strings.TrimRight(opts.ClientURL, "/")
	s := &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		mailer:   mailer,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account and mails its verification link.
//
// When the email cannot be sent the stored verification digest is cleared and
// ErrEmailDelivery is returned; the account itself is kept.
func (s *AuthService) Register(ctx context.Context, pseudo, email, rawPassword string) error {
	const op = "services.auth.Register"
	log := s.log.With(slog.String("op", op))

	if err := password.CheckLength(rawPassword); err != nil {
		return ErrPasswordTooLong
	}

	email = NormalizeEmail(email)
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrConflict
	case !errors.Is(err, storage.ErrUserNotFound):
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	code, digest, err := onetime.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UUID:             uuid.NewString(),
		Pseudo:           pseudo,
		Email:            email,
		PasswordHash:     hashed,
		Role:             models.RoleUser,
		Verified:         false,
		VerificationCode: &digest,
	}
	userUID, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return ErrConflict
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	user.UUID = userUID

	url := s.opts.ClientURL + "/verification-email/" + code
	if err := s.mailer.SendVerificationCode(ctx, user, url); err != nil {
		log.Error("failed to send verification email", slog.String("user_uid", userUID), sl.Err(err))
		if clearErr := s.users.SetVerificationCode(ctx, userUID, nil); clearErr != nil {
			log.Error("failed to clear verification code", slog.String("user_uid", userUID), sl.Err(clearErr))
		}
		return ErrEmailDelivery
	}

	log.Info("user registered", slog.String("user_uid", userUID))
	return nil
}

// VerifyEmail consumes a verification code. Unknown and already used codes
// both yield ErrInvalidToken.
func (s *AuthService) VerifyEmail(ctx context.Context, rawCode string) error {
	const op = "services.auth.VerifyEmail"

	user, err := s.users.ConsumeVerificationCode(ctx, onetime.Digest(rawCode))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("email verified", slog.String("op", op), slog.String("user_uid", user.UUID))
	return nil
}

// Login checks the credentials of a verified account and returns an access token.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.lookup(ctx, op, email)
	if err != nil {
		return "", err
	}
	if !user.Verified {
		return "", ErrNotVerified
	}
	return s.issue(op, user, rawPassword)
}

// AdminLogin is Login restricted to admins. The role is checked before the
// verification state and the password.
func (s *AuthService) AdminLogin(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.AdminLogin"

	user, err := s.lookup(ctx, op, email)
	if err != nil {
		return "", err
	}
	if !user.IsAdmin() {
		return "", ErrForbidden
	}
	if !user.Verified {
		return "", ErrNotVerified
	}
	return s.issue(op, user, rawPassword)
}

func (s *AuthService) lookup(ctx context.Context, op, email string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *AuthService) issue(op string, user *models.User, rawPassword string) (string, error) {
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.UUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ForgotPassword mails a reset link to a verified account.
//
// An unknown email returns nil so the caller can answer with the same message
// as for a real account. An unverified account returns ErrForbidden.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "services.auth.ForgotPassword"
	log := s.log.With(slog.String("op", op))

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if !user.Verified {
		return ErrForbidden
	}

	token, digest, err := onetime.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	expiresAt := s.now().Add(s.opts.ResetTokenTTL)
	if err := s.users.SetPasswordResetToken(ctx, user.UUID, &digest, &expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	url := s.opts.ClientURL + "/password/reset/" + token
	if err := s.mailer.SendPasswordResetToken(ctx, *user, url); err != nil {
		log.Error("failed to send password reset email", slog.String("user_uid", user.UUID), sl.Err(err))
		if clearErr := s.users.SetPasswordResetToken(ctx, user.UUID, nil, nil); clearErr != nil {
			log.Error("failed to clear password reset token", slog.String("user_uid", user.UUID), sl.Err(clearErr))
		}
		return ErrEmailDelivery
	}

	log.Info("password reset requested", slog.String("user_uid", user.UUID))
	return nil
}

// ResetPassword replaces the password of the account holding rawToken.
// Unknown, expired and already used tokens all yield ErrInvalidToken.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword, newPasswordConfirm string) error {
	const op = "services.auth.ResetPassword"

	if newPassword != newPasswordConfirm {
		return ErrValidation
	}
	if err := password.CheckLength(newPassword); err != nil {
		return ErrPasswordTooLong
	}

	digest := onetime.Digest(rawToken)
	user, err := s.users.GetUserByPasswordResetToken(ctx, digest, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePassword(ctx, user.UUID, digest, hashed); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset", slog.String("op", op), slog.String("user_uid", user.UUID))
	return nil
}

// Authenticate resolves the account behind an access token. Invalid tokens
// and deleted accounts both yield ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	userUID, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Session is Authenticate for pages that are public but personalized:
// an empty token yields (nil, nil).
func (s *AuthService) Session(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.Authenticate(ctx, token)
}
