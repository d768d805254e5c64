// Package services delivers the verification and password reset emails over SMTP.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/techwatch-auth/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/smtp"
	"github.com/magabrotheeeer/techwatch-auth/internal/models"
)

// Subjects of the outgoing emails.
const (
	VerificationSubject  = "Your account verification code"
	PasswordResetSubject = "Your password reset token (valid for 10min)"
)

// ErrUnknownKind is returned for a queued message with an unsupported kind.
var ErrUnknownKind = errors.New("unknown email kind")

// SenderService renders and sends emails through an SMTP transport.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService creates a SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendVerificationCode mails the email verification link to user.
func (s *SenderService) SendVerificationCode(ctx context.Context, user models.User, url string) error {
	body := fmt.Sprintf("Hello %s,\r\n\r\nPlease verify your email address by following this link:\r\n%s\r\n\r\nIf you did not create an account, ignore this email.",
		user.Pseudo, url)
	return s.sendEmail(ctx, user.Email, VerificationSubject, body)
}

// SendPasswordResetToken mails the password reset link to user.
func (s *SenderService) SendPasswordResetToken(ctx context.Context, user models.User, url string) error {
	body := fmt.Sprintf("Hello %s,\r\n\r\nA password reset was requested for your account. Follow this link to choose a new password:\r\n%s\r\n\r\nIf you did not request it, ignore this email.",
		user.Pseudo, url)
	return s.sendEmail(ctx, user.Email, PasswordResetSubject, body)
}

// HandleMessage sends the email described by a queued models.EmailMessage.
// Undecodable messages and unknown kinds are wrapped with rabbitmq.ErrDiscard.
func (s *SenderService) HandleMessage(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleMessage"

	var msg models.EmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w: %w", op, rabbitmq.ErrDiscard, err)
	}

	user := models.User{Email: msg.To, Pseudo: msg.Pseudo}
	switch msg.Kind {
	case models.EmailVerification:
		return s.SendVerificationCode(ctx, user, msg.URL)
	case models.EmailPasswordReset:
		return s.SendPasswordResetToken(ctx, user, msg.URL)
	default:
		return fmt.Errorf("%s: %w: %w %q", op, rabbitmq.ErrDiscard, ErrUnknownKind, msg.Kind)
	}
}

func (s *SenderService) sendEmail(ctx context.Context, to, subject, bodyText string) error {
	const op = "services.sender.sendEmail"
	log := s.log.With(slog.String("op", op))

	if to == "" || strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("%s: invalid recipient", op)
	}

	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		log.Error("failed to connect to SMTP server", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(to); err != nil {
		log.Error("failed to set RCPT TO", slog.String("recipient", to), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	wc, err := client.Data()
	if err != nil {
		log.Error("failed to get Data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		log.Error("failed to write email body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		log.Error("failed to close Data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email sent successfully", slog.String("subject", subject))
	return nil
}
