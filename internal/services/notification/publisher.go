// Package notification queues emails on RabbitMQ for the notification worker.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/techwatch-auth/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/techwatch-auth/internal/models"
)

// Publisher implements the auth service mailer by publishing
// models.EmailMessage values. A failed publish is reported as a failed send.
type Publisher struct {
	ch  rabbitmq.Channel
	log *slog.Logger
}

// NewPublisher creates a Publisher on a channel set up with rabbitmq.SetupChannel.
func NewPublisher(ch rabbitmq.Channel, log *slog.Logger) *Publisher {
	return &Publisher{ch: ch, log: log}
}

// SendVerificationCode queues the verification email.
func (p *Publisher) SendVerificationCode(ctx context.Context, user models.User, url string) error {
	return p.publish(ctx, models.EmailMessage{
		Kind:   models.EmailVerification,
		To:     user.Email,
		Pseudo: user.Pseudo,
		URL:    url,
	})
}

// SendPasswordResetToken queues the password reset email.
func (p *Publisher) SendPasswordResetToken(ctx context.Context, user models.User, url string) error {
	return p.publish(ctx, models.EmailMessage{
		Kind:   models.EmailPasswordReset,
		To:     user.Email,
		Pseudo: user.Pseudo,
		URL:    url,
	})
}

func (p *Publisher) publish(ctx context.Context, msg models.EmailMessage) error {
	const op = "services.notification.publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := rabbitmq.PublishMessage(p.ch, rabbitmq.Exchange, rabbitmq.EmailRoutingKey, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.log.Debug("email queued", slog.String("op", op), slog.String("kind", string(msg.Kind)))
	return nil
}
