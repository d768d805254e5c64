// Package sender runs the notification worker: it consumes queued emails and
// delivers them over SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/techwatch-auth/internal/config"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/techwatch-auth/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("%s: rabbitmq url is required", op)
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.Delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(transport, logger),
		logger:        logger,
	}, nil
}

// drainTimeout bounds how long shutdown waits for in-flight sends.
const drainTimeout = 30 * time.Second

// Run consumes the email queue until ctx is done or the connection drops.
// Sends already started are finished before the channel is closed.
func (a *App) Run(ctx context.Context) error {
	sendCtx := context.WithoutCancel(ctx)
	handler := func(body []byte) error {
		return a.senderService.HandleMessage(sendCtx, body)
	}
	wait, err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.EmailQueue, handler, a.logger)
	if err != nil {
		a.logger.Error("failed to start email consumer", sl.Err(err))
		return err
	}
	a.logger.Info("consuming", slog.String("queue", rabbitmq.EmailQueue))

	closed := a.conn.NotifyClose(make(chan *amqp.Error, 1))
	var lost *amqp.Error
	select {
	case <-ctx.Done():
		a.logger.Info("notification sender shutting down gracefully")
	case lost = <-closed:
		if lost != nil {
			a.logger.Error("rabbitmq connection lost", slog.String("reason", lost.Reason))
		}
	}

	a.drain(wait)
	a.shutdown()
	if lost != nil {
		return lost
	}
	return nil
}

// drain waits for in-flight handlers for at most drainTimeout.
func (a *App) drain(wait func()) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		a.logger.Warn("in-flight emails did not finish before shutdown", slog.Duration("timeout", drainTimeout))
	}
}

func (a *App) shutdown() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
