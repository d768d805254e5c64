package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/magabrotheeeer/techwatch-auth/internal/config"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
)

// ErrNoStartTLS is returned when the server does not offer STARTTLS.
var ErrNoStartTLS = errors.New("smtp server does not support STARTTLS")

// Transport dials the configured server, upgrades to TLS and authenticates.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

type smtpClientWrapper struct {
	client *smtp.Client
}

func (w *smtpClientWrapper) Mail(from string) error {
	return w.client.Mail(from)
}

func (w *smtpClientWrapper) Rcpt(to string) error {
	return w.client.Rcpt(to)
}

func (w *smtpClientWrapper) Data() (io.WriteCloser, error) {
	return w.client.Data()
}

func (w *smtpClientWrapper) Quit() error {
	return w.client.Quit()
}

func (w *smtpClientWrapper) Close() error {
	return w.client.Close()
}

// NewTransport creates a Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect opens a session. The dial honours ctx and SMTP.SMTPTimeout.
func (t *Transport) Connect(ctx context.Context) (Client, error) {
	const op = "lib.smtp.Connect"
	log := t.log.With(slog.String("op", op))

	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)
	dialer := net.Dialer{Timeout: t.cfg.SMTPTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fail := func(err error) (Client, error) {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		log.Error("SMTP server does not support STARTTLS")
		return fail(ErrNoStartTLS)
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		log.Error("failed to start TLS", sl.Err(err))
		return fail(err)
	}

	if t.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
		if err = client.Auth(auth); err != nil {
			log.Error("smtp auth failed", sl.Err(err))
			return fail(err)
		}
	}

	return &smtpClientWrapper{client: client}, nil
}

// From returns SMTPFrom, falling back to SMTPUser.
func (t *Transport) From() string {
	if t.cfg.SMTPFrom != "" {
		return t.cfg.SMTPFrom
	}
	return t.cfg.SMTPUser
}
