// Package smtp connects to the outgoing mail server.
package smtp

import (
	"context"
	"io"
)

// Client is the subset of *smtp.Client used to send one message.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface opens authenticated SMTP sessions.
type TransportInterface interface {
	Connect(ctx context.Context) (Client, error)
	// From is the envelope and header sender address.
	From() string
}
