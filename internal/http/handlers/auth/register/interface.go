package register

import "context"

// Service registers new accounts.
type Service interface {
	Register(ctx context.Context, pseudo, email, password string) error
}
