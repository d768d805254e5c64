package login

import "context"

// Service checks credentials and issues access tokens.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
}
