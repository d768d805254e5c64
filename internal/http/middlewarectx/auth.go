// Package middlewarectx contains the HTTP middleware of the API: session
// authentication, the admin gate, rate limiting and request metrics.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/cookies"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	"github.com/magabrotheeeer/techwatch-auth/internal/models"
	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
)

// Key is the type of request context keys set by this package.
type Key string

// CurrentUser holds the authenticated *models.User.
const CurrentUser Key = "current_user"

// Messages of the 401 answers.
const (
	MsgNotLoggedIn    = "You are not logged in"
	MsgInvalidSession = "Invalid token or session has expired"
	MsgNotAuthorized  = "You are not authorized to access"
)

// Authenticator resolves an access token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// BearerToken returns the token from the Authorization header, falling back
// to the access token cookie. It returns "" when neither is present.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); token != "" {
			return token
		}
	}
	return cookies.Token(r)
}

// JWTMiddleware requires a valid access token and stores the resolved user
// in the request context under CurrentUser.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := BearerToken(r)
			if token == "" {
				log.Debug("no access token")
				response.RenderFail(w, r, http.StatusUnauthorized, MsgNotLoggedIn)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, services.ErrUnauthenticated) {
					log.Error("failed to authenticate", sl.Err(err))
					response.RenderInternal(w, r)
					return
				}
				log.Info("rejected access token", sl.Err(err))
				response.RenderFail(w, r, http.StatusUnauthorized, MsgInvalidSession)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// AdminOnly lets through requests whose authenticated user has the admin
// role. It must run after JWTMiddleware.
func AdminOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsAdmin() {
				log.Info("admin route refused",
					slog.String("op", "middlewarectx.AdminOnly"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				response.RenderFail(w, r, http.StatusUnauthorized, MsgNotAuthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the user stored by JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CurrentUser).(*models.User)
	return user, ok && user != nil
}

// WithUser returns a copy of ctx carrying user, as JWTMiddleware does.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, CurrentUser, user)
}
