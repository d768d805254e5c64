package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/cookies"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/auth/session"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/auth/verifyemail"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/users/profile"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/techwatch-auth/internal/metrics"
	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
)

// Router holds what RegisterRoutes needs.
type Router struct {
	Log     *slog.Logger
	Auth    *services.AuthService
	Limiter middlewarectx.Limiter
	Metrics *metrics.Metrics
	Cookies cookies.Options
	Checks  map[string]health.Check
}

// RegisterRoutes mounts every endpoint of the service on r.
func RegisterRoutes(r chi.Router, d Router) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(d.Metrics),
	)

	limited := func(scope string) func(http.Handler) http.Handler {
		return middlewarectx.RateLimitMiddleware(d.Limiter, scope, d.Log)
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(limited("register")).Post("/register", register.New(d.Log, d.Auth).ServeHTTP)
		r.With(limited("login")).Post("/login", login.New(d.Log, d.Auth, d.Cookies).ServeHTTP)
		r.With(limited("admin_login")).Post("/admin/login", login.NewAdmin(d.Log, d.Auth, d.Cookies).ServeHTTP)
		r.Post("/logout", logout.New(d.Cookies).ServeHTTP)
		r.With(limited("verify")).Get("/verify/{"+verifyemail.URLParam+"}", verifyemail.New(d.Log, d.Auth).ServeHTTP)
		r.With(limited("forgotpassword")).Post("/forgotpassword", forgotpassword.New(d.Log, d.Auth).ServeHTTP)
		r.With(limited("resetpassword")).Patch("/resetpassword/{"+resetpassword.URLParam+"}", resetpassword.New(d.Log, d.Auth, d.Cookies).ServeHTTP)
		r.Get("/session", session.New(d.Log, d.Auth).ServeHTTP)
	})

	me := profile.New()
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(d.Auth, d.Log))
		r.Get("/users/me", me.ServeHTTP)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.AdminOnly(d.Log))
			r.Get("/me", me.ServeHTTP)
		})
	})

	r.Get("/health", health.New(d.Log, d.Checks).ServeHTTP)
	r.Handle("/metrics", d.Metrics.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
