// Package auth assembles the HTTP API: storage, mail delivery, rate limiting
// and the router, and runs the server until its context is canceled.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/gorilla/handlers"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/techwatch-auth/internal/cache"
	"github.com/magabrotheeeer/techwatch-auth/internal/config"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/cookies"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/smtp"
	"github.com/magabrotheeeer/techwatch-auth/internal/metrics"
	"github.com/magabrotheeeer/techwatch-auth/internal/migrations"
	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
	"github.com/magabrotheeeer/techwatch-auth/internal/services/notification"
	senderservice "github.com/magabrotheeeer/techwatch-auth/internal/services/sender"
	"github.com/magabrotheeeer/techwatch-auth/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New connects to the configured backends and builds the server.
//
// Emails are queued on RabbitMQ when a URL is configured and sent over SMTP
// otherwise. Rate limits are kept in Redis when an address is configured and
// in process otherwise.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"

	app := &App{logger: logger}
	fail := func(err error) (*App, error) {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return fail(err)
	}
	app.db = db
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return fail(err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		return fail(err)
	}

	checks := map[string]health.Check{"postgres": db.Ping}

	var mailer services.Mailer
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.Delay)
		if err != nil {
			return fail(err)
		}
		app.conn = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			return fail(err)
		}
		app.ch = ch
		mailer = notification.NewPublisher(ch, logger)
		checks["rabbitmq"] = func(context.Context) error {
			if conn.IsClosed() {
				return amqp.ErrClosed
			}
			return nil
		}
		logger.Info("emails are queued on rabbitmq")
	} else {
		mailer = senderservice.NewSenderService(smtp.NewTransport(cfg.SMTP, logger), logger)
		logger.Info("emails are sent over smtp")
	}

	var limiter middlewarectx.Limiter
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return fail(err)
		}
		app.cache = c
		limiter = cache.NewRateLimiter(c, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		checks["redis"] = c.Ping
	} else {
		limiter = middlewarectx.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	authService := services.NewAuthService(
		db,
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTokenTTL()),
		mailer,
		services.Options{ClientURL: cfg.ClientURL, ResetTokenTTL: cfg.ResetTokenTTL},
		logger,
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Router{
		Log:     logger,
		Auth:    authService,
		Limiter: limiter,
		Metrics: metrics.New(),
		Cookies: cookies.Options{TTL: cfg.AccessTokenTTL(), Secure: cfg.IsProduction()},
		Checks:  checks,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      withCORS(router, cfg.AllowedOrigins),
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// withCORS lets the browser client send credentialed requests from origins.
// Without origins the API is same-origin only.
func withCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(h)
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
	}
}
