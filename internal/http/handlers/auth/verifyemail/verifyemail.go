// Package verifyemail serves GET /auth/verify/{verificationCode}.
package verifyemail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
)

// URLParam is the route parameter carrying the raw code.
const URLParam = "verificationCode"

// Answers of the endpoint.
const (
	MsgVerified       = "Email verified successfully"
	MsgCouldNotVerify = "Could not verify email"
)

// Service consumes verification codes.
type Service interface {
	VerifyEmail(ctx context.Context, code string) error
}

// Handler verifies accounts from emailed links.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns a Handler backed by service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Verify an email address
// @Description Consumes the code sent at registration. A code works once.
// @Tags Auth
// @Produce json
// @Param verificationCode path string true "Code from the verification email"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Unknown or used code"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /auth/verify/{verificationCode} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	code := chi.URLParam(r, URLParam)
	if code == "" {
		response.RenderFail(w, r, http.StatusUnauthorized, MsgCouldNotVerify)
		return
	}

	err := h.service.VerifyEmail(r.Context(), code)
	switch {
	case err == nil:
		response.Render(w, r, http.StatusOK, response.Success(MsgVerified))
	case errors.Is(err, services.ErrInvalidToken):
		log.Info("verification code rejected")
		response.RenderFail(w, r, http.StatusUnauthorized, MsgCouldNotVerify)
	default:
		log.Error("verification failed", sl.Err(err))
		response.RenderInternal(w, r)
	}
}
