// Package resetpassword serves PATCH /auth/resetpassword/{resetToken}.
package resetpassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/cookies"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
)

// URLParam is the route parameter carrying the raw reset token.
const URLParam = "resetToken"

// Answers of the endpoint.
const (
	MsgUpdated      = "Password data updated successfully"
	MsgMismatch     = "Password and confirm password does not match"
	MsgInvalidToken = "Invalid token or token has expired"
	MsgPasswordLong = "Password must be at most 72 bytes"
)

// Request holds the new password and its confirmation.
type Request struct {
	Password        string `json:"password" validate:"required,min=8,max=72,bcrypt_bytes" example:"newpassword123"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required" example:"newpassword123"`
}

// Service completes password resets.
type Service interface {
	ResetPassword(ctx context.Context, token, password, passwordConfirm string) error
}

// Handler sets a new password and clears the auth cookies.
type Handler struct {
	log      *slog.Logger
	service  Service
	cookies  cookies.Options
	validate *validator.Validate
}

// New returns a Handler backed by service; opts must match the login cookies.
func New(log *slog.Logger, service Service, opts cookies.Options) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		cookies:  opts,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Reset a password
// @Description Sets a new password with the token from the reset email and ends the browser session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param resetToken path string true "Token from the reset email"
// @Param request body Request true "New password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Passwords do not match or password too long"
// @Failure 403 {object} response.ErrorResponse "Invalid or expired token"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /auth/resetpassword/{resetToken} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderFail(w, r, http.StatusBadRequest, response.MsgInvalidBody)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Render(w, r, http.StatusBadRequest, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.ResetPassword(r.Context(), chi.URLParam(r, URLParam), req.Password, req.PasswordConfirm)
	switch {
	case err == nil:
		cookies.Clear(w, h.cookies)
		response.Render(w, r, http.StatusOK, response.Success(MsgUpdated))
	case errors.Is(err, services.ErrPasswordTooLong):
		response.RenderFail(w, r, http.StatusBadRequest, MsgPasswordLong)
	case errors.Is(err, services.ErrValidation):
		response.RenderFail(w, r, http.StatusBadRequest, MsgMismatch)
	case errors.Is(err, services.ErrInvalidToken):
		log.Info("reset token rejected")
		response.RenderFail(w, r, http.StatusForbidden, MsgInvalidToken)
	default:
		log.Error("password reset failed", sl.Err(err))
		response.RenderInternal(w, r)
	}
}
