// Package forgotpassword serves POST /auth/forgotpassword.
package forgotpassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
)

// Answers of the endpoint.
const (
	MsgSent          = "You will receive a reset email if user with that email exist"
	MsgNotVerified   = "Account not verified"
	MsgEmailDelivery = "There was an error sending email"
)

// Request carries the account email.
type Request struct {
	Email string `json:"email" validate:"required,email" example:"alice@example.com"`
}

// Service starts password resets.
type Service interface {
	ForgotPassword(ctx context.Context, email string) error
}

// Handler emails password reset links.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New returns a Handler backed by service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Request a password reset
// @Description Emails a reset link valid for a limited time. Unknown addresses get the same answer as known ones.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Account email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Invalid input"
// @Failure 403 {object} response.ErrorResponse "Account not verified"
// @Failure 500 {object} response.ErrorResponse "Email could not be sent"
// @Router /auth/forgotpassword [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

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

	err := h.service.ForgotPassword(r.Context(), req.Email)
	switch {
	case err == nil:
		response.Render(w, r, http.StatusOK, response.Success(MsgSent))
	case errors.Is(err, services.ErrForbidden):
		response.RenderFail(w, r, http.StatusForbidden, MsgNotVerified)
	case errors.Is(err, services.ErrEmailDelivery):
		response.Render(w, r, http.StatusInternalServerError, response.Error(MsgEmailDelivery))
	default:
		log.Error("forgot password failed", sl.Err(err))
		response.RenderInternal(w, r)
	}
}
