// Package register serves POST /auth/register.
package register

import (
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
	MsgCreated       = "An email with a verification code has been sent to your email"
	MsgEmailExists   = "Email already exist, please use another email address"
	MsgEmailDelivery = "There was an error sending email, please try again"
	MsgPasswordLong  = "Password must be at most 72 bytes"
)

// Request is the registration form.
type Request struct {
	Pseudo   string `json:"pseudo" validate:"required,min=2,max=50" example:"alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=8,max=72,bcrypt_bytes" example:"password123"`
}

// Handler creates accounts.
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
// @Summary Register a user
// @Description Creates an unverified account and emails a verification link.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Registration form"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Invalid input"
// @Failure 409 {object} response.ErrorResponse "Email already registered"
// @Failure 500 {object} response.ErrorResponse "Email could not be sent"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	err := h.service.Register(r.Context(), req.Pseudo, req.Email, req.Password)
	switch {
	case err == nil:
		response.Render(w, r, http.StatusCreated, response.Success(MsgCreated))
	case errors.Is(err, services.ErrPasswordTooLong):
		response.RenderFail(w, r, http.StatusBadRequest, MsgPasswordLong)
	case errors.Is(err, services.ErrConflict):
		response.RenderFail(w, r, http.StatusConflict, MsgEmailExists)
	case errors.Is(err, services.ErrEmailDelivery):
		response.Render(w, r, http.StatusInternalServerError, response.Error(MsgEmailDelivery))
	default:
		log.Error("registration failed", sl.Err(err))
		response.RenderInternal(w, r)
	}
}
