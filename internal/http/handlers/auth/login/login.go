// Package login serves POST /auth/login and POST /auth/admin/login.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/cookies"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
)

// Answers of the endpoint.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgNotVerified        = "You are not verified, please verify your email to login"
	MsgNotAdmin           = "You are not authorized to access"
)

// Request holds the login credentials.
type Request struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type Handler struct {
	log      *slog.Logger
	login    func(ctx context.Context, email, password string) (string, error)
	op       string
	cookies  cookies.Options
	validate *validator.Validate
	now      func() time.Time
}

// New returns the handler of the public login.
func New(log *slog.Logger, service Service, opts cookies.Options) *Handler {
	return newHandler(log, service.Login, "handlers.auth.login", opts)
}

// NewAdmin returns the handler of the back office login, which refuses
// accounts without the admin role.
func NewAdmin(log *slog.Logger, service Service, opts cookies.Options) *Handler {
	return newHandler(log, service.AdminLogin, "handlers.auth.login.admin", opts)
}

func newHandler(log *slog.Logger, login func(context.Context, string, string) (string, error), op string, opts cookies.Options) *Handler {
	return &Handler{
		log:      log,
		login:    login,
		op:       op,
		cookies:  opts,
		validate: response.NewValidator(),
		now:      time.Now,
	}
}

// ServeHTTP godoc
// @Summary Log in
// @Description Checks the credentials of a verified account. The access token is returned in the body and set as the access_token cookie. The admin variant at /auth/admin/login answers 401 for accounts without the admin role.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Invalid email or password"
// @Failure 401 {object} response.ErrorResponse "Email not verified"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /auth/login [post]
// @Router /auth/admin/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", h.op),
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

	token, err := h.login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCredentials):
		response.RenderFail(w, r, http.StatusBadRequest, MsgInvalidCredentials)
		return
	case errors.Is(err, services.ErrNotVerified):
		response.RenderFail(w, r, http.StatusUnauthorized, MsgNotVerified)
		return
	case errors.Is(err, services.ErrForbidden):
		log.Info("admin login refused")
		response.RenderFail(w, r, http.StatusUnauthorized, MsgNotAdmin)
		return
	default:
		log.Error("login failed", sl.Err(err))
		response.RenderInternal(w, r)
		return
	}

	cookies.Set(w, token, h.cookies, h.now())
	response.Render(w, r, http.StatusOK, response.Response{
		Status:      response.StatusSuccess,
		AccessToken: token,
	})
}
