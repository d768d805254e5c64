// Package session serves GET /auth/session, which tells the client layout
// whether the browser holds a live session and for whom.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
	"github.com/magabrotheeeer/techwatch-auth/internal/models"
	services "github.com/magabrotheeeer/techwatch-auth/internal/services/auth"
)

// Service resolves an optional access token.
type Service interface {
	Session(ctx context.Context, token string) (*models.User, error)
}

// Informations describes the connected account.
type Informations struct {
	Role     string `json:"role" example:"user"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
}

// Data is the payload of the answer.
type Data struct {
	IsConnect    bool          `json:"isConnect"`
	Informations *Informations `json:"informations,omitempty"`
}

// Handler reports whether the caller holds a valid session.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New returns a Handler backed by service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Current session
// @Description Reports whether the request carries a valid access token. Never answers 401.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response{data=Data}
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /auth/session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.session"

	user, err := h.service.Session(r.Context(), middlewarectx.BearerToken(r))
	if err != nil && !errors.Is(err, services.ErrUnauthenticated) {
		h.log.Error("failed to resolve session",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.RenderInternal(w, r)
		return
	}

	data := Data{}
	if user != nil {
		data.IsConnect = true
		data.Informations = &Informations{
			Role:     string(user.Role),
			Username: user.Pseudo,
			Email:    user.Email,
		}
	}
	response.Render(w, r, http.StatusOK, response.SuccessWithData(data))
}
