// Package profile serves the account of the authenticated user on
// GET /users/me and GET /admin/me.
package profile

import (
	"net/http"
	"time"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/models"
)

// User is the public view of an account.
type User struct {
	ID        string    `json:"id" example:"4f9c1e8a-6b7d-4a52-9d0e-2c3b4a5d6e7f"`
	Pseudo    string    `json:"pseudo" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	Role      string    `json:"role" example:"user"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// Data is the payload of the answer.
type Data struct {
	User User `json:"user"`
}

func FromModel(u *models.User) User {
	return User{
		ID:        u.UUID,
		Pseudo:    u.Pseudo,
		Email:     u.Email,
		Role:      string(u.Role),
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
}

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Current account
// @Description Returns the account behind the access token. /admin/me additionally requires the admin role.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=Data}
// @Failure 401 {object} response.ErrorResponse "Not logged in"
// @Router /users/me [get]
// @Router /admin/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.RenderFail(w, r, http.StatusUnauthorized, middlewarectx.MsgNotLoggedIn)
		return
	}
	response.Render(w, r, http.StatusOK, response.SuccessWithData(Data{User: FromModel(user)}))
}
