// Package logout serves POST /auth/logout.
package logout

import (
	"net/http"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/cookies"
	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
)

type Handler struct {
	cookies cookies.Options
}

func New(opts cookies.Options) *Handler {
	return &Handler{cookies: opts}
}

// ServeHTTP godoc
// @Summary Log out
// @Description Expires the session cookies. Access tokens stay valid until they expire.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cookies.Clear(w, h.cookies)
	response.Render(w, r, http.StatusOK, response.Success(""))
}
