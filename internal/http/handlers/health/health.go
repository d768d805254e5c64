// Package health serves GET /health.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
)

const checkTimeout = 2 * time.Second

// Check probes one dependency.
type Check func(ctx context.Context) error

type Handler struct {
	log    *slog.Logger
	checks map[string]Check
}

// New returns a handler running checks by name. Every check must pass for
// a 200.
func New(log *slog.Logger, checks map[string]Check) *Handler {
	return &Handler{log: log, checks: checks}
}

// ServeHTTP godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	report := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Error("health check failed",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("check", name),
				sl.Err(err),
			)
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}

	body := response.SuccessWithData(report)
	if status != http.StatusOK {
		body.Status = response.StatusError
	}
	response.Render(w, r, status, body)
}
