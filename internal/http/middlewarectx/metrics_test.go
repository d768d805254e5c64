package middlewarectx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route string
	status        int
}

type recordingObserver struct {
	seen []observation
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.seen = append(o.seen, observation{method, route, status})
}

func TestMetricsMiddleware(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(obs))
	r.Get("/auth/verifyemail/{code}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/auth/verifyemail/abc", "/health", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, obs.seen, 3)
	assert.Equal(t, observation{http.MethodGet, "/auth/verifyemail/{code}", http.StatusUnauthorized}, obs.seen[0])
	assert.Equal(t, observation{http.MethodGet, "/health", http.StatusOK}, obs.seen[1])
	assert.Equal(t, http.StatusNotFound, obs.seen[2].status)
}
