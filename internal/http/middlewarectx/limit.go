package middlewarectx

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/middleware"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/techwatch-auth/internal/http/response"
	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
)

// MsgTooManyRequests is the message of the 429 answer.
const MsgTooManyRequests = "Too many requests, please try again later"

// Limiter counts one call for key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalLimiter is an in-process token bucket per key, used when no Redis is
// configured. Buckets idle for longer than the window are dropped.
type LocalLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	idle    time.Duration
	buckets map[string]*bucket
	swept   time.Time
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows requests calls per window for each key.
func NewLocalLimiter(requests int, window time.Duration) *LocalLimiter {
	if requests < 1 {
		requests = 1
	}
	return &LocalLimiter{
		every:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		idle:    window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow implements Limiter. It never fails.
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

// RateLimitMiddleware limits each client IP within scope. When the limiter
// itself fails the request is let through.
func RateLimitMiddleware(limiter Limiter, scope string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientIP(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Error("rate limiter unavailable",
					slog.String("op", "middlewarectx.RateLimitMiddleware"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				log.Warn("too many requests",
					slog.String("scope", scope),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				w.Header().Set("Retry-After", "60")
				response.RenderFail(w, r, http.StatusTooManyRequests, MsgTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
