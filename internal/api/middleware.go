package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/internal/auth"
	"github.com/example/vocapp/internal/logger"
)

const cookieName = "access_token"

type learnerKey struct{}

func learnerID(ctx context.Context) int64 {
	id, _ := ctx.Value(learnerKey{}).(int64)
	return id
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get("Authorization")
}

// requireLearner rejects requests without a valid access token and stores
// the learner id in the request context.
func requireLearner(m *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				httpError(w, http.StatusUnauthorized, apperr.KindUnauthorized.String(), "Not authenticated")
				return
			}
			id, err := m.ParseToken(token)
			if err != nil {
				httpError(w, http.StatusUnauthorized, apperr.KindUnauthorized.String(), "%s", apperr.Message(err))
				return
			}
			ctx := context.WithValue(r.Context(), learnerKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start).String(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// RateLimiter keeps one token bucket per learner.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[int64]*rate.Limiter
	rate   rate.Limit
	burst  int
}

// NewRateLimiter allows perSecond requests per learner with the given
// burst. A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limits: make(map[int64]*rate.Limiter),
		rate:   limit,
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// Allow checks if a request is allowed for the given learner.
func (rl *RateLimiter) Allow(key int64) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := learnerID(r.Context())
		if !rl.Allow(id) {
			retry := time.Second
			if rl.rate > 0 && rl.rate != rate.Inf {
				retry = time.Duration(float64(time.Second) / float64(rl.rate))
			}
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retry.Seconds()))))
			httpError(w, http.StatusTooManyRequests, "rate_limited", "Too many lookups, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
