// Package ratelimit provides the per-IP GCRA limiter tiers in front of the
// API: a strict one for job creation, a heavy-operations tier for
// analytics, and a general tier for everything else.
package ratelimit

import (
	"encoding/json"
	"net/http"

	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
)

// Limiter wraps a GCRA rate limiter keyed by client IP.
type Limiter struct {
	http throttled.HTTPRateLimiterCtx
}

func New(quota throttled.RateQuota) (*Limiter, error) {
	store, err := memstore.NewCtx(65536)
	if err != nil {
		return nil, err
	}
	rl, err := throttled.NewGCRARateLimiterCtx(store, quota)
	if err != nil {
		return nil, err
	}
	return &Limiter{http: throttled.HTTPRateLimiterCtx{
		RateLimiter:   rl,
		VaryBy:        &throttled.VaryBy{RemoteAddr: true},
		DeniedHandler: http.HandlerFunc(denied),
	}}, nil
}

// Wrap applies the limiter in front of next.
func (l *Limiter) Wrap(next http.Handler) http.Handler {
	return l.http.RateLimit(next)
}

// The quotas mirror the windowed per-IP limits of the upstream service:
// 5 job creations per minute, 10 heavy requests per 5 minutes, and 100
// general requests per 15 minutes, expressed as GCRA rate plus burst.

func CreateJob() (*Limiter, error) {
	return New(throttled.RateQuota{MaxRate: throttled.PerMin(5), MaxBurst: 4})
}

func Heavy() (*Limiter, error) {
	return New(throttled.RateQuota{MaxRate: throttled.PerMin(2), MaxBurst: 9})
}

func API() (*Limiter, error) {
	return New(throttled.RateQuota{MaxRate: throttled.PerHour(400), MaxBurst: 99})
}

func denied(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": "too many requests, please retry shortly",
	})
}
