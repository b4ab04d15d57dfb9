// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskboard/modules/middleware/problem"
	"taskboard/modules/ratelimit"
)

const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

type RateLimitConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Backend string `env:"BACKEND" envDefault:"memory"`

	// memory backend: token bucket per client
	RPS   float64 `env:"RPS" envDefault:"10"`
	Burst int     `env:"BURST" envDefault:"20"`
	// Buckets idle for longer than this are evicted.
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"10m"`

	// redis backend: sliding window shared by all instances
	WindowLimit int64         `env:"WINDOW_LIMIT" envDefault:"600"`
	Window      time.Duration `env:"WINDOW" envDefault:"1m"`

	// Use the first X-Forwarded-For hop as the client key. Only enable
	// behind a proxy that overwrites the header.
	TrustForwardedFor bool `env:"TRUST_FORWARDED_FOR" envDefault:"false"`
}

// KeyFunc extracts the rate limit identifier from a request. An empty key
// skips limiting for that request.
type KeyFunc func(*http.Request) string

// RemoteIPKey keys requests by the peer address.
func RemoteIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedForKey keys requests by the first X-Forwarded-For hop, falling
// back to the peer address.
func ForwardedForKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return RemoteIPKey(r)
}

// RateLimit answers 429 with a Retry-After header when limiter refuses a
// client. A nil limiter means an in-process token bucket built from cfg.
// A disabled config returns a pass-through middleware.
func RateLimit(cfg RateLimitConfig, limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	if limiter == nil {
		limiter = ratelimit.NewTokenBucket(cfg.RPS, cfg.Burst, cfg.IdleTTL, nil)
	}
	keyFn := KeyFunc(RemoteIPKey)
	if cfg.TrustForwardedFor {
		keyFn = ForwardedForKey
	}
	return rateLimit(limiter, keyFn)
}

func rateLimit(limiter ratelimit.Limiter, keyFn KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			d, err := limiter.Allow(r.Context(), ratelimit.Key(key))
			if err != nil {
				// counter store may be down; keep serving
				slog.WarnContext(r.Context(), "rate limit check failed",
					slog.String("middleware", "rate_limiter"),
					slog.String("url", r.URL.Path),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}

			if d.Limit > 0 {
				h := w.Header()
				h.Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
				h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
				h.Set("X-RateLimit-Reset-Seconds", strconv.FormatInt(int64(math.Ceil(d.ResetIn.Seconds())), 10))
			}

			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(math.Ceil(d.RetryAfter.Seconds())), 1)
			slog.DebugContext(r.Context(), "rate limited",
				slog.String("middleware", "rate_limiter"),
				slog.String("url", r.URL.Path),
			)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			problem.WriteRequest(w, r, problem.TooManyRequests("rate limit exceeded",
				problem.WithExtension("retryAfter", retryAfter),
			))
		})
	}
}
