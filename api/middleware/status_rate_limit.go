package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bolajoy/bolajoy-backend/api/responses"
	"github.com/bolajoy/bolajoy-backend/pkg/config"
	pkgerrors "github.com/bolajoy/bolajoy-backend/pkg/errors"
	"github.com/bolajoy/bolajoy-backend/pkg/logger"
	"github.com/bolajoy/bolajoy-backend/pkg/phone"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// StatusRateLimitPolicy throttles the public status lookup per phone and per IP.
type StatusRateLimitPolicy struct {
	window     time.Duration
	phoneLimit int
	ipLimit    int
}

// NewStatusRateLimitPolicy builds the policy from configuration.
func NewStatusRateLimitPolicy(cfg config.StatusRateLimitConfig) StatusRateLimitPolicy {
	return StatusRateLimitPolicy{
		window:     cfg.Window,
		phoneLimit: cfg.PhoneLimit,
		ipLimit:    cfg.IPLimit,
	}
}

func (p StatusRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.phoneLimit > 0 || p.ipLimit > 0)
}

func (p StatusRateLimitPolicy) ipKey(ip string) string {
	if ip == "" {
		return ""
	}
	return fmt.Sprintf("rl:ip:status:%s", ip)
}

func (p StatusRateLimitPolicy) phoneKey(hash string) string {
	if hash == "" {
		return ""
	}
	return fmt.Sprintf("rl:phone:status:%s", hash)
}

// StatusRateLimit enforces fixed-window counters on the public status lookup.
// The phone counter keys off the normalized number so formatting variants
// share one budget; the raw number never reaches the store.
func StatusRateLimit(policy StatusRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if policy.ipLimit > 0 {
				if key := policy.ipKey(ip); key != "" {
					allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.ipLimit))
					if err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					}
					if !allowed {
						respondRateLimited(ctx, logg, w, "ip", ip, count, policy.ipLimit, policy.window)
						return
					}
				}
			}

			if policy.phoneLimit > 0 {
				if normalized := phone.Normalize(chi.URLParam(r, "phone")); normalized != "" {
					hash := hashValue(normalized)
					if key := policy.phoneKey(hash); key != "" {
						allowed, count, err := allow(ctx, store, key, policy.window, int64(policy.phoneLimit))
						if err != nil {
							responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
							return
						}
						if !allowed {
							respondRateLimited(ctx, logg, w, "phone", hash, count, policy.phoneLimit, policy.window)
							return
						}
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allow(ctx context.Context, store rateLimiterStore, key string, window time.Duration, limit int64) (bool, int64, error) {
	count, err := store.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, scope, subject string, count int64, limit int, window time.Duration) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"subject":        subject,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(window.Seconds()),
		})
		logg.Warn(logCtx, "status.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
