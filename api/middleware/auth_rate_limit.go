package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/vegobolt/vegobolt-backend/api/responses"
	"github.com/vegobolt/vegobolt-backend/pkg/config"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
	"github.com/vegobolt/vegobolt-backend/pkg/logger"
)

// FixedWindowLimiter counts hits for a scope inside a fixed window. The redis
// client satisfies this.
type FixedWindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy bounds how often a single IP, and optionally a single email
// address, can hit an auth endpoint within a window.
type RateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

func LoginRateLimitPolicy(cfg config.AuthRateLimitConfig) RateLimitPolicy {
	return RateLimitPolicy{
		Name:       "login",
		Window:     cfg.LoginWindow,
		IPLimit:    cfg.LoginIPLimit,
		EmailLimit: cfg.LoginEmailLimit,
	}
}

func RegisterRateLimitPolicy(cfg config.AuthRateLimitConfig) RateLimitPolicy {
	return RateLimitPolicy{
		Name:       "register",
		Window:     cfg.RegisterWindow,
		IPLimit:    cfg.RegisterIPLimit,
		EmailLimit: cfg.RegisterEmailLimit,
	}
}

// AuthRateLimit applies a fixed-window policy keyed by client IP and, when
// the body carries one, by email. A nil limiter disables the middleware so
// the API still works without redis.
func AuthRateLimit(limiter FixedWindowLimiter, policy RateLimitPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.IPLimit > 0 {
				scope := policy.Name + ":ip:" + clientIP(r)
				if !allow(ctx, limiter, scope, int64(policy.IPLimit), policy.Window, logg) {
					tooManyRequests(ctx, logg, w)
					return
				}
			}

			if policy.EmailLimit > 0 {
				if email := peekEmail(r); email != "" {
					scope := policy.Name + ":email:" + email
					if !allow(ctx, limiter, scope, int64(policy.EmailLimit), policy.Window, logg) {
						tooManyRequests(ctx, logg, w)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allow fails open on limiter errors so a redis outage does not lock
// everyone out of login.
func allow(ctx context.Context, limiter FixedWindowLimiter, scope string, limit int64, window time.Duration, logg *logger.Logger) bool {
	ok, count, err := limiter.FixedWindowAllow(ctx, scope, limit, window)
	if err != nil {
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "scope", scope), "rate_limit.check_failed")
		}
		return true
	}
	if !ok && logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"scope": scope, "count": count})
		logg.Warn(ctx, "rate_limit.exceeded")
	}
	return ok
}

func tooManyRequests(ctx context.Context, logg *logger.Logger, w http.ResponseWriter) {
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many attempts. Please try again later."))
}

// peekEmail reads the email field out of the JSON body without consuming it
// for the downstream handler.
func peekEmail(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
