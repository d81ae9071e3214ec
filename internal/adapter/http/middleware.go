package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/neomorfeo/nettap/internal/domain"
)

type principalKey struct{}

// PrincipalFrom returns the authenticated caller stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// Authenticator verifies bearer tokens.
type Authenticator interface {
	Authenticate(token string) (domain.Principal, error)
}

// writeDomainErr writes err through the envelope from inside a middleware.
func writeDomainErr(api huma.API, ctx huma.Context, err error) {
	env, ok := toAPIError(ctx.Context(), err).(*ErrorEnvelope)
	if !ok {
		_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, internalMessage)
		return
	}
	_ = huma.WriteErr(api, ctx, env.Err.StatusCode, env.Err.Message)
}

// requireRoles authenticates the bearer token and admits only the given
// roles. ISP principals must be linked to an ISP.
func requireRoles(api huma.API, auth Authenticator, roles ...domain.Role) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeDomainErr(api, ctx, &domain.UnauthorizedError{Message: "Missing or invalid authorization header"})
			return
		}
		p, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			writeDomainErr(api, ctx, err)
			return
		}
		if !slices.Contains(roles, p.Role) {
			writeDomainErr(api, ctx, &domain.ForbiddenError{Message: "Insufficient permissions"})
			return
		}
		if p.Role == domain.RoleISP && p.ISPID == "" {
			writeDomainErr(api, ctx, &domain.ForbiddenError{Message: "ISP account is not linked to an ISP"})
			return
		}
		next(huma.WithValue(ctx, principalKey{}, p))
	}
}

// visitorTTL is how long an idle client's limiter is kept.
const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out a token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows rps requests per second per IP with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > visitorTTL {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(rl.visitors, key)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware rejects clients over their budget with 429.
func (rl *RateLimiter) Middleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !rl.Allow(clientIP(ctx.RemoteAddr())) {
			ctx.SetHeader("Retry-After", "1")
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		next(ctx)
	}
}

func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// requestLogger logs one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_ip", clientIP(r.RemoteAddr),
		)
	})
}
