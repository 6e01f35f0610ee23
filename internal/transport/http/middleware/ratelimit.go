package middleware

import (
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/glucotrack/api/internal/ratelimit"
)

// RouteLimit pairs a path (exact or prefix) with its window policy.
type RouteLimit struct {
	Path          string
	Limit         int
	WindowSeconds int
}

// Default limits when no configured route matches.
const (
	authenticatedLimit   = 100
	unauthenticatedLimit = 20
	defaultWindowSeconds = 60
	authedKeyTokenBytes  = 16 // token prefix used as the per-user identity
)

// DefaultRouteLimits is the sensitive-route table: tight windows on the
// endpoints an attacker would hammer.
func DefaultRouteLimits() []RouteLimit {
	return []RouteLimit{
		{Path: "/v1/auth/login", Limit: 5, WindowSeconds: 300},
		{Path: "/v1/auth/register", Limit: 3, WindowSeconds: 600},
		{Path: "/v1/auth/mfa/verify", Limit: 5, WindowSeconds: 300},
	}
}

// Gate is the request-scoped rate-limit middleware. Sensitive routes get a
// per-route+IP key from the table; everything else falls back to a per-user
// key (authenticated) or a per-IP key (anonymous).
type Gate struct {
	limiter *ratelimit.Limiter
	routes  []RouteLimit // sorted longest path first
	exempt  map[string]struct{}
}

func NewGate(limiter *ratelimit.Limiter, routes []RouteLimit) *Gate {
	sorted := make([]RouteLimit, len(routes))
	copy(sorted, routes)
	// Longest prefix wins when several configured paths could match.
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Path) > len(sorted[j].Path)
	})
	return &Gate{
		limiter: limiter,
		routes:  sorted,
		exempt: map[string]struct{}{
			"/":                {},
			"/v1/health-check": {},
		},
	}
}

// Limit enforces the gate and decorates every allowed response with
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset headers.
func (g *Gate) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")
		if path == "" {
			path = "/"
		}
		if _, ok := g.exempt[path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		key, limit, window := g.resolve(path, r)
		res := g.limiter.Allow(r.Context(), key, limit, window)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining()))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt, 10))

		if !res.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(res.ResetAfter))
			writeJSONError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolve picks the counter key and policy for this request: exact route
// match first, then longest configured prefix, then the authenticated or
// anonymous default.
func (g *Gate) resolve(path string, r *http.Request) (key string, limit, window int) {
	for _, rt := range g.routes {
		if path == rt.Path {
			return "rate:" + rt.Path + ":" + realIP(r), rt.Limit, rt.WindowSeconds
		}
	}
	for _, rt := range g.routes {
		if strings.HasPrefix(path, rt.Path) {
			return "rate:" + rt.Path + ":" + realIP(r), rt.Limit, rt.WindowSeconds
		}
	}

	// The bearer token prefix stands in for the user identity here; full
	// verification happens later in the auth middleware.
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		tok := strings.TrimPrefix(auth, "Bearer ")
		if len(tok) > authedKeyTokenBytes {
			tok = tok[:authedKeyTokenBytes]
		}
		return "rate:user:" + tok, authenticatedLimit, defaultWindowSeconds
	}
	return "rate:ip:" + realIP(r), unauthenticatedLimit, defaultWindowSeconds
}

// realIP extracts the client address: first X-Forwarded-For hop, then
// X-Real-Ip, then the socket peer.
func realIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if rip := r.Header.Get("X-Real-Ip"); rip != "" {
		return rip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ClientIP is realIP for use outside the middleware package.
func ClientIP(r *http.Request) string { return realIP(r) }
