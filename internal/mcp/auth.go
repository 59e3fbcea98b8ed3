package mcp

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultMCPMaxBodyBytes int64 = 1 << 20 // 1MiB

type HTTPHandlerConfig struct {
	AuthToken       string
	RateLimitPerMin int
	MaxBodyBytes    int64
}

// transportGuard fronts the HTTP transport with bearer auth, a per-client
// request budget, and a request body cap. Order matters: unauthenticated
// callers never touch the limiter state.
type transportGuard struct {
	next     http.Handler
	token    string
	limiter  *requestWindow
	maxBytes int64
}

func wrapHTTPHandler(base http.Handler, cfg HTTPHandlerConfig) http.Handler {
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMCPMaxBodyBytes
	}
	return &transportGuard{
		next:     base,
		token:    cfg.AuthToken,
		limiter:  newRequestWindow(cfg.RateLimitPerMin, time.Now),
		maxBytes: maxBytes,
	}
}

func (g *transportGuard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(authz, "Bearer ") {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	provided := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if g.token == "" || provided == "" || provided != g.token {
		writeJSONError(w, http.StatusForbidden, "invalid bearer token")
		return
	}

	if !g.limiter.Allow(clientKey(r)) {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, g.maxBytes)
	}
	g.next.ServeHTTP(w, r)
}

// clientKey buckets requests by bearer token and remote host, so one noisy
// client cannot starve the rest.
func clientKey(r *http.Request) string {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		host = "unknown"
	}
	if token == "" {
		return host
	}
	return token + "|" + host
}

// requestWindow is a fixed one-minute window counter per client key.
type requestWindow struct {
	mu     sync.Mutex
	perMin int
	now    func() time.Time
	counts map[string]*windowCount
}

type windowCount struct {
	start time.Time
	seen  int
}

func newRequestWindow(perMin int, now func() time.Time) *requestWindow {
	if perMin <= 0 {
		perMin = 60
	}
	if now == nil {
		now = time.Now
	}
	return &requestWindow{
		perMin: perMin,
		now:    now,
		counts: make(map[string]*windowCount),
	}
}

func (rw *requestWindow) Allow(key string) bool {
	if rw == nil {
		return true
	}
	if key == "" {
		key = "default"
	}

	at := rw.now()
	rw.mu.Lock()
	defer rw.mu.Unlock()

	wc, ok := rw.counts[key]
	if !ok || at.Sub(wc.start) >= time.Minute {
		rw.counts[key] = &windowCount{start: at, seen: 1}
		return true
	}
	if wc.seen >= rw.perMin {
		return false
	}
	wc.seen++
	return true
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
