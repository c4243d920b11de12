package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// RateLimitMiddleware is a per-client sliding window limiter.
type RateLimitMiddleware struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	// Forwarding headers are honoured only from these peer addresses.
	trustedProxies map[string]bool

	mu        sync.Mutex
	requests  map[string][]time.Time // client -> request times inside the window
	lastSweep time.Time
}

// NewRateLimitMiddleware allows maxRequests per client in every window.
// Requests arriving from one of trustedProxies are attributed to the client
// named in X-Forwarded-For or X-Real-IP.
func NewRateLimitMiddleware(maxRequests int, window time.Duration, trustedProxies ...string) *RateLimitMiddleware {
	trusted := make(map[string]bool, len(trustedProxies))
	for _, p := range trustedProxies {
		if p = strings.TrimSpace(p); p != "" {
			trusted[p] = true
		}
	}
	return &RateLimitMiddleware{
		maxRequests:    maxRequests,
		window:         window,
		now:            time.Now,
		trustedProxies: trusted,
		requests:       make(map[string][]time.Time),
	}
}

// RateLimit rejects requests over the limit with 429.
func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := m.clientIP(r)
		if !m.allow(client) {
			log.WithFields(log.Fields{
				"client": client,
				"path":   r.URL.Path,
			}).Warn("Rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(m.window.Seconds())))
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) allow(client string) bool {
	now := m.now()
	windowStart := now.Add(-m.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= m.window {
		m.sweep(windowStart)
		m.lastSweep = now
	}

	kept := m.requests[client][:0]
	for _, ts := range m.requests[client] {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= m.maxRequests {
		m.requests[client] = kept
		return false
	}
	m.requests[client] = append(kept, now)
	return true
}

// sweep drops clients with no request inside the window.
func (m *RateLimitMiddleware) sweep(windowStart time.Time) {
	for client, times := range m.requests {
		if len(times) == 0 || !times[len(times)-1].After(windowStart) {
			delete(m.requests, client)
		}
	}
}

// clientIP extracts the client IP from the request. Forwarding headers
// count only when the peer is a trusted proxy.
func (m *RateLimitMiddleware) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !m.trustedProxies[host] {
		return host
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	return host
}
