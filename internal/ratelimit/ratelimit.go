// Package ratelimit is a keyed in-process limiter for the auth and
// comment/vote endpoints. State does not survive a restart.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/auth"
)

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter hands out one token-bucket limiter per key and forgets keys that go
// quiet.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	rate    rate.Limit
	burst   int
}

// New allows reqs requests per window per key.
func New(reqs int, window time.Duration) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		rate:    rate.Every(window / time.Duration(reqs)),
		burst:   reqs,
	}
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = e
	}
	e.lastAccess = time.Now()
	if len(l.entries) > 10000 {
		l.evictStale()
	}
	lim := e.limiter
	l.mu.Unlock()
	return lim.Allow()
}

// evictStale drops keys idle for over an hour. Caller holds the lock.
func (l *Limiter) evictStale() {
	threshold := time.Now().Add(-time.Hour)
	for k, e := range l.entries {
		if e.lastAccess.Before(threshold) {
			delete(l.entries, k)
		}
	}
}

func tooMany(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests, slow down"})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ByIP rate-limits anonymous endpoints (login, register, password reset).
func (l *Limiter) ByIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			tooMany(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ByUser rate-limits authenticated endpoints by user id, falling back to IP
// for anonymous callers.
func (l *Limiter) ByUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if uid := auth.UserID(r.Context()); uid != 0 {
			key = fmt.Sprintf("user:%d", uid)
		}
		if !l.Allow(key) {
			tooMany(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
