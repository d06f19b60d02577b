package main

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

type ctxKey int

const requestIDKey ctxKey = iota

// requestIDFrom returns the request id stored by requestLogger
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger tags each request with an id and logs its outcome
func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

			entry := log.WithFields(logrus.Fields{
				"request_id":  id,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Warn("Request failed")
			} else {
				entry.Debug("Request handled")
			}
		})
	}
}

// adminAuth checks HTTP basic credentials. A bcrypt hash, when configured,
// takes precedence over the plain password.
type adminAuth struct {
	username     string
	password     string
	passwordHash []byte
}

func newAdminAuth(username, password, passwordHash string) *adminAuth {
	a := &adminAuth{username: username, password: password}
	if passwordHash != "" {
		a.passwordHash = []byte(passwordHash)
	}
	return a
}

func (a *adminAuth) check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	var passOK bool
	if a.passwordHash != nil {
		passOK = bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	}
	return userOK && passOK
}

// require rejects requests without valid admin credentials
func (a *adminAuth) require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !a.check(username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Login Required"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Could not verify your access level for that URL. You have to login with proper credentials",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ipRateLimiter manages per-IP rate limiters. Entries idle for longer than
// ttl are pruned on access.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiterEntry
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastPrune time.Time
	now       func() time.Time

	// trustProxy keys clients by X-Forwarded-For / X-Real-IP. Only safe
	// behind a reverse proxy that overwrites those headers.
	trustProxy bool
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPRateLimiter allows perMinute events per client per minute, in bursts
// of up to perMinute.
func newIPRateLimiter(perMinute int, trustProxy bool) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*ipLimiterEntry),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		ttl:      10 * time.Minute,
		now:      time.Now,

		trustProxy: trustProxy,
	}
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastPrune) > time.Minute {
		for key, entry := range rl.limiters {
			if now.Sub(entry.lastSeen) > rl.ttl {
				delete(rl.limiters, key)
			}
		}
		rl.lastPrune = now
	}

	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &ipLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// limit wraps a handler with per-IP rate limiting
func (rl *ipRateLimiter) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r, rl.trustProxy)) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next(w, r)
	}
}

// clientIP extracts the client address. Proxy headers are honored only when
// trustProxy is set, otherwise any client could pick its own key.
func clientIP(r *http.Request, trustProxy bool) string {
	if !trustProxy {
		return remoteHost(r.RemoteAddr)
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return remoteHost(r.RemoteAddr)
}

func remoteHost(addr string) string {
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
