// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. A key may make limit requests in
// a burst and regains one request every window/limit. Idle buckets expire
// after two windows.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	every   rate.Limit
	idle    time.Duration
	buckets *cache.Cache
}

// New creates a limiter allowing limit requests per window for each key.
func New(limit int, window time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	idle := 2 * window
	return &Limiter{
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
		idle:    idle,
		buckets: cache.New(idle, idle),
	}
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	if v, ok := l.buckets.Get(key); ok {
		b := v.(*rate.Limiter)
		l.buckets.Set(key, b, l.idle)
		return b
	}
	b := rate.NewLimiter(l.every, l.limit)
	l.buckets.Set(key, b, l.idle)
	return b
}

// Allow consumes one request for key and reports whether it was permitted.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bucket(key).Allow()
}

// Remaining returns the whole requests key may still make right now.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.buckets.Get(key)
	if !ok {
		return l.limit
	}
	n := int(math.Floor(v.(*rate.Limiter).Tokens()))
	switch {
	case n < 0:
		return 0
	case n > l.limit:
		return l.limit
	}
	return n
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets.Delete(key)
}

// ClientIP returns the caller's address: the first X-Forwarded-For hop,
// then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts per IP and per account identifier.
type LoginLimiter struct {
	ip      *Limiter
	account *Limiter
}

// NewLoginLimiter allows ipLimit attempts per window from one address and
// half as many (at least one) per account.
func NewLoginLimiter(ipLimit int, window time.Duration) *LoginLimiter {
	acct := ipLimit / 2
	if acct < 1 {
		acct = 1
	}
	return &LoginLimiter{
		ip:      New(ipLimit, window),
		account: New(acct, window),
	}
}

// Check records an attempt and returns false with a user-facing reason when
// it must be refused. account may be empty.
func (ll *LoginLimiter) Check(r *http.Request, account string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := strings.ToLower(strings.TrimSpace(account)); key != "" {
		if !ll.account.Allow(key) {
			return false, "Too many login attempts for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// Succeeded clears the account's counter after a successful login.
func (ll *LoginLimiter) Succeeded(account string) {
	if key := strings.ToLower(strings.TrimSpace(account)); key != "" {
		ll.account.Reset(key)
	}
}
