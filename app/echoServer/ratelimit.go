package echoServer

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limiterIdleTTL exceeds the one-minute refill window, so an evicted
// bucket would have been full again anyway.
const limiterIdleTTL = 3 * time.Minute

type ipLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// LimiterStore holds one token bucket per client IP. Buckets idle for
// limiterIdleTTL are dropped on the next sweep.
type LimiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	perMinute int
	lastSweep time.Time
	now       func() time.Time
}

func NewLimiterStore(perMinute int) *LimiterStore {
	if perMinute <= 0 {
		perMinute = 120
	}
	return &LimiterStore{
		limiters:  make(map[string]*ipLimiter),
		perMinute: perMinute,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (s *LimiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterIdleTTL {
		s.sweep(now)
	}

	l, ok := s.limiters[ip]
	if !ok {
		l = &ipLimiter{lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)}
		s.limiters[ip] = l
	}
	l.lastSeen = now
	return l.lim
}

func (s *LimiterStore) sweep(now time.Time) {
	for ip, l := range s.limiters {
		if now.Sub(l.lastSeen) >= limiterIdleTTL {
			delete(s.limiters, ip)
		}
	}
	s.lastSweep = now
}

// Len reports how many client IPs are tracked.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimit rejects requests beyond the per-IP budget with 429.
func RateLimit(store *LimiterStore, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !store.get(ip).Allow() {
				log.Warn("rate limit exceeded", "ip", ip, "path", c.Path())
				return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "rate limit exceeded, try again later"})
			}
			return next(c)
		}
	}
}
