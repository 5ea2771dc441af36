package web

// ratelimit.go holds two limiters:
//
//   - rateLimiter: a per-IP token bucket applied to every route
//   - uploadQuota: an hourly budget per user for uploads and Drive imports,
//     kept in memory or, with REDIS_URL set, in a shared Redis counter so
//     every instance sees the same budget

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/quizdeck/internal/config"
	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/logging"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a caller exhausted its budget.
var ErrRateLimited = errors.New("rate limit exceeded")

const uploadWindow = time.Hour

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter allows n requests per window with bursts up to n.
func newRateLimiter(n int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(max(n, 1))),
		burst:    max(n, 1),
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes visitors idle for two windows.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(rl.window)
		rl.mu.Lock()
		for key, v := range rl.visitors {
			if time.Since(v.lastSeen) > rl.window*2 {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			respondError(w, r, ErrRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr, which TrustedRealIP has
// already resolved.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// uploadQuota counts uploads per key within a window.
type uploadQuota interface {
	Allow(ctx context.Context, key string) (bool, error)
}

func newUploadQuota(cfg config.RateLimitConfig, rdb *redis.Client) uploadQuota {
	if !cfg.Enabled {
		return nil
	}
	if rdb != nil {
		return &redisQuota{rdb: rdb, limit: int64(cfg.UploadPerHour), window: uploadWindow}
	}
	return &memoryQuota{rl: newRateLimiter(cfg.UploadPerHour, uploadWindow)}
}

type memoryQuota struct {
	rl *rateLimiter
}

func (q *memoryQuota) Allow(_ context.Context, key string) (bool, error) {
	return q.rl.allow(key), nil
}

// redisQuota is a fixed-window counter shared by all instances.
type redisQuota struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

func (q *redisQuota) key(id string) string {
	now := time.Now
	if q.now != nil {
		now = q.now
	}
	slot := now().Unix() / int64(q.window.Seconds())
	return fmt.Sprintf("quizdeck:upload:%s:%d", id, slot)
}

func (q *redisQuota) Allow(ctx context.Context, id string) (bool, error) {
	key := q.key(id)

	var incr *redis.IntCmd
	_, err := q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, q.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upload quota: %w", err)
	}
	return incr.Val() <= q.limit, nil
}

// uploadLimit applies the upload quota, keyed by user when authenticated.
// A failing quota store lets the request through.
func (s *Server) uploadLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.quota == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := "ip_" + clientIP(r)
		if u := core.UserFromContext(r.Context()); u != nil {
			key = "user_" + strconv.FormatInt(u.ID, 10)
		}

		ok, err := s.quota.Allow(r.Context(), key)
		if err != nil {
			logging.FromContext(r.Context()).Warn("upload quota unavailable", "error", err)
			ok = true
		}
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(uploadWindow.Seconds())))
			respondError(w, r, ErrRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
