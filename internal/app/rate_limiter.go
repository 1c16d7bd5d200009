package app

import (
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/domain"
)

const (
	DefaultRateLimit  = 60
	DefaultRateWindow = time.Minute
)

// RateLimiter is a per-user sliding window over accepted attempts.
type RateLimiter struct {
	mu       sync.Mutex
	history  map[domain.UserID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if interval <= 0 {
		interval = DefaultRateWindow
	}
	return &RateLimiter{
		history:  make(map[domain.UserID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Allow records an attempt for uid and reports whether it fits the window.
// Rejected attempts are not recorded.
func (rl *RateLimiter) Allow(uid domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	attempts := pruneOld(rl.history[uid], now.Add(-rl.interval))
	if len(attempts) >= rl.limit {
		rl.history[uid] = attempts
		return false
	}
	rl.history[uid] = append(attempts, now)
	return true
}

// Prune forgets users with no attempt inside the current window.
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Add(-rl.interval)
	removed := 0
	for uid, attempts := range rl.history {
		fresh := pruneOld(attempts, windowStart)
		if len(fresh) == 0 {
			delete(rl.history, uid)
			removed++
			continue
		}
		rl.history[uid] = fresh
	}
	return removed
}

func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.history)
}

// pruneOld drops timestamps at or before windowStart. The slice is sorted.
func pruneOld(attempts []time.Time, windowStart time.Time) []time.Time {
	i := 0
	for i < len(attempts) && !attempts[i].After(windowStart) {
		i++
	}
	return attempts[i:]
}
