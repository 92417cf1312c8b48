package ratelimiter

import (
	"strings"
	"sync"
	"time"
)

// Namespaces used by the API.
const (
	NamespaceLoreGenerate  = "lore_generate"
	NamespaceAudioGenerate = "audio_generate"
	NamespaceAuthExchange  = "auth_exchange"
)

// RatePolicy is the sliding-window limit of one namespace.
type RatePolicy struct {
	MaxAttempts int
	Window      time.Duration
}

// RateLimiter is an in-memory sliding-window limiter. Attempts are tracked per
// namespace:key and each namespace has its own policy.
//
//	rl := ratelimiter.NewRateLimiter()
//	rl.SetPolicy(ratelimiter.NamespaceLoreGenerate, 10, time.Minute)
//	if ok, retry := rl.Allow(ratelimiter.NamespaceLoreGenerate, userID); !ok { ... }
type RateLimiter struct {
	mu          sync.Mutex
	attempts    map[string][]time.Time
	policies    map[string]RatePolicy
	now         func() time.Time
	stopCleanup chan struct{}
	stopped     bool
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine.
func NewRateLimiter() *RateLimiter {
	rl := newRateLimiter(time.Now)
	go rl.cleanupLoop(time.Minute)
	return rl
}

func newRateLimiter(now func() time.Time) *RateLimiter {
	return &RateLimiter{
		attempts:    make(map[string][]time.Time),
		policies:    make(map[string]RatePolicy),
		now:         now,
		stopCleanup: make(chan struct{}),
	}
}

// SetPolicy configures the limit of a namespace. A non-positive maxAttempts
// disables limiting for that namespace.
func (rl *RateLimiter) SetPolicy(namespace string, maxAttempts int, window time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.policies[namespace] = RatePolicy{MaxAttempts: maxAttempts, Window: window}
}

// Allow records an attempt and reports whether it fits the namespace policy.
// When denied, retryAfter is the time until the oldest attempt leaves the
// window. Namespaces without a policy are denied.
func (rl *RateLimiter) Allow(namespace, key string) (allowed bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	policy, exists := rl.policies[namespace]
	if !exists {
		return false, 0
	}
	if policy.MaxAttempts <= 0 {
		return true, 0
	}

	now := rl.now()
	compositeKey := namespace + ":" + key
	valid := pruneAttempts(rl.attempts[compositeKey], now.Add(-policy.Window))

	if len(valid) >= policy.MaxAttempts {
		rl.attempts[compositeKey] = valid
		return false, valid[0].Add(policy.Window).Sub(now)
	}

	rl.attempts[compositeKey] = append(valid, now)
	return true, 0
}

// Reset forgets the attempts of namespace:key.
func (rl *RateLimiter) Reset(namespace, key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.attempts, namespace+":"+key)
}

// pruneAttempts keeps the attempts after cutoff. Attempts are appended in
// time order so the survivors stay sorted.
func pruneAttempts(attempts []time.Time, cutoff time.Time) []time.Time {
	valid := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup drops keys without attempts inside their window.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for compositeKey, attempts := range rl.attempts {
		namespace, _, _ := strings.Cut(compositeKey, ":")
		policy, exists := rl.policies[namespace]
		if !exists {
			delete(rl.attempts, compositeKey)
			continue
		}
		if len(pruneAttempts(attempts, now.Add(-policy.Window))) == 0 {
			delete(rl.attempts, compositeKey)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call Stop multiple times.
func (rl *RateLimiter) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.stopped {
		close(rl.stopCleanup)
		rl.stopped = true
	}
}
