// Package ratelimit implements per-caller admission control with two
// sliding windows (one minute and one hour).
package ratelimit

import (
	"math"
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
)

// Config holds the limiter ceilings
type Config struct {
	Enabled   bool
	PerMinute int
	PerHour   int
}

// bucket holds the admitted-request timestamps for one key, oldest first.
// The hour window is a superset of the minute window, so only one slice is kept.
type bucket struct {
	mu       sync.Mutex
	admitted []time.Time
	lastSeen time.Time

	// dead is set by Sweep once the bucket left the map
	dead bool
}

// Limiter tracks request budgets per caller key.
// Construct once and share by pointer; distinct keys never contend.
type Limiter struct {
	cfg     Config
	now     func() time.Time
	buckets map[string]*bucket
	mu      sync.RWMutex
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock replaces time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter. Non-positive ceilings are treated as zero
// headroom for that window.
func NewLimiter(cfg Config, opts ...Option) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Enabled reports whether limiting is active
func (l *Limiter) Enabled() bool {
	return l.cfg.Enabled
}

// Limits returns the per-minute and per-hour ceilings
func (l *Limiter) Limits() (perMinute, perHour int) {
	return l.cfg.PerMinute, l.cfg.PerHour
}

func (l *Limiter) bucketFor(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another goroutine may have created it while we waited for the lock
	if b, ok := l.buckets[key]; ok {
		return b
	}
	b = &bucket{}
	l.buckets[key] = b
	return b
}

// lock returns key's live bucket with b.mu held. The caller unlocks.
func (l *Limiter) lock(key string) *bucket {
	return l.relock(l.bucketFor(key), key)
}

// relock locks b, re-fetching key's bucket while Sweep has retired it
func (l *Limiter) relock(b *bucket, key string) *bucket {
	for {
		b.mu.Lock()
		if !b.dead {
			return b
		}
		b.mu.Unlock()
		b = l.bucketFor(key)
	}
}

// prune drops timestamps outside the hour window. Caller holds b.mu.
func (b *bucket) prune(now time.Time) {
	cutoff := now.Add(-hourWindow)
	i := 0
	for i < len(b.admitted) && !b.admitted[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.admitted = append(b.admitted[:0], b.admitted[i:]...)
	}
}

// counts returns the number of admissions in the minute and hour windows.
// Caller holds b.mu and has pruned.
func (b *bucket) counts(now time.Time) (minute, hour int) {
	cutoff := now.Add(-minuteWindow)
	hour = len(b.admitted)
	for i := len(b.admitted) - 1; i >= 0 && b.admitted[i].After(cutoff); i-- {
		minute++
	}
	return minute, hour
}

func (l *Limiter) allowed(b *bucket, now time.Time) bool {
	b.prune(now)
	minute, hour := b.counts(now)
	return minute < l.cfg.PerMinute && hour < l.cfg.PerHour
}

// Admit reports whether key may make another request now. It does not record.
func (l *Limiter) Admit(key string) bool {
	if !l.cfg.Enabled {
		return true
	}

	b := l.lock(key)
	defer b.mu.Unlock()

	now := l.now()
	b.lastSeen = now
	return l.allowed(b, now)
}

// Record appends the current time to key's windows
func (l *Limiter) Record(key string) {
	if !l.cfg.Enabled {
		return
	}

	b := l.lock(key)
	defer b.mu.Unlock()

	now := l.now()
	b.lastSeen = now
	b.admitted = append(b.admitted, now)
}

// AdmitAndRecord checks and records under one lock, so concurrent callers
// sharing a key cannot both pass on a stale count.
func (l *Limiter) AdmitAndRecord(key string) bool {
	if !l.cfg.Enabled {
		return true
	}

	b := l.lock(key)
	defer b.mu.Unlock()

	now := l.now()
	b.lastSeen = now
	if !l.allowed(b, now) {
		return false
	}
	b.admitted = append(b.admitted, now)
	return true
}

// Remaining returns the headroom of the more restrictive window, never negative.
// Unbounded (math.MaxInt) when disabled.
func (l *Limiter) Remaining(key string) int {
	if !l.cfg.Enabled {
		return math.MaxInt
	}

	b := l.lock(key)
	defer b.mu.Unlock()

	now := l.now()
	b.prune(now)
	minute, hour := b.counts(now)
	return max(0, min(l.cfg.PerMinute-minute, l.cfg.PerHour-hour))
}

// RetryAfter returns how long key must wait until a request would be
// admitted. Zero if it would be admitted now.
func (l *Limiter) RetryAfter(key string) time.Duration {
	if !l.cfg.Enabled {
		return 0
	}

	b := l.lock(key)
	defer b.mu.Unlock()

	now := l.now()
	b.prune(now)
	minute, hour := b.counts(now)

	var wait time.Duration
	if hour >= l.cfg.PerHour {
		wait = max(wait, l.expiry(b, hour-l.cfg.PerHour, hourWindow, now))
	}
	if minute >= l.cfg.PerMinute {
		first := len(b.admitted) - minute
		wait = max(wait, l.expiry(b, first+minute-l.cfg.PerMinute, minuteWindow, now))
	}
	return wait
}

// expiry is the time until admitted[idx] leaves a window of the given size
func (l *Limiter) expiry(b *bucket, idx int, window time.Duration, now time.Time) time.Duration {
	if idx < 0 || idx >= len(b.admitted) {
		return window
	}
	return max(0, b.admitted[idx].Add(window).Sub(now))
}

// Sweep drops keys idle for longer than the hour window and returns how many
// were removed
func (l *Limiter) Sweep() int {
	now := l.now()
	cutoff := now.Add(-hourWindow)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		b.mu.Lock()
		if b.lastSeen.Before(cutoff) {
			b.dead = true
			delete(l.buckets, key)
			removed++
		}
		b.mu.Unlock()
	}
	return removed
}
