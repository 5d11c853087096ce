package connection

import (
	"math/rand"
	"sync"
	"time"
)

// Retry delay defaults.
const (
	// DefaultRetryDelay is the fixed delay between connection attempts.
	DefaultRetryDelay = 10 * time.Second

	// BackoffMultiplier is the growth factor when exponential backoff is on.
	BackoffMultiplier = 2.0

	// JitterFactor is the maximum jitter as a fraction of base delay when
	// exponential backoff is on.
	JitterFactor = 0.25
)

// Backoff calculates retry delays. The zero-configuration policy is a fixed
// delay; a multiplier above 1 gives exponential backoff capped at Max.
type Backoff struct {
	mu sync.Mutex

	// Current backoff delay (before jitter)
	current time.Duration

	// Configuration
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64

	// Attempt counter
	attempts int

	// Random source for jitter
	rng *rand.Rand
}

// BackoffConfig allows customizing backoff parameters.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// RetryPolicy returns the backoff configuration for a retry delay and an
// optional maximum. A maximum above retry enables exponential backoff.
func RetryPolicy(retry, max time.Duration) BackoffConfig {
	if retry <= 0 {
		retry = DefaultRetryDelay
	}
	if max > retry {
		return BackoffConfig{
			Initial:    retry,
			Max:        max,
			Multiplier: BackoffMultiplier,
			Jitter:     JitterFactor,
		}
	}
	return BackoffConfig{Initial: retry, Max: retry, Multiplier: 1}
}

// NewBackoff creates a fixed DefaultRetryDelay backoff.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(RetryPolicy(DefaultRetryDelay, 0))
}

// NewBackoffWithConfig creates a backoff calculator with custom settings.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = DefaultRetryDelay
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &Backoff{
		current:    cfg.Initial,
		initial:    cfg.Initial,
		max:        cfg.Max,
		multiplier: cfg.Multiplier,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay (with jitter) and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// Peek returns the current delay without advancing.
func (b *Backoff) Peek() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addJitter(b.current)
}

// Reset resets the backoff to initial values.
// Call this after a successful connection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of delays handed out since last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Current returns the current base delay (without jitter).
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// addJitter adds random jitter to a delay.
func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	jitterAmount := time.Duration(float64(d) * b.jitter * b.rng.Float64())
	return d + jitterAmount
}
