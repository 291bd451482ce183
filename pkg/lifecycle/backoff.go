package lifecycle

import (
	"math/rand"
	"time"
)

// Backoff tracks a doubling, capped retry delay.
// It does not sleep; callers schedule the returned delay themselves.
type Backoff struct {
	floor   time.Duration
	ceiling time.Duration
	current time.Duration

	// Jitter is the fraction (0..1) by which Next may deviate from the
	// tracked delay. Zero keeps delays exact.
	Jitter float64
	rand   func() float64
}

// NewBackoff creates a backoff starting at floor and never exceeding ceiling.
func NewBackoff(floor, ceiling time.Duration) *Backoff {
	if ceiling < floor {
		ceiling = floor
	}
	return &Backoff{
		floor:   floor,
		ceiling: ceiling,
		current: floor,
		rand:    rand.Float64,
	}
}

// Next returns the delay to wait before the upcoming attempt and doubles the
// tracked delay for the attempt after it.
func (b *Backoff) Next() time.Duration {
	delay := b.current
	if b.Jitter > 0 {
		j := float64(delay) * b.Jitter * (b.rand()*2 - 1)
		delay = time.Duration(float64(delay) + j)
	}

	b.current *= 2
	if b.current > b.ceiling {
		b.current = b.ceiling
	}
	return delay
}

// Reset returns the tracked delay to the floor.
func (b *Backoff) Reset() {
	b.current = b.floor
}

// Current returns the delay the next call to Next will be based on.
func (b *Backoff) Current() time.Duration {
	return b.current
}

// AtFloor reports whether no failure has been recorded since the last Reset.
func (b *Backoff) AtFloor() bool {
	return b.current == b.floor
}
