package worker

import (
	"math"
	"math/rand"
	"time"
)

// Backoff grows Base * 2^attempt up to Cap and adds up to Jitter.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter time.Duration
}

// attempt=0 => 2s, attempt=1 => 4s, attempt=2 => 8s ... capped at 5m
var DefaultBackoff = Backoff{
	Base:   2 * time.Second,
	Cap:    5 * time.Minute,
	Jitter: 250 * time.Millisecond,
}

func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(b.Base) * multiple)

	if delay > b.Cap || delay <= 0 {
		delay = b.Cap
	}

	if b.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(b.Jitter)))
	}
	return delay
}
