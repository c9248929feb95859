package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("cache circuit breaker open")

type ProtectedConfig struct {
	Timeout          time.Duration // hard timeout per call
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open
}

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

// Protected puts a timeout and a circuit breaker in front of a remote cache
// so an unreachable backend costs one fast miss instead of a dial timeout.
//
// A failed Invalidate marks the cache stale: nothing is served until a later
// Invalidate succeeds, so entries from before a catalog change are never read.
type Protected struct {
	inner Cache
	cfg   ProtectedConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
	stale               bool
}

func NewProtected(inner Cache, cfg ProtectedConfig) *Protected {
	//defaults
	if cfg.Timeout <= 0 {
		cfg.Timeout = 200 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &Protected{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (p *Protected) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if p.isStale() {
		if err := p.Invalidate(ctx); err != nil {
			return nil, false, err
		}
	}

	var (
		val []byte
		ok  bool
	)
	err := p.call(ctx, func(ctx context.Context) error {
		var err error
		val, ok, err = p.inner.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return val, ok, nil
}

func (p *Protected) Set(ctx context.Context, key string, val []byte) error {
	if p.isStale() {
		return nil
	}

	return p.call(ctx, func(ctx context.Context) error {
		return p.inner.Set(ctx, key, val)
	})
}

func (p *Protected) Invalidate(ctx context.Context) error {
	err := p.call(ctx, p.inner.Invalidate)

	p.mu.Lock()
	p.stale = err != nil
	p.mu.Unlock()

	return err
}

// State reports the breaker state, for logs and tests.
func (p *Protected) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.state)
}

func (p *Protected) isStale() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stale
}

func (p *Protected) call(ctx context.Context, fn func(ctx context.Context) error) error {
	// fail-fast gate
	if !p.allowRequest() {
		return ErrCircuitOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err := fn(callCtx)
	p.afterRequest(err)
	return err
}

func (p *Protected) allowRequest() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateClosed:
		return true
	case stateOpen:
		if p.now().Sub(p.openedAt) >= p.cfg.Cooldown {
			p.state = stateHalfOpen
			p.halfOpenInFlight = 1
			return true
		}
		return false
	case stateHalfOpen:
		if p.halfOpenInFlight >= p.cfg.HalfOpenMaxCalls {
			return false
		}
		p.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (p *Protected) afterRequest(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateHalfOpen && p.halfOpenInFlight > 0 {
		p.halfOpenInFlight--
	}

	if err == nil {
		p.consecutiveFailures = 0
		p.state = stateClosed
		return
	}

	p.consecutiveFailures++

	// a failed trial call reopens immediately
	if p.state == stateHalfOpen {
		p.state = stateOpen
		p.openedAt = p.now()
		return
	}

	if p.consecutiveFailures >= p.cfg.FailureThreshold {
		p.state = stateOpen
		p.openedAt = p.now()
	}
}
