package adapter

import (
	"context"
	"sync"
	"time"
)

type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half-open"
)

type CircuitConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxCalls int
}

func DefaultCircuitConfig() CircuitConfig {
	return CircuitConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// CircuitBreaker trips after consecutive provider failures so a struggling
// upstream is not hammered while it recovers. Validation failures never
// reach it; only adapter calls count.
type CircuitBreaker struct {
	config        CircuitConfig
	state         CircuitState
	failures      int
	successes     int
	lastFailure   time.Time
	halfOpenCalls int
	mu            sync.Mutex
}

func NewCircuitBreaker(config CircuitConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  CircuitClosed,
	}
}

func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		if time.Since(cb.lastFailure) >= cb.config.OpenTimeout {
			cb.state = CircuitHalfOpen
			cb.halfOpenCalls = 0
			cb.successes = 0
			return cb.allowHalfOpen()
		}
		return false

	case CircuitHalfOpen:
		return cb.allowHalfOpen()
	}

	return false
}

func (cb *CircuitBreaker) allowHalfOpen() bool {
	if cb.halfOpenCalls < cb.config.HalfOpenMaxCalls {
		cb.halfOpenCalls++
		return true
	}
	return false
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures = 0

	case CircuitHalfOpen:
		cb.successes++
		cb.halfOpenCalls--
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = CircuitClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = time.Now()

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.state = CircuitOpen
		}

	case CircuitHalfOpen:
		cb.state = CircuitOpen
		cb.halfOpenCalls = 0
		cb.successes = 0
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// WithBreaker wraps an adapter with a circuit breaker. An open circuit
// short-circuits to FailUnreachable without touching the network; unknown
// symbols are the provider answering correctly and do not trip it.
type breakerAdapter struct {
	inner Adapter
	cb    *CircuitBreaker
}

func WithBreaker(inner Adapter, cb *CircuitBreaker) Adapter {
	return &breakerAdapter{inner: inner, cb: cb}
}

func (b *breakerAdapter) Connect(ctx context.Context) error {
	return b.inner.Connect(ctx)
}

func (b *breakerAdapter) Call(ctx context.Context, q Query) (*Result, error) {
	if !b.cb.Allow() {
		return nil, NewError(FailUnreachable, "provider circuit open", nil)
	}

	result, err := b.inner.Call(ctx, q)
	if err != nil {
		aerr := Classify(err, "provider call failed")
		if aerr.Kind == FailUnknownSymbol {
			b.cb.RecordSuccess()
		} else {
			b.cb.RecordFailure()
		}
		return nil, aerr
	}

	b.cb.RecordSuccess()
	return result, nil
}

func (b *breakerAdapter) Close() error {
	return b.inner.Close()
}
