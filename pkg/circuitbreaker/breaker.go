// Package circuitbreaker wraps sony/gobreaker with the defaults used for
// downstream service calls.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	DefaultMaxFailures = 5
	DefaultOpenTimeout = 30 * time.Second
)

// ErrOpen is returned without calling the downstream while the breaker is open
// or while a half-open breaker already has its probe request in flight.
var ErrOpen = errors.New("circuit breaker is open")

type Settings struct {
	Name string
	// MaxFailures consecutive failures trip the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// IsSuccessful reports whether err should count as a success. Expected
	// outcomes like "not found" belong here. nil means only err == nil succeeds.
	IsSuccessful func(err error) bool
	// IsExcluded reports whether err should not be counted at all, e.g. a
	// call the caller abandoned.
	IsExcluded func(err error) bool
	// OnStateChange is called with the state names on every transition.
	OnStateChange func(name, from, to string)
}

type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

func New[T any](s Settings) *Breaker[T] {
	if s.MaxFailures == 0 {
		s.MaxFailures = DefaultMaxFailures
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = DefaultOpenTimeout
	}

	maxFailures := s.MaxFailures
	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: s.IsSuccessful,
		IsExcluded:   s.IsExcluded,
	}
	if s.OnStateChange != nil {
		onChange := s.OnStateChange
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			onChange(name, from.String(), to.String())
		}
	}

	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](st)}
}

// Execute runs fn unless the breaker rejects the call, in which case the
// returned error wraps ErrOpen.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return res, errors.Join(ErrOpen, err)
	}
	return res, err
}

// State returns "closed", "half-open" or "open".
func (b *Breaker[T]) State() string {
	return b.cb.State().String()
}

func (b *Breaker[T]) Name() string {
	return b.cb.Name()
}
