// Package breaker wraps a gateway.Adapter with a per-provider circuit breaker.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"paygate/internal/domain/gateway"
	"paygate/internal/domain/payment"
	"paygate/pkg/metrics"

	"github.com/sony/gobreaker"
)

type Config struct {
	// ConsecutiveFailures opens the breaker once reached.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of trial requests allowed while half-open.
	HalfOpenRequests uint32
}

func DefaultConfig() Config {
	return Config{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		HalfOpenRequests:    1,
	}
}

// Adapter counts only retryable failures. Validation-like rejections say
// nothing about provider health.
type Adapter struct {
	next gateway.Adapter
	cb   *gobreaker.CircuitBreaker
}

func Wrap(next gateway.Adapter, cfg Config) *Adapter {
	provider := next.Provider()
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultConfig().ConsecutiveFailures
	}

	metrics.BreakerState.WithLabelValues(string(provider)).Set(stateValue(gobreaker.StateClosed))

	return &Adapter{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        string(provider),
			MaxRequests: cfg.HalfOpenRequests,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !retryable(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
				slog.Warn("circuit breaker state changed",
					slog.String("provider", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			},
		}),
	}
}

func (a *Adapter) Provider() payment.Provider {
	return a.next.Provider()
}

func (a *Adapter) CreateSession(ctx context.Context, req gateway.SessionRequest) (gateway.SessionResult, error) {
	out, err := a.cb.Execute(func() (interface{}, error) {
		return a.next.CreateSession(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return gateway.SessionResult{}, &payment.ProviderError{
			Provider: a.next.Provider(),
			Kind:     payment.KindUnavailable,
			Message:  "circuit breaker " + err.Error(),
		}
	}
	if err != nil {
		return gateway.SessionResult{}, err
	}
	return out.(gateway.SessionResult), nil
}

// State reports the current breaker state.
func (a *Adapter) State() gobreaker.State {
	return a.cb.State()
}

func retryable(err error) bool {
	var pe *payment.ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	var te *payment.TokenAcquisitionError
	if errors.As(err, &te) {
		return te.Retryable()
	}
	return false
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
