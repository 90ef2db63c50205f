package resilience

import (
	"errors"

	"github.com/riskibarqy/cfb-predictor/internal/platform/logging"
	gobreaker "github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards one upstream dependency. Only errors matching
// isFailure count toward opening it; everything else is treated as a
// healthy response.
type CircuitBreaker[T any] struct {
	cb      *gobreaker.CircuitBreaker[T]
	enabled bool
}

func NewCircuitBreaker[T any](name string, cfg CircuitBreakerConfig, isFailure func(error) bool, logger *logging.Logger) *CircuitBreaker[T] {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.withDefaults()
	threshold := uint32(cfg.FailureThreshold)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(cfg.HalfOpenMaxReq),
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isFailure == nil || !isFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &CircuitBreaker[T]{
		cb:      gobreaker.NewCircuitBreaker[T](settings),
		enabled: cfg.Enabled,
	}
}

func (b *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	if !b.enabled {
		return fn()
	}
	return b.cb.Execute(fn)
}

func (b *CircuitBreaker[T]) State() string {
	return b.cb.State().String()
}

// IsOpen reports whether err is a breaker rejection rather than a call failure.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
