package resilience

import "time"

// CircuitBreakerConfig tunes the breaker in front of the data provider.
// Zero values fall back to the defaults below.
type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold is the number of consecutive transient failures that
	// opens the breaker.
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	// a single probe decides whether a recovered provider closes the breaker
	c.HalfOpenMaxReq = max(c.HalfOpenMaxReq, 1)
	return c
}
