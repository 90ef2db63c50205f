package resilience

import (
	"errors"
	"testing"
	"time"
)

var (
	errTransient = errors.New("transient")
	errBadInput  = errors.New("bad input")
)

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}

func TestCircuitBreaker_OpensAfterConsecutiveTransientFailures(t *testing.T) {
	b := NewCircuitBreaker[int]("test", CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute}, isTransient, nil)

	for i := 0; i < 2; i++ {
		if _, err := b.Execute(func() (int, error) { return 0, errTransient }); !errors.Is(err, errTransient) {
			t.Fatalf("expected transient error on attempt %d, got %v", i, err)
		}
	}
	if state := b.State(); state != "open" {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	_, err := b.Execute(func() (int, error) { return 1, nil })
	if !IsOpen(err) {
		t.Fatalf("expected breaker rejection, got %v", err)
	}
}

func TestCircuitBreaker_IgnoresNonTransientErrors(t *testing.T) {
	b := NewCircuitBreaker[int]("test", CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute}, isTransient, nil)

	for i := 0; i < 3; i++ {
		if _, err := b.Execute(func() (int, error) { return 0, errBadInput }); !errors.Is(err, errBadInput) {
			t.Fatalf("expected bad input error, got %v", err)
		}
	}
	if state := b.State(); state != "closed" {
		t.Fatalf("expected closed breaker, got %s", state)
	}
}

func TestCircuitBreaker_DisabledPassesThrough(t *testing.T) {
	b := NewCircuitBreaker[int]("test", CircuitBreakerConfig{FailureThreshold: 1}, isTransient, nil)

	for i := 0; i < 3; i++ {
		_, _ = b.Execute(func() (int, error) { return 0, errTransient })
	}
	got, err := b.Execute(func() (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Fatalf("expected pass-through call, got=%d err=%v", got, err)
	}
}

func TestCircuitBreakerConfig_Defaults(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true}.withDefaults()
	if got.FailureThreshold != 5 || got.OpenTimeout != 30*time.Second || got.HalfOpenMaxReq != 1 {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	kept := CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Second, HalfOpenMaxReq: 3}.withDefaults()
	if kept.FailureThreshold != 2 || kept.OpenTimeout != time.Second || kept.HalfOpenMaxReq != 3 {
		t.Fatalf("explicit values overwritten: %+v", kept)
	}
}
