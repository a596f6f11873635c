package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/taxlens/invoice-analyzer/internal/common"
)

func TestExecuteSingleAttemptByDefault(t *testing.T) {
	exec := NewExecutor(Config{BreakerEnabled: false})

	attempts := 0
	errCall := fmt.Errorf("%w: status 500", common.ErrModelInvocation)
	err := exec.Execute(context.Background(), "llm.extract", func(context.Context) error {
		attempts++
		return errCall
	}, ModelCallClassifier)

	if !errors.Is(err, common.ErrModelInvocation) {
		t.Fatalf("expected model invocation error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestExecuteRetriesWhenConfigured(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	attempts := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("%w: transient", common.ErrModelInvocation)
		}
		return nil
	}, ModelCallClassifier)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryParseFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	attempts := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return fmt.Errorf("%w: garbage reply", common.ErrParseFailure)
	}, ModelCallClassifier)
	if !errors.Is(err, common.ErrParseFailure) {
		t.Fatalf("expected parse failure, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errCall := fmt.Errorf("%w: status 503", common.ErrModelInvocation)
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "llm.extract", func(context.Context) error {
			return errCall
		}, ModelCallClassifier)
		if !errors.Is(err, common.ErrModelInvocation) {
			t.Fatalf("expected invocation error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "llm.extract", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, ModelCallClassifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("expected IsCircuitOpen to report true for %v", err)
	}
}

func TestParseFailuresDoNotTripBreaker(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    1,
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  50 * time.Millisecond,
	})

	for i := 0; i < 5; i++ {
		err := exec.Execute(context.Background(), "llm.extract", func(context.Context) error {
			return fmt.Errorf("%w: fenced prose", common.ErrParseFailure)
		}, ModelCallClassifier)
		if !errors.Is(err, common.ErrParseFailure) {
			t.Fatalf("expected parse failure passthrough, got %v", err)
		}
	}
}
