package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = NewTransientError(errors.New("upstream busy"), 503)

func failN(t *testing.T, cb *CircuitBreaker, n int, err error) {
	t.Helper()
	for i := 0; i < n; i++ {
		_ = cb.Execute(context.Background(), func(_ context.Context) error { return err })
	}
}

func TestCircuitBreaker_ClosedPassesThrough(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())

	calls := 0
	err := cb.Execute(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})
	failN(t, cb, 3, errBusy)

	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(context.Background(), func(_ context.Context) error {
		t.Error("collaborator called while circuit open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})
	failN(t, cb, 2, errBusy)
	require.NoError(t, cb.Execute(context.Background(), func(_ context.Context) error { return nil }))
	failN(t, cb, 2, errBusy)

	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_IgnoresCancellationAndPermanentErrors(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute})
	failN(t, cb, 5, context.Canceled)
	failN(t, cb, 5, errors.New("census: location not found"))

	assert.Equal(t, CircuitClosed, cb.State())

	failN(t, cb, 2, context.DeadlineExceeded)
	assert.Equal(t, CircuitOpen, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     30 * time.Second,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	cb.nowFunc = func() time.Time { return now }

	failN(t, cb, 1, errBusy)
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(31 * time.Second)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), func(_ context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: 10 * time.Second})
	cb.nowFunc = func() time.Time { return now }

	failN(t, cb, 1, errBusy)
	now = now.Add(11 * time.Second)
	failN(t, cb, 1, errBusy)

	assert.Equal(t, CircuitOpen, cb.State())
}

func TestExecuteVal_NilBreakerRunsDirectly(t *testing.T) {
	v, err := ExecuteVal(context.Background(), nil, func(_ context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFromCircuitConfig(t *testing.T) {
	cfg := FromCircuitConfig(0, 0)
	assert.Equal(t, DefaultCircuitBreakerConfig().FailureThreshold, cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.ResetTimeout)

	cfg = FromCircuitConfig(8, 120)
	assert.Equal(t, 8, cfg.FailureThreshold)
	assert.Equal(t, 2*time.Minute, cfg.ResetTimeout)
}

func TestBreakers_PerCollaborator(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	b := NewBreakers(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute},
		func(name string, _, to CircuitState) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, name+":"+to.String())
		})

	places := b.Get("places")
	assert.Same(t, places, b.Get("places"))

	failN(t, places, 1, errBusy)

	states := b.States()
	assert.Equal(t, CircuitOpen, states["places"])
	assert.Equal(t, CircuitClosed, b.Get("census").State())
	assert.Equal(t, []string{"places:open"}, seen)
}
