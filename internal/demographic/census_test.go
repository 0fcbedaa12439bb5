package demographic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealscout/internal/resilience"
	"github.com/sells-group/dealscout/pkg/census"
)

type mockCensus struct {
	mock.Mock
}

func (m *mockCensus) Profile(ctx context.Context, location string) (*census.Profile, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*census.Profile), args.Error(1)
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestCensusProvider_Fetch(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mc := new(mockCensus)
	mc.On("Profile", mock.Anything, "Phoenix, AZ").Return(&census.Profile{
		Population:         1_600_000,
		MedianAge:          34.1,
		PctOver55:          24.5,
		MedianIncome:       72_000,
		Establishments:     40_000,
		SmallBusinessPct:   88,
		SelfEmploymentRate: 9.4,
		LandAreaSqMi:       500,
	}, nil)

	p := NewCensusProvider(mc, fastRetry())
	p.now = func() time.Time { return now }

	sig, err := p.Fetch(context.Background(), "Phoenix, AZ")
	require.NoError(t, err)

	assert.Equal(t, "Phoenix, AZ", sig.Location)
	assert.Equal(t, int64(1_600_000), sig.Population)
	assert.InDelta(t, 25.0, sig.BusinessDensity, 0.001)
	assert.InDelta(t, 3200.0, sig.PopulationDensity, 0.001)
	assert.InDelta(t, 24.5, sig.PctOver55, 0.001)
	assert.False(t, sig.Synthetic)
	assert.Equal(t, now, sig.FetchedAt)
}

func TestCensusProvider_RetriesTransient(t *testing.T) {
	mc := new(mockCensus)
	transient := resilience.NewTransientError(assert.AnError, 503)
	mc.On("Profile", mock.Anything, "Mesa, AZ").Return(nil, transient).Once()
	mc.On("Profile", mock.Anything, "Mesa, AZ").Return(&census.Profile{Population: 500_000}, nil).Once()

	sig, err := NewCensusProvider(mc, fastRetry()).Fetch(context.Background(), "Mesa, AZ")
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), sig.Population)
	assert.Zero(t, sig.PopulationDensity)
	mc.AssertNumberOfCalls(t, "Profile", 2)
}

func TestCensusProvider_NotFoundNotRetried(t *testing.T) {
	mc := new(mockCensus)
	mc.On("Profile", mock.Anything, "Nowhere, ZZ").Return(nil, census.ErrNotFound)

	_, err := NewCensusProvider(mc, fastRetry()).Fetch(context.Background(), "Nowhere, ZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demographic: census profile")
	mc.AssertNumberOfCalls(t, "Profile", 1)
}

func TestCensusProvider_FailureFallsBackToSynthetic(t *testing.T) {
	mc := new(mockCensus)
	mc.On("Profile", mock.Anything, "Tucson, AZ").Return(nil, census.ErrNotFound)

	c := NewCache(NewCensusProvider(mc, fastRetry()))
	sig, err := c.GetSignal(context.Background(), "Tucson, AZ")
	require.NoError(t, err)
	assert.True(t, sig.Synthetic)
	assert.Equal(t, Synthetic("Tucson, AZ").Population, sig.Population)
}

func TestCensusProvider_OpenCircuitServesSynthetic(t *testing.T) {
	mc := new(mockCensus)
	mc.On("Profile", mock.Anything, mock.Anything).
		Return(nil, &census.APIError{StatusCode: 503, Body: "maintenance"})

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	p := NewCensusProvider(mc, resilience.RetryConfig{MaxAttempts: 1}, WithCensusBreaker(cb))

	_, err := p.Fetch(context.Background(), "Flagstaff, AZ")
	require.Error(t, err)
	assert.Equal(t, resilience.CircuitOpen, cb.State())

	sig, err := NewCache(p).GetSignal(context.Background(), "Yuma, AZ")
	require.NoError(t, err)
	assert.True(t, sig.Synthetic)
	mc.AssertNumberOfCalls(t, "Profile", 1)
}

func TestCensusProvider_NotFoundDoesNotTrip(t *testing.T) {
	mc := new(mockCensus)
	mc.On("Profile", mock.Anything, mock.Anything).Return(nil, census.ErrNotFound)

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute})
	p := NewCensusProvider(mc, fastRetry(), WithCensusBreaker(cb))
	for range 3 {
		_, _ = p.Fetch(context.Background(), "Nowhere, ZZ")
	}
	assert.Equal(t, resilience.CircuitClosed, cb.State())
	mc.AssertNumberOfCalls(t, "Profile", 3)
}
