package demographic

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscout/internal/model"
	"github.com/sells-group/dealscout/internal/resilience"
	"github.com/sells-group/dealscout/pkg/census"
)

// CensusProvider fetches live demographic signals from the census profile API.
type CensusProvider struct {
	client  census.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
	now     func() time.Time
}

var _ Provider = (*CensusProvider)(nil)

// CensusOption configures a CensusProvider.
type CensusOption func(*CensusProvider)

// WithCensusBreaker guards profile fetches with cb. While it is open, Fetch
// fails immediately and the cache serves synthetic data.
func WithCensusBreaker(cb *resilience.CircuitBreaker) CensusOption {
	return func(p *CensusProvider) { p.breaker = cb }
}

// NewCensusProvider wraps a census client. Transient failures are retried.
func NewCensusProvider(client census.Client, retry resilience.RetryConfig, opts ...CensusOption) *CensusProvider {
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("census", "profile")
	}
	p := &CensusProvider{client: client, retry: retry, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Fetch implements Provider.
func (p *CensusProvider) Fetch(ctx context.Context, location string) (*model.DemographicSignal, error) {
	prof, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) (*census.Profile, error) {
		return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*census.Profile, error) {
			return p.client.Profile(ctx, location)
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "demographic: census profile")
	}
	return fromProfile(location, prof, p.now()), nil
}

func fromProfile(location string, prof *census.Profile, fetchedAt time.Time) *model.DemographicSignal {
	sig := &model.DemographicSignal{
		Location:           location,
		Population:         prof.Population,
		MedianAge:          prof.MedianAge,
		PctOver55:          prof.PctOver55,
		MedianIncome:       prof.MedianIncome,
		SmallBusinessPct:   prof.SmallBusinessPct,
		SelfEmploymentRate: prof.SelfEmploymentRate,
		FetchedAt:          fetchedAt,
	}
	if prof.Population > 0 {
		sig.BusinessDensity = round1(float64(prof.Establishments) / float64(prof.Population) * 1000)
	}
	if prof.LandAreaSqMi > 0 {
		sig.PopulationDensity = round1(float64(prof.Population) / prof.LandAreaSqMi)
	}
	return sig
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
