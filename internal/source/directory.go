package source

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscout/internal/model"
	"github.com/sells-group/dealscout/internal/resilience"
	"github.com/sells-group/dealscout/pkg/directory"
)

// DirectoryName is the source name of the licensed directory API.
const DirectoryName = "directory"

// DirectoryAdapter searches the licensed directory API, retrying transient
// failures. With a circuit breaker, an unhealthy directory is skipped
// without a request until the breaker's reset timeout.
type DirectoryAdapter struct {
	client  directory.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

var _ Adapter = (*DirectoryAdapter)(nil)

// DirectoryOption configures a DirectoryAdapter.
type DirectoryOption func(*DirectoryAdapter)

// WithDirectoryBreaker guards searches with cb.
func WithDirectoryBreaker(cb *resilience.CircuitBreaker) DirectoryOption {
	return func(a *DirectoryAdapter) { a.breaker = cb }
}

// NewDirectoryAdapter wraps a directory client.
func NewDirectoryAdapter(client directory.Client, retry resilience.RetryConfig, opts ...DirectoryOption) *DirectoryAdapter {
	retry.ShouldRetry = retryableDirectoryError
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(DirectoryName, "search")
	}
	a := &DirectoryAdapter{client: client, retry: retry}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Name implements Adapter.
func (a *DirectoryAdapter) Name() string { return DirectoryName }

// Search implements Adapter.
func (a *DirectoryAdapter) Search(ctx context.Context, q Query) ([]model.RawLead, error) {
	req := directory.SearchRequest{
		Industry: q.Industry,
		City:     q.City,
		State:    q.State,
		Limit:    q.Limit,
	}
	if q.Revenue != nil {
		req.MinRevenue, req.MaxRevenue = q.Revenue.Min, q.Revenue.Max
	}
	if q.Employees != nil {
		req.MinEmployees, req.MaxEmployees = q.Employees.Min, q.Employees.Max
	}

	resp, err := resilience.ExecuteVal(ctx, a.breaker, func(ctx context.Context) (*directory.SearchResponse, error) {
		return resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*directory.SearchResponse, error) {
			return a.client.Search(ctx, req)
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "source: directory search")
	}

	leads := make([]model.RawLead, 0, len(resp.Businesses))
	for _, b := range resp.Businesses {
		leads = append(leads, model.NormalizeLead(model.RawLead{
			Name:             b.Name,
			Address:          b.Address,
			Phone:            b.Phone,
			Website:          b.Website,
			Industry:         b.Category,
			EstimatedRevenue: b.AnnualRevenue,
			EmployeeCount:    b.Employees,
			OwnerName:        b.OwnerName,
			OwnerEmail:       b.OwnerEmail,
			FoundedYear:      b.YearEstablished,
			SocialProfiles:   b.Social,
			Source:           DirectoryName,
		}))
	}
	return leads, nil
}

func retryableDirectoryError(err error) bool {
	var apiErr *directory.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}
