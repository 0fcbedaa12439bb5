// Package source provides lead sources: the query shape adapters accept, the
// local fallback dataset and a Postgres-backed directory mirror.
package source

import (
	"context"
	"strings"

	"github.com/sells-group/dealscout/internal/model"
)

// Adapter searches a lead source. Implementations may fail or return no leads.
type Adapter interface {
	Name() string
	Search(ctx context.Context, q Query) ([]model.RawLead, error)
}

// Query is the source-facing form of a LeadCriteria.
type Query struct {
	Industry  string
	City      string
	State     string
	Location  string // original free text, for substring matching
	Revenue   *model.Range
	Employees *model.Range
	Limit     int // 0 = source default
}

// Translate converts criteria to a Query. The location is split into city and
// state on the first comma; a criteria limit of zero takes defaultLimit.
func Translate(c model.LeadCriteria, defaultLimit int) Query {
	city, state := model.SplitLocation(c.Location)
	limit := c.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	return Query{
		Industry:  strings.TrimSpace(c.Industry),
		City:      city,
		State:     state,
		Location:  strings.TrimSpace(c.Location),
		Revenue:   c.Revenue,
		Employees: c.Employees,
		Limit:     limit,
	}
}

func inRange(r *model.Range, v float64) bool {
	if r == nil {
		return true
	}
	if v < float64(r.Min) {
		return false
	}
	return r.Max <= 0 || v <= float64(r.Max)
}
