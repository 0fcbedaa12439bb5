package source

import (
	"context"
	"maps"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscout/internal/fragmentation"
	"github.com/sells-group/dealscout/internal/model"
)

// LocalName is the source name of the local fallback dataset.
const LocalName = "local"

// LocalSource searches an in-memory lead dataset. It is the fallback used when
// the primary directory fails or comes back empty.
type LocalSource struct {
	leads []model.RawLead
}

var _ Adapter = (*LocalSource)(nil)

// NewLocalSource creates a LocalSource over leads. Leads are normalized on
// the way in.
func NewLocalSource(leads []model.RawLead) *LocalSource {
	out := make([]model.RawLead, len(leads))
	for i, l := range leads {
		out[i] = model.NormalizeLead(l)
	}
	return &LocalSource{leads: out}
}

// Name implements Adapter.
func (s *LocalSource) Name() string { return LocalName }

// Len returns the dataset size.
func (s *LocalSource) Len() int { return len(s.leads) }

// Search filters the dataset by industry (case-insensitive exact), location
// (case-insensitive substring of the address) and revenue/employee ranges
// (missing values count as 0). Each match is annotated with its industry's
// fragmentation index. Query.Limit is not applied here.
func (s *LocalSource) Search(ctx context.Context, q Query) ([]model.RawLead, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "source: local search")
	}

	location := strings.ToLower(q.Location)

	var out []model.RawLead
	for _, l := range s.leads {
		if q.Industry != "" && !strings.EqualFold(l.Industry, q.Industry) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(l.Address), location) {
			continue
		}
		if !inRange(q.Revenue, l.Revenue()) || !inRange(q.Employees, float64(l.Employees())) {
			continue
		}

		l.SocialProfiles = maps.Clone(l.SocialProfiles)
		l.FragmentationIndex = model.Float64(fragmentation.Index(l.Industry))
		l.Source = LocalName
		out = append(out, l)
	}
	return out, nil
}
