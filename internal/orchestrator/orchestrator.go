// Package orchestrator fetches leads from the primary or fallback source and
// runs them through arbitrage scoring, post-filters and signal enrichment.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/sells-group/dealscout/internal/arbitrage"
	"github.com/sells-group/dealscout/internal/metrics"
	"github.com/sells-group/dealscout/internal/model"
	"github.com/sells-group/dealscout/internal/signals"
	"github.com/sells-group/dealscout/internal/source"
)

var tracer = otel.Tracer("github.com/sells-group/dealscout/internal/orchestrator")

// Enricher turns scored leads into profiles. Implemented by signals.FanOut.
type Enricher interface {
	Enrich(ctx context.Context, leads []arbitrage.Scored) (*signals.Batch, error)
}

// Result is the outcome of one Run.
type Result struct {
	RunID        string                          `json:"run_id"`
	Source       string                          `json:"source"`
	FallbackUsed bool                            `json:"fallback_used"`
	Profiles     []model.EnrichedBusinessProfile `json:"profiles"`
	SoftFailures []signals.SoftFailure           `json:"-"`
}

// Orchestrator is cheap to build and holds no state between calls; build one
// per request around long-lived sources and enricher.
type Orchestrator struct {
	primary      source.Adapter
	fallback     source.Adapter
	enricher     Enricher
	defaultLimit int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPrimary sets the primary lead source. Without one every fetch goes to
// the fallback.
func WithPrimary(a source.Adapter) Option {
	return func(o *Orchestrator) { o.primary = a }
}

// WithDefaultLimit sets the limit used when criteria carry none.
func WithDefaultLimit(n int) Option {
	return func(o *Orchestrator) { o.defaultLimit = n }
}

// New creates an Orchestrator.
func New(fallback source.Adapter, enricher Enricher, opts ...Option) *Orchestrator {
	o := &Orchestrator{fallback: fallback, enricher: enricher}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Fetch returns enriched profiles for the criteria. It fails only on invalid
// criteria, when every lead source fails, or when ctx is canceled.
func (o *Orchestrator) Fetch(ctx context.Context, c model.LeadCriteria) ([]model.EnrichedBusinessProfile, error) {
	res, err := o.Run(ctx, c)
	if err != nil {
		return nil, err
	}
	return res.Profiles, nil
}

// Run is Fetch with run metadata.
func (o *Orchestrator) Run(ctx context.Context, c model.LeadCriteria) (*Result, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	start := time.Now()

	ctx, span := tracer.Start(ctx, "orchestrator.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.String("industry", c.Industry),
		attribute.String("location", c.Location),
	)

	q := source.Translate(c, o.defaultLimit)

	leads, src, fallbackUsed, err := o.search(ctx, log, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lead sources failed")
		return nil, err
	}

	scored := postFilter(arbitrage.Score(leads), c.RequireContact, q.Limit)

	batch, err := o.enricher.Enrich(ctx, scored)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrich failed")
		return nil, eris.Wrap(err, "orchestrator: enrich")
	}

	elapsed := time.Since(start)
	metrics.FetchDuration.WithLabelValues(src).Observe(elapsed.Seconds())
	span.SetAttributes(
		attribute.String("source", src),
		attribute.Int("profiles", len(batch.Profiles)),
	)
	log.Info("orchestrator: fetch complete",
		zap.String("source", src),
		zap.Bool("fallback", fallbackUsed),
		zap.Int("leads", len(leads)),
		zap.Int("profiles", len(batch.Profiles)),
		zap.Int("soft_failures", len(batch.SoftFailures)),
		zap.Duration("elapsed", elapsed),
	)

	return &Result{
		RunID:        runID,
		Source:       src,
		FallbackUsed: fallbackUsed,
		Profiles:     batch.Profiles,
		SoftFailures: batch.SoftFailures,
	}, nil
}

// search queries the primary source and falls back exactly once when it
// errors or returns nothing.
func (o *Orchestrator) search(ctx context.Context, log *zap.Logger, q source.Query) ([]model.RawLead, string, bool, error) {
	var primaryErr error
	reason := metrics.ReasonNoPrimary

	if o.primary != nil {
		leads, err := o.primary.Search(ctx, q)
		switch {
		case err != nil:
			primaryErr = err
			reason = metrics.ReasonPrimaryError
			metrics.SourceFailures.WithLabelValues(o.primary.Name()).Inc()
			log.Warn("orchestrator: primary source failed, using fallback",
				zap.String("source", o.primary.Name()),
				zap.Error(err),
			)
		case len(leads) > 0:
			return normalize(leads, o.primary.Name()), o.primary.Name(), false, nil
		default:
			reason = metrics.ReasonPrimaryEmpty
			log.Info("orchestrator: primary source returned no leads, using fallback",
				zap.String("source", o.primary.Name()),
			)
		}
	}

	metrics.FallbackInvocations.WithLabelValues(reason).Inc()

	leads, err := o.fallback.Search(ctx, q)
	if err != nil {
		metrics.SourceFailures.WithLabelValues(o.fallback.Name()).Inc()
		return nil, "", true, &DataSourceError{Primary: primaryErr, Fallback: err}
	}
	return normalize(leads, o.fallback.Name()), o.fallback.Name(), true, nil
}

func normalize(leads []model.RawLead, name string) []model.RawLead {
	out := make([]model.RawLead, len(leads))
	for i, l := range leads {
		l = model.NormalizeLead(l)
		if l.Source == "" {
			l.Source = name
		}
		out[i] = l
	}
	return out
}

// postFilter drops leads without contact details when required, then caps
// the result at limit (0 = no cap).
func postFilter(scored []arbitrage.Scored, requireContact bool, limit int) []arbitrage.Scored {
	out := scored
	if requireContact {
		out = make([]arbitrage.Scored, 0, len(scored))
		for _, s := range scored {
			if s.Lead.HasContact() {
				out = append(out, s)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
