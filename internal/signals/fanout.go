// Package signals gathers website, review and market signals for scored
// leads concurrently and merges them into enriched profiles.
package signals

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/sells-group/dealscout/internal/arbitrage"
	"github.com/sells-group/dealscout/internal/metrics"
	"github.com/sells-group/dealscout/internal/model"
	"github.com/sells-group/dealscout/internal/scoring"
)

// Signal kinds recorded on soft failures.
const (
	SignalWebsite = "website"
	SignalReviews = "reviews"
	SignalMarket  = "market"
)

const defaultConcurrency = 8

var tracer = otel.Tracer("github.com/sells-group/dealscout/internal/signals")

// WebsiteProvider analyzes a business's web presence. A nil signal with a
// nil error means the lead has no website to analyze.
type WebsiteProvider interface {
	Analyze(ctx context.Context, url, phone string) (*model.WebsiteSignal, error)
}

// ReviewProvider summarizes customer reviews for a business. A nil signal
// with a nil error means no reviews were found.
type ReviewProvider interface {
	Summarize(ctx context.Context, name string) (*model.ReviewSignal, error)
}

// MarketAnalyzer derives market analysis for a location. Implemented by
// demographic.Cache.
type MarketAnalyzer interface {
	AnalyzeMarket(ctx context.Context, location, industry string) (*model.MarketAnalysis, error)
}

// SoftFailure records a signal that was dropped for one lead.
type SoftFailure struct {
	LeadIndex int
	Lead      string
	Signal    string
	Err       error
}

func (f SoftFailure) Error() string {
	return fmt.Sprintf("signals: %s for lead %d (%s): %v", f.Signal, f.LeadIndex, f.Lead, f.Err)
}

// Batch is the result of one Enrich call. Profiles[i] corresponds to the
// i-th input lead.
type Batch struct {
	Profiles     []model.EnrichedBusinessProfile
	SoftFailures []SoftFailure
}

// FanOut enriches leads with signals under bounded concurrency.
type FanOut struct {
	website WebsiteProvider
	reviews ReviewProvider
	market  MarketAnalyzer
	engine  *scoring.Engine

	concurrency    int
	callTimeout    time.Duration
	sem            *semaphore.Weighted
	websiteLimiter *rate.Limiter
	reviewLimiter  *rate.Limiter
}

// Option configures a FanOut.
type Option func(*FanOut)

// WithConcurrency bounds both the number of leads processed at once and the
// number of provider calls in flight.
func WithConcurrency(n int) Option {
	return func(f *FanOut) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithCallTimeout bounds each provider call. Zero disables the timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(f *FanOut) { f.callTimeout = d }
}

// WithWebsiteRateLimit caps website provider calls per second.
func WithWebsiteRateLimit(rps float64) Option {
	return func(f *FanOut) { f.websiteLimiter = newLimiter(rps) }
}

// WithReviewRateLimit caps review provider calls per second.
func WithReviewRateLimit(rps float64) Option {
	return func(f *FanOut) { f.reviewLimiter = newLimiter(rps) }
}

// WithMarket adds a per-lead market analysis keyed by the lead's city and state.
func WithMarket(m MarketAnalyzer) Option {
	return func(f *FanOut) { f.market = m }
}

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(f *FanOut) { f.engine = e }
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// New creates a FanOut. Either provider may be nil, in which case that
// signal is always absent.
func New(website WebsiteProvider, reviews ReviewProvider, opts ...Option) *FanOut {
	f := &FanOut{
		website:     website,
		reviews:     reviews,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.engine == nil {
		f.engine = scoring.NewEngine()
	}
	f.sem = semaphore.NewWeighted(int64(f.concurrency))
	return f
}

// Enrich collects signals for every lead and scores it. Provider failures
// degrade to absent signals and are reported in Batch.SoftFailures; the
// only error returned is cancellation of ctx.
func (f *FanOut) Enrich(ctx context.Context, leads []arbitrage.Scored) (*Batch, error) {
	ctx, span := tracer.Start(ctx, "signals.Enrich")
	defer span.End()
	span.SetAttributes(attribute.Int("leads", len(leads)))

	profiles := make([]model.EnrichedBusinessProfile, len(leads))
	failures := make([][]SoftFailure, len(leads))

	g := new(errgroup.Group)
	g.SetLimit(f.concurrency)

	for i := range leads {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			profiles[i], failures[i] = f.enrichLead(ctx, i, leads[i])
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrich canceled")
		return nil, eris.Wrap(err, "signals: enrich")
	}

	batch := &Batch{Profiles: profiles}
	for _, lf := range failures {
		batch.SoftFailures = append(batch.SoftFailures, lf...)
	}
	for _, sf := range batch.SoftFailures {
		metrics.SignalFailures.WithLabelValues(sf.Signal).Inc()
	}
	metrics.LeadsEnriched.Add(float64(len(profiles)))
	span.SetAttributes(attribute.Int("soft_failures", len(batch.SoftFailures)))

	return batch, nil
}

func (f *FanOut) enrichLead(ctx context.Context, idx int, scored arbitrage.Scored) (model.EnrichedBusinessProfile, []SoftFailure) {
	lead := scored.Lead

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []SoftFailure
		website  *model.WebsiteSignal
		reviews  *model.ReviewSignal
		market   *model.MarketAnalysis
	)

	fail := func(signal string, err error) {
		zap.L().Debug("signals: provider failed, signal absent",
			zap.String("signal", signal),
			zap.String("lead", lead.Name),
			zap.Error(err),
		)
		mu.Lock()
		failures = append(failures, SoftFailure{LeadIndex: idx, Lead: lead.Name, Signal: signal, Err: err})
		mu.Unlock()
	}

	if f.website != nil && (lead.Website != "" || lead.Phone != "") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.call(ctx, f.websiteLimiter, func(ctx context.Context) error {
				sig, err := f.website.Analyze(ctx, lead.Website, lead.Phone)
				website = sig
				return err
			})
			if err != nil {
				website = nil
				fail(SignalWebsite, err)
			}
		}()
	}

	if f.reviews != nil && lead.Name != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.call(ctx, f.reviewLimiter, func(ctx context.Context) error {
				sig, err := f.reviews.Summarize(ctx, lead.Name)
				reviews = sig
				return err
			})
			if err != nil {
				reviews = nil
				fail(SignalReviews, err)
			}
		}()
	}

	if loc := lead.MarketLocation(); f.market != nil && loc != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.call(ctx, nil, func(ctx context.Context) error {
				a, err := f.market.AnalyzeMarket(ctx, loc, lead.Industry)
				market = a
				return err
			})
			if err != nil {
				market = nil
				fail(SignalMarket, err)
			}
		}()
	}

	wg.Wait()

	scores := f.engine.Compute(lead, reviews, website)
	profile := model.NewProfile(lead, scored.Score, website, reviews, scores)
	profile.Market = market
	return profile, failures
}

// call runs fn behind the shared semaphore, an optional rate limiter and
// the per-call timeout. A panic in fn is returned as an error.
func (f *FanOut) call(ctx context.Context, limiter *rate.Limiter, fn func(ctx context.Context) error) (err error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer f.sem.Release(1)

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if f.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.callTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("signals: provider panic: %v", r)
		}
	}()
	return fn(ctx)
}
