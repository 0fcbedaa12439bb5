package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dealscout/internal/config"
	"github.com/sells-group/dealscout/internal/demographic"
	"github.com/sells-group/dealscout/internal/metrics"
	"github.com/sells-group/dealscout/internal/model"
	"github.com/sells-group/dealscout/internal/orchestrator"
	"github.com/sells-group/dealscout/internal/resilience"
	"github.com/sells-group/dealscout/internal/signals"
	"github.com/sells-group/dealscout/internal/source"
	"github.com/sells-group/dealscout/pkg/census"
	"github.com/sells-group/dealscout/pkg/directory"
	"github.com/sells-group/dealscout/pkg/places"
	"github.com/sells-group/dealscout/pkg/webprobe"
)

// pipeline holds the long-lived collaborators shared by every fetch.
type pipeline struct {
	Primary  source.Adapter // nil when no primary source is configured
	Fallback source.Adapter
	FanOut   *signals.FanOut
	Market   *demographic.Cache
	Breakers *resilience.Breakers // nil disables circuit breaking

	defaultLimit int
	closers      []func()
}

// Orchestrator builds a per-request orchestrator around the shared
// collaborators.
func (p *pipeline) Orchestrator() *orchestrator.Orchestrator {
	opts := []orchestrator.Option{orchestrator.WithDefaultLimit(p.defaultLimit)}
	if p.Primary != nil {
		opts = append(opts, orchestrator.WithPrimary(p.Primary))
	}
	return orchestrator.New(p.Fallback, p.FanOut, opts...)
}

// breaker returns the named collaborator's circuit breaker, or nil when
// breakers are not configured.
func (p *pipeline) breaker(collaborator string) *resilience.CircuitBreaker {
	if p.Breakers == nil {
		return nil
	}
	return p.Breakers.Get(collaborator)
}

func newBreakers(cc config.CircuitConfig) *resilience.Breakers {
	return resilience.NewBreakers(
		resilience.FromCircuitConfig(cc.FailureThreshold, cc.ResetTimeoutSecs),
		func(collaborator string, from, to resilience.CircuitState) {
			zap.L().Warn("circuit breaker state change",
				zap.String("collaborator", collaborator),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			metrics.ObserveCircuit(collaborator, to.String())
		},
	)
}

// Close releases database pools and Redis connections.
func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

func initPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	p := &pipeline{defaultLimit: cfg.Source.DefaultLimit, Breakers: newBreakers(cfg.Circuit)}

	primary, err := buildPrimary(ctx, cfg, p)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.Primary = primary

	fallback, err := buildFallback(ctx, cfg.Source.Fallback)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.Fallback = fallback

	p.Market = buildMarket(cfg, p)
	p.FanOut = buildFanOut(cfg, p)

	zap.L().Info("pipeline initialized",
		zap.String("primary", cfg.Source.Primary),
		zap.Int("fallback_leads", fallback.Len()),
		zap.Bool("reviews", cfg.Signals.Places.Key != ""),
		zap.Bool("live_demographics", cfg.Demographic.BaseURL != ""),
		zap.Bool("redis", cfg.Demographic.RedisAddr != ""),
	)
	return p, nil
}

func buildPrimary(ctx context.Context, cfg *config.Config, p *pipeline) (source.Adapter, error) {
	switch cfg.Source.Primary {
	case config.PrimaryDirectory:
		dc := cfg.Source.Directory
		opts := []directory.Option{}
		if dc.RateLimit > 0 {
			opts = append(opts, directory.WithRateLimit(dc.RateLimit))
		}
		if dc.TimeoutSecs > 0 {
			opts = append(opts, directory.WithTimeout(time.Duration(dc.TimeoutSecs)*time.Second))
		}
		client := directory.NewClient(dc.BaseURL, dc.Key, opts...)
		return source.NewDirectoryAdapter(client,
			resilience.FromAttempts(dc.RetryAttempts, dc.RetryBackoffMs),
			source.WithDirectoryBreaker(p.breaker(source.DirectoryName)),
		), nil

	case config.PrimaryPostgres:
		dir, err := source.NewPostgresDirectory(ctx, cfg.Source.Postgres.DatabaseURL, cfg.Source.Postgres.Table)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, dir.Close)
		return dir, nil

	default:
		return nil, nil
	}
}

func buildFallback(ctx context.Context, fc config.FallbackConfig) (*source.LocalSource, error) {
	var (
		leads []model.RawLead
		err   error
	)
	switch {
	case fc.SQLiteDSN != "":
		leads, err = source.LoadSQLite(ctx, fc.SQLiteDSN)
	case fc.DatasetPath != "":
		leads, err = source.LoadDatasetFile(fc.DatasetPath)
	default:
		leads, err = source.SeedLeads()
	}
	if err != nil {
		return nil, eris.Wrap(err, "load fallback dataset")
	}
	return source.NewLocalSource(leads), nil
}

func buildMarket(cfg *config.Config, p *pipeline) *demographic.Cache {
	dc := cfg.Demographic
	opts := []demographic.Option{
		demographic.WithTTL(time.Duration(dc.TTLHours) * time.Hour),
		demographic.WithMaxEntries(dc.MaxEntries),
		demographic.WithLoadTimeout(time.Duration(dc.LoadTimeoutSecs) * time.Second),
	}
	if dc.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: dc.RedisAddr})
		p.closers = append(p.closers, func() { _ = rdb.Close() })
		opts = append(opts, demographic.WithStore(
			demographic.NewRedisStore(rdb, time.Duration(dc.RedisTTLHours)*time.Hour),
		))
	}

	var provider demographic.Provider
	if dc.BaseURL != "" {
		provider = demographic.NewCensusProvider(census.NewClient(dc.BaseURL, dc.Key),
			resilience.DefaultRetryConfig(),
			demographic.WithCensusBreaker(p.breaker("census")),
		)
	}
	return demographic.NewCache(provider, opts...)
}

func buildFanOut(cfg *config.Config, p *pipeline) *signals.FanOut {
	sc := cfg.Signals
	market := p.Market

	probeOpts := []webprobe.Option{webprobe.WithUserAgent(sc.Webprobe.UserAgent)}
	if sc.Webprobe.TimeoutSecs > 0 {
		probeOpts = append(probeOpts, webprobe.WithTimeout(time.Duration(sc.Webprobe.TimeoutSecs)*time.Second))
	}
	website := signals.NewWebsiteProvider(webprobe.NewClient(probeOpts...))

	opts := []signals.Option{
		signals.WithConcurrency(sc.Concurrency),
		signals.WithCallTimeout(time.Duration(sc.CallTimeoutSecs) * time.Second),
		signals.WithWebsiteRateLimit(sc.WebsiteRateLimit),
		signals.WithReviewRateLimit(sc.ReviewRateLimit),
	}
	if sc.Market && market != nil {
		opts = append(opts, signals.WithMarket(market))
	}

	// Reviews need an API key; without one the signal is always absent.
	if sc.Places.Key == "" {
		return signals.New(website, nil, opts...)
	}
	reviews := signals.NewReviewProvider(
		places.NewClient(sc.Places.Key, places.WithBaseURL(sc.Places.BaseURL)),
		signals.WithReviewBreaker(p.breaker("places")),
	)
	return signals.New(website, reviews, opts...)
}
