// Package scoring computes deterministic deal scores for a single lead.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/sells-group/dealscout/internal/model"
)

const (
	defaultRevenue  = 200_000
	defaultAgeYears = 10
)

// Engine computes DealScores. The only state is the clock used to derive
// the current calendar year.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow fixes the clock for testing.
func WithNow(t time.Time) Option {
	return func(e *Engine) {
		e.now = func() time.Time { return t }
	}
}

// NewEngine creates a scoring engine using the wall clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute scores a lead given its optional review and website signals.
func (e *Engine) Compute(lead model.RawLead, reviews *model.ReviewSignal, website *model.WebsiteSignal) model.DealScores {
	year := e.now().Year()

	revenue := float64(defaultRevenue)
	if lead.EstimatedRevenue != nil {
		revenue = *lead.EstimatedRevenue
	}
	revenueK := revenue / 1000

	modern := website != nil && strings.Contains(strings.ToLower(website.Modernity), model.ModernityModern)

	spendRate := 0.2
	if modern {
		spendRate = 0.8
	}
	adSpend := int64(math.Round(spendRate * revenueK))
	if adSpend < 0 {
		adSpend = 0
	}

	founded := year - defaultAgeYears
	if lead.FoundedYear != nil {
		founded = *lead.FoundedYear
	}
	ageProxy := clamp(float64(year-founded), 0, 40)

	lastUpdated := founded
	if website != nil && website.LastUpdatedYear > 0 {
		lastUpdated = website.LastUpdatedYear
	}
	staleness := clamp(float64(year-lastUpdated), 0, 10)

	lowDigital := 5.0
	if reviews != nil {
		lowDigital = clamp(math.Floor(float64(reviews.LastReviewDaysAgo)/60), 0, 10)
	}

	succession := int(clamp(math.Round(ageProxy*1.5+staleness*3+lowDigital*3), 0, 100))

	recentReviews := 40.0
	sentiment := 10.0
	if reviews != nil {
		recentReviews = math.Max(0, 100-float64(reviews.LastReviewDaysAgo))
		sentiment = math.Round(reviews.AvgSentiment * 30)
	}

	ssl := 0.0
	if website != nil && website.SSLValid {
		ssl = 20
	}
	theme := 10.0
	if modern {
		theme = 30
	}

	digital := int(clamp(math.Round(recentReviews*0.3+ssl+theme+sentiment), 0, 100))

	return model.DealScores{
		AdSpendEstimate: adSpend,
		SuccessionScore: succession,
		DigitalHealth:   digital,
		DealReadiness:   Readiness(succession, digital),
	}
}

// Readiness tiers a lead from its succession and digital-health scores.
func Readiness(succession, digitalHealth int) model.DealReadiness {
	switch {
	case succession > 80 && digitalHealth < 60:
		return model.DealReadinessHigh
	case succession > 60:
		return model.DealReadinessMedium
	default:
		return model.DealReadinessLow
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
