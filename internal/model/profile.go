package model

// DealReadiness tiers a lead for acquisition outreach.
type DealReadiness string

const (
	DealReadinessLow    DealReadiness = "Low"
	DealReadinessMedium DealReadiness = "Medium"
	DealReadinessHigh   DealReadiness = "High"
)

// DealScores is the output of the scoring engine.
type DealScores struct {
	AdSpendEstimate int64         `json:"ad_spend_estimate"` // per month
	SuccessionScore int           `json:"succession_score"`
	DigitalHealth   int           `json:"digital_health"`
	DealReadiness   DealReadiness `json:"deal_readiness"`
}

// EnrichedBusinessProfile is a lead merged with its signals and scores.
type EnrichedBusinessProfile struct {
	RawLead
	ArbitrageScore *float64 `json:"arbitrage_score,omitempty"`

	// Website signal fields; nil/empty when no website signal was available.
	LastUpdatedYear *int     `json:"last_updated_year,omitempty"`
	Services        []string `json:"services,omitempty"`
	Modernity       string   `json:"modernity,omitempty"`
	SSLValid        *bool    `json:"ssl_valid,omitempty"`

	// Review signal fields.
	AvgSentiment      *float64 `json:"avg_sentiment,omitempty"`
	LastReviewDaysAgo *int     `json:"last_review_days_ago,omitempty"`
	Themes            []string `json:"themes,omitempty"`

	DealScores
	Market *MarketAnalysis `json:"market,omitempty"`
}

// NewProfile merges a lead with its optional signals and computed scores.
func NewProfile(lead RawLead, arbitrage *float64, website *WebsiteSignal, reviews *ReviewSignal, scores DealScores) EnrichedBusinessProfile {
	p := EnrichedBusinessProfile{
		RawLead:        lead,
		ArbitrageScore: arbitrage,
		DealScores:     scores,
	}
	if website != nil {
		if website.LastUpdatedYear > 0 {
			p.LastUpdatedYear = Int(website.LastUpdatedYear)
		}
		p.Services = website.Services
		p.Modernity = website.Modernity
		ssl := website.SSLValid
		p.SSLValid = &ssl
	}
	if reviews != nil {
		p.AvgSentiment = Float64(reviews.AvgSentiment)
		p.LastReviewDaysAgo = Int(reviews.LastReviewDaysAgo)
		p.Themes = reviews.Themes
	}
	return p
}
