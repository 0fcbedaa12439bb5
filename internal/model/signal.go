package model

import "time"

// Website modernity classifications.
const (
	ModernityModern = "modern"
	ModernityDated  = "dated"
	ModernityLegacy = "legacy"
)

// WebsiteSignal describes the freshness of a business's web presence.
type WebsiteSignal struct {
	LastUpdatedYear int      `json:"last_updated_year,omitempty"` // 0 when unknown
	Services        []string `json:"services,omitempty"`
	Modernity       string   `json:"modernity"`
	SSLValid        bool     `json:"ssl_valid"`
}

// ReviewSignal aggregates customer review sentiment and recency.
type ReviewSignal struct {
	AvgSentiment      float64  `json:"avg_sentiment"` // 0-1
	LastReviewDaysAgo int      `json:"last_review_days_ago"`
	Themes            []string `json:"themes,omitempty"`
}

// DemographicSignal holds location-level market metrics.
type DemographicSignal struct {
	Location           string    `json:"location"`
	Population         int64     `json:"population"`
	MedianAge          float64   `json:"median_age"`
	PctOver55          float64   `json:"pct_over_55"`
	MedianIncome       float64   `json:"median_income"`
	BusinessDensity    float64   `json:"business_density"` // establishments per 1k residents
	SmallBusinessPct   float64   `json:"small_business_pct"`
	SelfEmploymentRate float64   `json:"self_employment_rate"`
	PopulationDensity  float64   `json:"population_density"` // residents per sq mi
	Synthetic          bool      `json:"synthetic"`
	FetchedAt          time.Time `json:"fetched_at"`
}

// MarketAnalysis is derived from a DemographicSignal for a given industry.
type MarketAnalysis struct {
	Location                  string   `json:"location"`
	Industry                  string   `json:"industry,omitempty"`
	SellerPotentialScore      int      `json:"seller_potential_score"`
	PricingPotentialScore     int      `json:"pricing_potential_score"`
	RecommendedMarketingSpend int64    `json:"recommended_marketing_spend"`
	FragmentationPrediction   int      `json:"fragmentation_prediction"`
	Insights                  []string `json:"insights,omitempty"`
	Synthetic                 bool     `json:"synthetic"`
}
