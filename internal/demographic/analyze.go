package demographic

import (
	"math"

	"github.com/sells-group/dealscout/internal/fragmentation"
	"github.com/sells-group/dealscout/internal/model"
)

const (
	// NationalMedianIncome is the reference household income for pricing potential.
	NationalMedianIncome = 65_000
	// BaseMarketingBudget is the monthly spend before income and density scaling.
	BaseMarketingBudget = 5_000
)

// Analyze derives a MarketAnalysis from a demographic signal. When the
// industry has a known fragmentation index the prediction is averaged with it.
func Analyze(sig *model.DemographicSignal, industry string) *model.MarketAnalysis {
	incomeRatio := sig.MedianIncome / NationalMedianIncome

	seller := clampScore(sig.PctOver55 * 2)
	pricing := clampScore(incomeRatio * 50)

	densityFactor := math.Log10(math.Max(sig.PopulationDensity, 1)+10) / 2
	spend := int64(math.Round(BaseMarketingBudget * incomeRatio * densityFactor))
	if spend < 0 {
		spend = 0
	}

	frag := sig.SmallBusinessPct*0.6 + sig.SelfEmploymentRate*1.5 + 200/math.Max(sig.BusinessDensity, 1)
	if known, ok := fragmentation.Lookup(industry); ok {
		frag = (frag + known) / 2
	}
	fragScore := clampScore(frag)

	a := &model.MarketAnalysis{
		Location:                  sig.Location,
		Industry:                  industry,
		SellerPotentialScore:      seller,
		PricingPotentialScore:     pricing,
		RecommendedMarketingSpend: spend,
		FragmentationPrediction:   fragScore,
		Synthetic:                 sig.Synthetic,
	}
	a.Insights = insights(a)
	return a
}

func insights(a *model.MarketAnalysis) []string {
	var out []string
	switch {
	case a.SellerPotentialScore >= 60:
		out = append(out, "Large share of residents over 55; expect elevated owner-retirement deal flow.")
	case a.SellerPotentialScore < 30:
		out = append(out, "Younger population; succession-driven sellers will be scarce.")
	}
	switch {
	case a.PricingPotentialScore >= 70:
		out = append(out, "Above-average household incomes support premium pricing.")
	case a.PricingPotentialScore < 40:
		out = append(out, "Below-average household incomes; compete on value rather than price.")
	}
	switch {
	case a.FragmentationPrediction >= 75:
		out = append(out, "Highly fragmented market with strong roll-up potential.")
	case a.FragmentationPrediction < 40:
		out = append(out, "Consolidated market; targets will face established competitors.")
	}
	if a.RecommendedMarketingSpend >= 10_000 {
		out = append(out, "Dense, affluent market warrants a larger marketing budget.")
	}
	if a.Synthetic {
		out = append(out, "Based on synthetic demographic estimates; verify before underwriting.")
	}
	return out
}

func clampScore(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}
