package demographic

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/sells-group/dealscout/internal/model"
)

// Synthetic returns a demographic signal derived only from the location
// string. The same normalized location always yields the same metrics.
func Synthetic(location string) *model.DemographicSignal {
	key := NormalizeLocation(location)
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	between := func(lo, hi float64) float64 {
		return math.Round((lo+r.Float64()*(hi-lo))*10) / 10
	}

	return &model.DemographicSignal{
		Location:           location,
		Population:         int64(5_000 + r.IntN(1_995_000)),
		MedianAge:          between(28, 48),
		PctOver55:          between(15, 40),
		MedianIncome:       math.Round(between(35_000, 120_000)),
		BusinessDensity:    between(10, 60),
		SmallBusinessPct:   between(60, 95),
		SelfEmploymentRate: between(5, 20),
		PopulationDensity:  between(50, 5_000),
		Synthetic:          true,
	}
}
