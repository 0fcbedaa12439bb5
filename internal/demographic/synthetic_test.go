package demographic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthetic_Deterministic(t *testing.T) {
	a := Synthetic("Phoenix, AZ")
	b := Synthetic("phoenix,  az")

	a.Location, b.Location = "", ""
	assert.Equal(t, a, b)
}

func TestSynthetic_VariesByLocation(t *testing.T) {
	assert.NotEqual(t, Synthetic("Phoenix, AZ").Population, Synthetic("Tampa, FL").Population)
}

func TestSynthetic_Ranges(t *testing.T) {
	for _, loc := range []string{"Phoenix, AZ", "Tampa, FL", "Omaha, NE", "Bend, OR", "x"} {
		s := Synthetic(loc)
		assert.True(t, s.Synthetic)
		assert.Equal(t, loc, s.Location)
		assert.GreaterOrEqual(t, s.Population, int64(5_000))
		assert.Less(t, s.Population, int64(2_000_000))
		assert.GreaterOrEqual(t, s.MedianAge, 28.0)
		assert.LessOrEqual(t, s.MedianAge, 48.0)
		assert.GreaterOrEqual(t, s.PctOver55, 15.0)
		assert.LessOrEqual(t, s.PctOver55, 40.0)
		assert.GreaterOrEqual(t, s.MedianIncome, 35_000.0)
		assert.LessOrEqual(t, s.MedianIncome, 120_000.0)
		assert.GreaterOrEqual(t, s.SmallBusinessPct, 60.0)
		assert.LessOrEqual(t, s.SmallBusinessPct, 95.0)
		assert.True(t, s.FetchedAt.IsZero())
	}
}
