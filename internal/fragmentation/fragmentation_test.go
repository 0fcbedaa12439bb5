package fragmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_KnownIndustries(t *testing.T) {
	v, ok := Lookup("hvac")
	assert.True(t, ok)
	assert.Equal(t, 78.0, v)

	v, ok = Lookup("  Pest   Control ")
	assert.True(t, ok)
	assert.Equal(t, 74.0, v)

	assert.Greater(t, Industries(), 10)
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Lookup("quantum consulting")
	assert.False(t, ok)
}

func TestIndex_KnownUsesTable(t *testing.T) {
	assert.Equal(t, 78.0, Index("HVAC"))
	assert.Equal(t, 88.0, Index("landscaping"))
}

func TestIndex_UnknownIsBoundedAndStable(t *testing.T) {
	for _, industry := range []string{"quantum consulting", "Unknown", "", "bakery", "tattoo studio"} {
		v := Index(industry)
		assert.GreaterOrEqual(t, v, float64(DefaultMin), industry)
		assert.LessOrEqual(t, v, float64(DefaultMax), industry)
		assert.Equal(t, v, Index(industry), industry)
	}
	assert.Equal(t, Index("Bakery"), Index("bakery"))
}
