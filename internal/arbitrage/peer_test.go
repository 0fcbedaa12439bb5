package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealscout/internal/model"
)

func lead(name, industry string, revenue *float64) model.RawLead {
	return model.RawLead{Name: name, Industry: industry, EstimatedRevenue: revenue}
}

func TestScore_TwoLandscapers(t *testing.T) {
	got := Score([]model.RawLead{
		lead("Green Acres", "landscaping", model.Float64(300_000)),
		lead("Lawn Kings", "landscaping", model.Float64(700_000)),
	})

	require.Len(t, got, 2)
	require.NotNil(t, got[0].Score)
	require.NotNil(t, got[1].Score)
	assert.InDelta(t, 0.6, *got[0].Score, 1e-9)
	assert.InDelta(t, 1.4, *got[1].Score, 1e-9)
}

func TestScore_GroupsAreIndependent(t *testing.T) {
	got := Score([]model.RawLead{
		lead("a", "hvac", model.Float64(100)),
		lead("b", "plumbing", model.Float64(1000)),
		lead("c", "hvac", model.Float64(300)),
		lead("d", "plumbing", model.Float64(3000)),
	})

	assert.InDelta(t, 0.5, *got[0].Score, 1e-9)
	assert.InDelta(t, 0.5, *got[1].Score, 1e-9)
	assert.InDelta(t, 1.5, *got[2].Score, 1e-9)
	assert.InDelta(t, 1.5, *got[3].Score, 1e-9)
}

func TestScore_IndustryKeyIsCaseSensitive(t *testing.T) {
	got := Score([]model.RawLead{
		lead("a", "HVAC", model.Float64(100)),
		lead("b", "hvac", model.Float64(300)),
	})

	assert.InDelta(t, 1.0, *got[0].Score, 1e-9)
	assert.InDelta(t, 1.0, *got[1].Score, 1e-9)
}

func TestScore_LeadsWithoutRevenueStayUnscored(t *testing.T) {
	got := Score([]model.RawLead{
		lead("a", "roofing", model.Float64(200)),
		lead("b", "roofing", nil),
		lead("c", "roofing", model.Float64(0)),
		lead("d", "roofing", model.Float64(600)),
	})

	assert.InDelta(t, 0.5, *got[0].Score, 1e-9)
	assert.Nil(t, got[1].Score)
	assert.Nil(t, got[2].Score)
	assert.InDelta(t, 1.5, *got[3].Score, 1e-9)
}

func TestScore_GroupWithoutRevenueSkipped(t *testing.T) {
	got := Score([]model.RawLead{
		lead("a", "cleaning", nil),
		lead("b", "cleaning", nil),
	})

	for _, s := range got {
		assert.Nil(t, s.Score)
	}
}

func TestScore_PreservesEveryLeadOnce(t *testing.T) {
	in := []model.RawLead{
		lead("a", "x", model.Float64(1)),
		lead("b", "y", nil),
		lead("c", "x", model.Float64(3)),
		lead("d", model.UnknownIndustry, model.Float64(5)),
	}
	got := Score(in)

	assert.Equal(t, in, Leads(got))
}

func TestScore_Empty(t *testing.T) {
	assert.Empty(t, Score(nil))
}

func TestGroups(t *testing.T) {
	groups := Groups([]model.RawLead{
		lead("a", "hvac", model.Float64(100)),
		lead("b", "hvac", nil),
		lead("c", "hvac", model.Float64(300)),
		lead("d", "dental", nil),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, 3, groups["hvac"].Members)
	assert.Equal(t, 2, groups["hvac"].WithRevenue)
	assert.InDelta(t, 200, groups["hvac"].MeanRevenue, 1e-9)
	assert.Equal(t, 0, groups["dental"].WithRevenue)
	assert.Zero(t, groups["dental"].MeanRevenue)
}
