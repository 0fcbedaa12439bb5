// Package arbitrage scores leads against the mean revenue of their industry peers.
package arbitrage

import "github.com/sells-group/dealscout/internal/model"

// Scored is a lead with its industry-relative arbitrage score. Score is nil
// when the lead has no revenue or its peer group has no revenue data.
type Scored struct {
	Lead  model.RawLead
	Score *float64
}

// PeerGroup summarizes the leads sharing an industry within one fetch.
type PeerGroup struct {
	Industry     string
	Members      int
	WithRevenue  int
	MeanRevenue  float64
	totalRevenue float64
}

// Groups partitions leads by industry (case-sensitive, as supplied) and
// returns the group summaries keyed by industry.
func Groups(leads []model.RawLead) map[string]*PeerGroup {
	groups := make(map[string]*PeerGroup)
	for _, l := range leads {
		g, ok := groups[l.Industry]
		if !ok {
			g = &PeerGroup{Industry: l.Industry}
			groups[l.Industry] = g
		}
		g.Members++
		if l.HasRevenue() {
			g.WithRevenue++
			g.totalRevenue += *l.EstimatedRevenue
		}
	}
	for _, g := range groups {
		if g.WithRevenue > 0 {
			g.MeanRevenue = g.totalRevenue / float64(g.WithRevenue)
		}
	}
	return groups
}

// Score computes revenue / peer-group mean revenue for every lead with
// revenue data. Every input lead appears exactly once, in input order.
func Score(leads []model.RawLead) []Scored {
	groups := Groups(leads)

	out := make([]Scored, len(leads))
	for i, l := range leads {
		out[i] = Scored{Lead: l}
		g := groups[l.Industry]
		if g.WithRevenue == 0 || !l.HasRevenue() {
			continue
		}
		out[i].Score = model.Float64(*l.EstimatedRevenue / g.MeanRevenue)
	}
	return out
}

// Leads unwraps scored leads back to raw leads.
func Leads(scored []Scored) []model.RawLead {
	out := make([]model.RawLead, len(scored))
	for i, s := range scored {
		out[i] = s.Lead
	}
	return out
}
