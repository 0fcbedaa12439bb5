package signals

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sells-group/dealscout/internal/model"
	"github.com/sells-group/dealscout/internal/resilience"
	"github.com/sells-group/dealscout/pkg/places"
)

// minThemeMentions is how many reviews must mention a theme for it to count.
const minThemeMentions = 2

var reviewThemes = []struct {
	theme   string
	needles []string
}{
	{"responsive", []string{"responsive", "quick", "fast", "same day", "same-day", "on time", "prompt"}},
	{"professional", []string{"professional", "courteous", "polite", "respectful"}},
	{"fair pricing", []string{"fair price", "reasonable", "affordable", "great price", "honest"}},
	{"expensive", []string{"expensive", "overpriced", "overcharged", "pricey"}},
	{"quality work", []string{"quality", "thorough", "knowledgeable", "fixed", "excellent work"}},
	{"poor communication", []string{"never called", "no show", "no-show", "didn't show", "unresponsive", "rude"}},
	{"long tenure", []string{"for years", "years now", "long time", "decades", "family business"}},
}

// PlacesReviews adapts a places.Client to ReviewProvider.
type PlacesReviews struct {
	client  places.Client
	breaker *resilience.CircuitBreaker
	now     func() time.Time
}

var _ ReviewProvider = (*PlacesReviews)(nil)

// ReviewOption configures PlacesReviews.
type ReviewOption func(*PlacesReviews)

// WithReviewClock sets the clock used for review recency.
func WithReviewClock(now func() time.Time) ReviewOption {
	return func(p *PlacesReviews) { p.now = now }
}

// WithReviewBreaker guards text searches with cb. While it is open every
// lead's review signal fails fast and is reported as a soft failure.
func WithReviewBreaker(cb *resilience.CircuitBreaker) ReviewOption {
	return func(p *PlacesReviews) { p.breaker = cb }
}

// NewReviewProvider creates a ReviewProvider backed by Google Places.
func NewReviewProvider(client places.Client, opts ...ReviewOption) *PlacesReviews {
	p := &PlacesReviews{client: client, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Summarize implements ReviewProvider using the best text-search match. A
// place without dated reviews yields no signal, since its recency is unknown.
func (p *PlacesReviews) Summarize(ctx context.Context, name string) (*model.ReviewSignal, error) {
	resp, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) (*places.TextSearchResponse, error) {
		return p.client.TextSearch(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Places) == 0 {
		return nil, nil
	}
	place := resp.Places[0]

	var newest time.Time
	for _, r := range place.Reviews {
		if r.PublishTime.After(newest) {
			newest = r.PublishTime
		}
	}
	if newest.IsZero() {
		return nil, nil
	}

	rating := place.Rating
	if rating == 0 {
		var sum float64
		for _, r := range place.Reviews {
			sum += r.Rating
		}
		rating = sum / float64(len(place.Reviews))
	}

	sig := &model.ReviewSignal{
		AvgSentiment: min(max(rating/5, 0), 1),
		Themes:       themes(place.Reviews),
	}
	if days := int(p.now().Sub(newest).Hours() / 24); days > 0 {
		sig.LastReviewDaysAgo = days
	}
	return sig, nil
}

// themes returns the themes mentioned by at least minThemeMentions
// reviews, most mentioned first.
func themes(reviews []places.Review) []string {
	counts := make(map[string]int)
	for _, r := range reviews {
		text := strings.ToLower(r.Text.Text)
		for _, t := range reviewThemes {
			for _, n := range t.needles {
				if strings.Contains(text, n) {
					counts[t.theme]++
					break
				}
			}
		}
	}

	var out []string
	for _, t := range reviewThemes {
		if counts[t.theme] >= minThemeMentions {
			out = append(out, t.theme)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return counts[out[i]] > counts[out[j]] })
	return out
}
