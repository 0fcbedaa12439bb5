package signals

import (
	"context"

	"github.com/sells-group/dealscout/internal/model"
	"github.com/sells-group/dealscout/pkg/webprobe"
)

// WebsiteProber adapts a webprobe.Client to WebsiteProvider.
type WebsiteProber struct {
	client webprobe.Client
}

var _ WebsiteProvider = (*WebsiteProber)(nil)

// NewWebsiteProvider creates a WebsiteProvider backed by a website probe.
func NewWebsiteProvider(client webprobe.Client) *WebsiteProber {
	return &WebsiteProber{client: client}
}

// Analyze implements WebsiteProvider. Leads known only by phone have no
// site to probe and yield no signal.
func (w *WebsiteProber) Analyze(ctx context.Context, url, _ string) (*model.WebsiteSignal, error) {
	if url == "" {
		return nil, nil
	}
	r, err := w.client.Probe(ctx, url)
	if err != nil {
		return nil, err
	}
	return &model.WebsiteSignal{
		LastUpdatedYear: r.UpdatedYear(),
		Services:        r.Services,
		Modernity:       r.Modernity,
		SSLValid:        r.TLSValid,
	}, nil
}
