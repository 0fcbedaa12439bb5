// Package webprobe fetches a business website and estimates how current and
// well-maintained it is.
package webprobe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Modernity classifications.
const (
	Modern = "modern"
	Dated  = "dated"
	Legacy = "legacy"
)

const defaultMaxBody = 1 << 20

// Report is the outcome of probing one website.
type Report struct {
	URL              string   `json:"url"` // final URL after redirects
	StatusCode       int      `json:"status_code"`
	TLSValid         bool     `json:"tls_valid"`
	LastModifiedYear int      `json:"last_modified_year,omitempty"`
	CopyrightYear    int      `json:"copyright_year,omitempty"`
	Services         []string `json:"services,omitempty"`
	Modernity        string   `json:"modernity"`
}

// UpdatedYear is the most recent of the Last-Modified and copyright years,
// or 0 when neither is known.
func (r *Report) UpdatedYear() int {
	return max(r.LastModifiedYear, r.CopyrightYear)
}

// Client probes websites.
type Client interface {
	Probe(ctx context.Context, rawURL string) (*Report, error)
}

// Option configures the client.
type Option func(*prober)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *prober) { p.http = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *prober) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *prober) { p.http.Timeout = d }
}

// WithNow sets the clock used to judge recency.
func WithNow(now func() time.Time) Option {
	return func(p *prober) { p.now = now }
}

type prober struct {
	http      *http.Client
	userAgent string
	maxBody   int64
	now       func() time.Time
}

// NewClient creates a website prober.
func NewClient(opts ...Option) Client {
	p := &prober{
		http:      &http.Client{Timeout: 8 * time.Second},
		userAgent: "Mozilla/5.0 (compatible; dealscout/1.0)",
		maxBody:   defaultMaxBody,
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Probe fetches rawURL (https assumed when no scheme is given). A certificate
// failure over https is retried over plain http and reported as TLSValid=false.
func (p *prober) Probe(ctx context.Context, rawURL string) (*Report, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	resp, body, err := p.get(ctx, target)
	if err != nil && target.Scheme == "https" && isCertError(err) {
		target.Scheme = "http"
		resp, body, err = p.get(ctx, target)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "webprobe: fetch %s", target.Host)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, eris.Errorf("webprobe: %s returned status %d", target.Host, resp.StatusCode)
	}

	now := p.now()
	final := resp.Request.URL

	r := &Report{
		URL:        final.String(),
		StatusCode: resp.StatusCode,
		TLSValid:   final.Scheme == "https" && resp.TLS != nil,
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil && t.Year() <= now.Year() {
			r.LastModifiedYear = t.Year()
		}
	}

	page := strings.ToLower(string(body))
	r.CopyrightYear = copyrightYear(page, now.Year())
	r.Services = services(page)
	r.Modernity = classify(page, r.TLSValid, r.UpdatedYear(), now.Year())
	return r, nil
}

func (p *prober) get(ctx context.Context, target *url.URL) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody))
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

func normalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, eris.New("webprobe: empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, eris.Wrap(err, "webprobe: parse url")
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, eris.Errorf("webprobe: unsupported url %q", raw)
	}
	return u, nil
}

func isCertError(err error) bool {
	var (
		verr     *tls.CertificateVerificationError
		unknown  x509.UnknownAuthorityError
		hostname x509.HostnameError
		invalid  x509.CertificateInvalidError
	)
	return errors.As(err, &verr) || errors.As(err, &unknown) || errors.As(err, &hostname) || errors.As(err, &invalid)
}
