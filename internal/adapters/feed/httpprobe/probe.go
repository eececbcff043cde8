// Package httpprobe detects transport level gzip encoding of feed urls with a HEAD request
package httpprobe

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"merchantfeed/internal/platform/logger"
	"merchantfeed/internal/platform/store"

	perr "merchantfeed/internal/platform/errors"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultUA       = "merchantfeed-probe"
	defaultCacheTTL = 15 * time.Minute
	cachePrefix     = "feedprobe:gzip:"
)

// Options configures the Probe
type Options struct {
	Timeout   time.Duration
	UserAgent string

	// RatePerSec and Burst bound how hard we hit merchant hosts; zero disables limiting
	RatePerSec float64
	Burst      int

	// Cache is optional; verdicts are kept for CacheTTL
	Cache    store.KV
	CacheTTL time.Duration

	// Client overrides the http client, mostly for tests
	Client *http.Client
}

// Probe answers whether a feed url is served gzip encoded
// every call builds its own request; nothing process wide is touched
type Probe struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
}

// New constructs a Probe with defaults filled in
func New(o Options) *Probe {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	client := o.Client
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}
	// first response only: a redirect is not a 200 and is not trusted
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	p := &Probe{http: &c, opts: o, log: *logger.Named("feed-probe")}
	if o.RatePerSec > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(o.RatePerSec), max(1, o.Burst))
	}
	return p
}

// IsGzipEncoded reports whether rawURL answers a HEAD with content-encoding gzip
// shell quotes around the url are stripped; anything but http and https is false
// non 200 answers, html answers and network failures all read as false
func (p *Probe) IsGzipEncoded(ctx context.Context, rawURL string) (bool, error) {
	target := strings.Trim(rawURL, "'")
	u, err := url.Parse(target)
	if err != nil {
		return false, perr.InvalidArgf("Url %q is invalid", target)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, nil
	}

	key := cachePrefix + target
	if p.opts.Cache != nil {
		if v, ok, err := p.opts.Cache.Get(ctx, key); err == nil && ok {
			return v == "1", nil
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return false, perr.Wrap(err, perr.ErrorCodeUnavailable, "probe rate limit wait")
		}
	}

	gz, err := p.head(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		p.log.Warn().Err(err).Str("url", u.Redacted()).Msg("probe request failed, treating feed as plain")
		return false, nil
	}

	if p.opts.Cache != nil {
		val := "0"
		if gz {
			val = "1"
		}
		if err := p.opts.Cache.Set(ctx, key, val, p.opts.CacheTTL); err != nil {
			p.log.Debug().Err(err).Msg("probe cache set failed")
		}
	}
	return gz, nil
}

func (p *Probe) head(ctx context.Context, target string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", p.opts.UserAgent)

	resp, err := p.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	return trustEncoding(resp), nil
}

// trustEncoding applies the response rules: only a 200 OK, never text/html
func trustEncoding(resp *http.Response) bool {
	if !strings.HasSuffix(resp.Status, "200 OK") {
		return false
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "text/html"
	}
	if strings.HasPrefix(ct, "text/html") {
		return false
	}
	return resp.Header.Get("Content-Encoding") == "gzip"
}
