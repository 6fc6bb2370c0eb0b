package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"certforge/internal/config"
	"certforge/internal/retry"
)

var (
	ErrHostNotAllowed = errors.New("assets: host not allowed")
	ErrUnsupportedURL = errors.New("assets: unsupported url")
	ErrTooLarge       = errors.New("assets: asset too large")
)

// StatusError is a non-200 response from storage.
type StatusError struct{ Code int }

func (e *StatusError) Error() string { return fmt.Sprintf("assets: unexpected status %d", e.Code) }

// Fetcher downloads asset bytes. Requests are rate limited, retried on
// transient failures and restricted to one registrable domain.
type Fetcher struct {
	client        *http.Client
	limiter       *rate.Limiter
	retry         retry.Config
	maxBytes      int64
	timeout       time.Duration
	allowedDomain string
}

func NewFetcher(cfg config.Storage) *Fetcher {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := max(cfg.Burst, 1)
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxBytes := cfg.MaxAssetBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	rc := retry.DefaultConfig()
	if cfg.FetchAttempts > 0 {
		rc.MaxAttempts = cfg.FetchAttempts
	}
	f := &Fetcher{
		limiter:       rate.NewLimiter(limit, burst),
		retry:         rc,
		maxBytes:      maxBytes,
		timeout:       timeout,
		allowedDomain: strings.ToLower(strings.TrimSpace(cfg.AllowedDomain)),
	}
	f.client = &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConnsPerHost:   8,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("assets: too many redirects")
			}
			if !f.allowed(req.URL.Hostname()) {
				return fmt.Errorf("%w: redirect to %s", ErrHostNotAllowed, req.URL.Hostname())
			}
			return nil
		},
	}
	return f
}

// Fetch returns the body at rawURL. data: URLs are decoded in place.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "data:") {
		b, err := decodeDataURL(rawURL)
		if err != nil {
			return nil, err
		}
		if int64(len(b)) > f.maxBytes {
			return nil, ErrTooLarge
		}
		return b, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
	if !f.allowed(u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}

	var body []byte
	err = retry.Do(ctx, f.retry, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		b, err := f.get(ctx, u.String())
		body = b
		return err
	})
	return body, err
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &retry.Transient{Err: &StatusError{Code: resp.StatusCode}}
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: resp.StatusCode}
	case resp.ContentLength > f.maxBytes:
		return nil, ErrTooLarge
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > f.maxBytes {
		return nil, ErrTooLarge
	}
	return b, nil
}

// allowed compares host's registrable domain (eTLD+1) with the configured
// one. IP literals and single-label hosts are compared verbatim.
func (f *Fetcher) allowed(host string) bool {
	if f.allowedDomain == "" {
		return true
	}
	host = strings.ToLower(host)
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host == f.allowedDomain
	}
	reg, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	return reg == f.allowedDomain
}

func decodeDataURL(s string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data url", ErrUnsupportedURL)
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
		}
		return b, nil
	}
	p, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
	}
	return []byte(p), nil
}
