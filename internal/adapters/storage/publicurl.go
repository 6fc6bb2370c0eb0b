// Package storage maps object-storage paths to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"certforge/internal/config"
)

var ErrInvalidPath = errors.New("storage: invalid object path")

// PublicURLs builds <base>/<bucket>/<path> URLs for publicly readable objects.
type PublicURLs struct {
	base   *url.URL
	bucket string
}

func NewPublicURLs(cfg config.Storage) (*PublicURLs, error) {
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("storage: public base url is not configured")
	}
	base, err := url.Parse(strings.TrimRight(cfg.PublicBaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("storage: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("storage: base url must be http(s), got %q", base.Scheme)
	}
	return &PublicURLs{base: base, bucket: strings.Trim(cfg.Bucket, "/")}, nil
}

func (p *PublicURLs) ResolvePublicURL(_ context.Context, path string) (string, error) {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return "", ErrInvalidPath
	}
	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	if p.bucket != "" {
		segments = append([]string{p.bucket}, segments...)
	}
	return p.base.JoinPath(segments...).String(), nil
}
