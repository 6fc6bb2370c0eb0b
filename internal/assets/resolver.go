// Package assets resolves remotely stored photos, signatures and logos into
// ready-to-place images. A failed asset is logged and omitted; it never
// aborts composition.
package assets

import (
	"context"
	"iter"
	"strings"
	"sync"

	"certforge/internal/domain"
	"certforge/internal/logger"
	"certforge/internal/metrics"
	"certforge/internal/ports"
)

// Resolver is safe for concurrent use.
type Resolver struct {
	index   ports.PhotoIndex
	urls    ports.URLResolver
	fetcher *Fetcher
	log     logger.Logger
	metrics *metrics.Metrics
	cache   *cache
}

type cache struct {
	mu     sync.Mutex
	images map[string]domain.Image
}

func NewResolver(index ports.PhotoIndex, urls ports.URLResolver, fetcher *Fetcher, log logger.Logger, m *metrics.Metrics) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{index: index, urls: urls, fetcher: fetcher, log: log, metrics: m}
}

// Scoped returns a resolver sharing r's collaborators with a private cache.
// Use one per composition and drop it afterwards.
func (r *Resolver) Scoped() *Resolver {
	c := *r
	c.cache = &cache{images: map[string]domain.Image{}}
	return &c
}

// ResolvePhotos lists and fetches an observation's photos lazily, in index
// order. Each iteration lists again. A listing failure yields nothing and a
// failed photo is skipped.
func (r *Resolver) ResolvePhotos(ctx context.Context, observationID string) iter.Seq[domain.Image] {
	return func(yield func(domain.Image) bool) {
		if r.index == nil || observationID == "" {
			return
		}
		paths, err := r.index.ListPhotoPaths(ctx, observationID)
		if err != nil {
			r.fail("list", observationID, err)
			return
		}
		for _, p := range paths {
			if ctx.Err() != nil {
				return
			}
			img, ok := r.ResolveAsset(ctx, p)
			if !ok {
				continue
			}
			if !yield(img) {
				return
			}
		}
	}
}

// ResolveAsset fetches and decodes one asset. ref may be a storage path, an
// http(s) URL or a data: URL.
func (r *Resolver) ResolveAsset(ctx context.Context, ref string) (domain.Image, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || domain.IsPlaceholder(ref) {
		return domain.Image{}, false
	}
	if img, ok := r.cached(ref); ok {
		return img, true
	}

	u := ref
	if !isURL(ref) {
		if r.urls == nil {
			r.fail("resolve_url", ref, ErrUnsupportedURL)
			return domain.Image{}, false
		}
		var err error
		if u, err = r.urls.ResolvePublicURL(ctx, ref); err != nil {
			r.fail("resolve_url", ref, err)
			return domain.Image{}, false
		}
	}
	data, err := r.fetcher.Fetch(ctx, u)
	if err != nil {
		r.fail("fetch", ref, err)
		return domain.Image{}, false
	}
	img, err := Decode(ref, data)
	if err != nil {
		r.fail("decode", ref, err)
		return domain.Image{}, false
	}
	r.store(ref, img)
	return img, true
}

func (r *Resolver) fail(kind, ref string, err error) {
	r.log.Warn("Asset omitted",
		logger.String("kind", kind),
		logger.String("ref", truncate(ref, 120)),
		logger.Error(err),
	)
	r.metrics.AssetFailure(kind)
}

func (r *Resolver) cached(ref string) (domain.Image, bool) {
	if r.cache == nil {
		return domain.Image{}, false
	}
	r.cache.mu.Lock()
	defer r.cache.mu.Unlock()
	img, ok := r.cache.images[ref]
	return img, ok
}

func (r *Resolver) store(ref string, img domain.Image) {
	if r.cache == nil {
		return
	}
	r.cache.mu.Lock()
	r.cache.images[ref] = img
	r.cache.mu.Unlock()
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "data:") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// MapIndex is an in-memory PhotoIndex keyed by observation id.
type MapIndex map[string][]string

func (m MapIndex) ListPhotoPaths(_ context.Context, observationID string) ([]string, error) {
	return m[observationID], nil
}
