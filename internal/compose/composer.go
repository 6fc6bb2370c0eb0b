// Package compose assembles a certificate document from a raw record: it
// shapes the record, scores it, lays the sections out in a fixed order and
// serialises the result.
package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"certforge/internal/canonical"
	"certforge/internal/domain"
	"certforge/internal/layout"
	"certforge/internal/logger"
	"certforge/internal/metrics"
	"certforge/internal/quality"
	"certforge/internal/shapers"
)

// PhotoSource resolves images for one composition run.
type PhotoSource interface {
	ResolvePhotos(ctx context.Context, observationID string) iter.Seq[domain.Image]
	ResolveAsset(ctx context.Context, ref string) (domain.Image, bool)
}

type Input struct {
	Record          canonical.Record
	InspectionItems []map[string]any
	Observations    []map[string]any
	Options         domain.Options
	CompanyProfile  map[string]any
	// Progress, when set, receives the completed fraction after each section.
	Progress func(fraction float64)
}

const (
	DefaultThreshold     = 70
	defaultPrefetchLimit = 4
	draftWatermark       = "DRAFT"
)

type Composer struct {
	newDocument   func(domain.PageFormat) layout.Document
	assets        func() PhotoSource
	log           logger.Logger
	metrics       *metrics.Metrics
	threshold     int
	prefetchLimit int
	now           func() time.Time
}

type Option func(*Composer)

// WithAssets sets the per-run photo source factory. Each Compose call gets
// its own source, so any cache it holds lives for one run.
func WithAssets(f func() PhotoSource) Option { return func(c *Composer) { c.assets = f } }
func WithLogger(l logger.Logger) Option      { return func(c *Composer) { c.log = l } }
func WithMetrics(m *metrics.Metrics) Option  { return func(c *Composer) { c.metrics = m } }
func WithThreshold(n int) Option             { return func(c *Composer) { c.threshold = n } }
func WithClock(now func() time.Time) Option  { return func(c *Composer) { c.now = now } }

// WithPrefetchLimit bounds concurrent photo lookups when prefetching.
func WithPrefetchLimit(n int) Option { return func(c *Composer) { c.prefetchLimit = n } }

func New(newDocument func(domain.PageFormat) layout.Document, opts ...Option) *Composer {
	c := &Composer{
		newDocument:   newDocument,
		assets:        func() PhotoSource { return noAssets{} },
		log:           logger.NewNop(),
		threshold:     DefaultThreshold,
		prefetchLimit: defaultPrefetchLimit,
		now:           time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compose returns a complete artifact or an error, never both. Missing data,
// malformed values, failed assets and quality shortfalls are absorbed; only
// canvas failures and cancellation abort the run.
func (c *Composer) Compose(ctx context.Context, in Input) (*domain.Artifact, error) {
	start := c.now()
	log := c.log.With(logger.String("run_id", uuid.NewString()))

	art, err := c.compose(ctx, in, log)
	switch {
	case err == nil:
		c.metrics.ObserveComposition("ok", c.now().Sub(start), art.Metrics.Score)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		c.metrics.ObserveComposition("cancelled", c.now().Sub(start), 0)
		log.Info("Composition cancelled", logger.Error(err))
	default:
		c.metrics.ObserveComposition("failed", c.now().Sub(start), 0)
		log.Error("Composition failed", logger.Error(err))
	}
	return art, err
}

func (c *Composer) compose(ctx context.Context, in Input, log logger.Logger) (*domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Options.Format == "" {
		in.Options.Format = domain.FormatA4
	}

	cert := shapers.Shape(in.Record, shapers.Inputs{
		InspectionItems: in.InspectionItems,
		Observations:    in.Observations,
		CompanyProfile:  in.CompanyProfile,
	})
	findings := quality.ValidateWith(cert, quality.RulesFor(in.Options))
	scores := quality.ScoreFor(cert, in.Options)
	log = log.With(logger.String("certificate", cert.DocumentID()))

	doc := c.newDocument(in.Options.Format)
	w := &writer{
		ctx:      ctx,
		engine:   layout.New(doc),
		cert:     cert,
		opts:     in.Options,
		src:      c.assets(),
		log:      log,
		progress: in.Progress,
		limit:    c.prefetchLimit,
	}
	if err := w.run(); err != nil {
		return nil, err
	}

	pages, err := w.engine.Finalize()
	if err != nil {
		return nil, fmt.Errorf("compose: finalize: %w", err)
	}
	if in.Options.IncludeFooter {
		if err := w.engine.ApplyFooter(w.footer); err != nil {
			return nil, fmt.Errorf("compose: footer: %w", err)
		}
	}
	draft := quality.NeedsAttention(findings, scores, c.threshold)
	if draft {
		if err := w.engine.ApplyWatermark(draftWatermark); err != nil {
			return nil, fmt.Errorf("compose: watermark: %w", err)
		}
	}

	meta := metadata(cert, scores, c.now())
	doc.SetMetadata(meta)
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("compose: output: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if draft {
		log.Warn("Certificate incomplete",
			logger.Int("score", scores.Score),
			logger.Int("critical_issues", len(findings.Critical)),
			logger.String("report", quality.Report(findings, scores)),
		)
	}
	w.report(1)

	return &domain.Artifact{
		Content:        buf.Bytes(),
		FileName:       FileName(domain.CertificateTypeTag, cert.DocumentID(), cert.Client.Name, cert.Installation.InspectionDate),
		Pages:          pages,
		Metadata:       meta,
		Metrics:        scores,
		CriticalIssues: quality.Messages(findings.Critical),
		Warnings:       append(quality.Messages(findings.Warnings), w.skipped...),
	}, nil
}

func metadata(cert domain.Certificate, m domain.QualityMetrics, now time.Time) domain.Metadata {
	author := cert.Inspector.Name
	if domain.IsPlaceholder(author) {
		author = cert.Branding.Name
	}
	return domain.Metadata{
		Title:         "Electrical Installation Condition Report " + cert.DocumentID(),
		Subject:       "Certificate " + cert.DocumentID() + ", " + cert.Installation.Address,
		Author:        author,
		Keywords:      "EICR electrical installation condition report",
		CertificateID: cert.DocumentID(),
		QualityScore:  m.Score,
		CreatedAt:     now.UTC(),
	}
}

type noAssets struct{}

func (noAssets) ResolvePhotos(context.Context, string) iter.Seq[domain.Image] {
	return func(func(domain.Image) bool) {}
}

func (noAssets) ResolveAsset(context.Context, string) (domain.Image, bool) {
	return domain.Image{}, false
}
