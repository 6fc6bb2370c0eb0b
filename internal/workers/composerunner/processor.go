package composerunner

import (
	"context"
	"fmt"

	"certforge/internal/compose"
	"certforge/internal/domain"
	"certforge/internal/logger"
	"certforge/internal/ports"
)

// Composer builds a document from shaped input.
type Composer interface {
	Compose(ctx context.Context, in compose.Input) (*domain.Artifact, error)
}

// ComposeProcessor loads a stored submission, composes it and persists the artifact.
type ComposeProcessor struct {
	Certificates ports.CertificateRepository
	Artifacts    ports.ArtifactRepository
	Branding     ports.Branding
	Jobs         ports.JobRepository
	Composer     Composer
	Log          logger.Logger
}

func (p ComposeProcessor) Process(ctx context.Context, certificateID string) error {
	log := p.Log
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("certificate", certificateID))

	sub, err := p.Certificates.Get(ctx, certificateID)
	if err != nil {
		return fmt.Errorf("load submission: %w", err)
	}

	var profile map[string]any
	if p.Branding != nil {
		profile, err = p.Branding.Profile(ctx, sub.CompanyID)
		if err != nil {
			log.Warn("Company profile unavailable", logger.String("company", sub.CompanyID), logger.Error(err))
		}
	}

	art, err := p.Composer.Compose(ctx, compose.Input{
		Record:          sub.Record,
		InspectionItems: sub.InspectionItems,
		Observations:    sub.Observations,
		Options:         sub.Options.Resolve(),
		CompanyProfile:  profile,
		Progress: func(f float64) {
			if p.Jobs == nil {
				return
			}
			if err := p.Jobs.UpdateProgress(ctx, certificateID, f); err != nil {
				log.Warn("Progress update failed", logger.Error(err))
			}
		},
	})
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	if err := p.Artifacts.SaveArtifact(ctx, domain.StoredArtifact{
		CertificateID:  certificateID,
		FileName:       art.FileName,
		Content:        art.Content,
		Pages:          art.Pages,
		Metrics:        art.Metrics,
		CriticalIssues: art.CriticalIssues,
		Warnings:       art.Warnings,
	}); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	log.Info("Certificate composed",
		logger.String("file", art.FileName),
		logger.Int("pages", art.Pages),
		logger.Int("score", art.Metrics.Score),
	)
	return nil
}
