// Package reports serves composed documents and their quality findings.
package reports

import (
	"context"

	"certforge/internal/domain"
	"certforge/internal/ports"
)

type Service struct {
	artifacts ports.ArtifactRepository
}

func New(artifacts ports.ArtifactRepository) *Service {
	return &Service{artifacts: artifacts}
}

// Document returns the latest composed document for a certificate.
func (s *Service) Document(ctx context.Context, certificateID string) (domain.StoredArtifact, error) {
	return s.artifacts.LatestArtifact(ctx, certificateID)
}

// Quality returns the latest findings without the document bytes.
func (s *Service) Quality(ctx context.Context, certificateID string) (domain.StoredArtifact, error) {
	a, err := s.artifacts.LatestArtifact(ctx, certificateID)
	if err != nil {
		return domain.StoredArtifact{}, err
	}
	a.Content = nil
	return a, nil
}
