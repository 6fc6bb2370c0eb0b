// Package certificates accepts submissions and reports their composition status.
package certificates

import (
	"context"
	"strings"

	"certforge/internal/domain"
	"certforge/internal/ports"
)

type Service struct {
	certs ports.CertificateRepository
}

func New(certs ports.CertificateRepository) *Service {
	return &Service{certs: certs}
}

// Submit stores the submission and queues it for composition. An absent
// record is stored as {} and composes to a placeholder draft.
func (s *Service) Submit(ctx context.Context, sub domain.Submission) (string, error) {
	if sub.Record == nil {
		sub.Record = map[string]any{}
	}
	sub.CompanyID = strings.TrimSpace(sub.CompanyID)
	return s.certs.Create(ctx, sub)
}

func (s *Service) Status(ctx context.Context, certificateID string) (domain.CertificateStatus, error) {
	return s.certs.Status(ctx, certificateID)
}
