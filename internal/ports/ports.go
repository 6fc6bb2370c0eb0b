package ports

import (
	"context"
	"errors"

	"certforge/internal/domain"
)

// ErrNotFound is returned by repositories and services for unknown ids.
var ErrNotFound = errors.New("not found")

// Certificates accepts submissions and tracks their composition.
type Certificates interface {
	Submit(ctx context.Context, sub domain.Submission) (certificateID string, err error)
	Status(ctx context.Context, certificateID string) (domain.CertificateStatus, error)
}

// Reports serves composed documents and their quality findings.
type Reports interface {
	Document(ctx context.Context, certificateID string) (domain.StoredArtifact, error)
	Quality(ctx context.Context, certificateID string) (domain.StoredArtifact, error)
}

// Branding provides stored company defaults used when a record carries no branding.
type Branding interface {
	Profile(ctx context.Context, companyID string) (map[string]any, error)
}
