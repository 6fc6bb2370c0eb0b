package ports

import (
	"context"

	"certforge/internal/domain"
)

// CertificateRepository stores submissions and tracks their status.
type CertificateRepository interface {
	Create(ctx context.Context, sub domain.Submission) (certificateID string, err error)
	Get(ctx context.Context, certificateID string) (domain.Submission, error)
	Status(ctx context.Context, certificateID string) (domain.CertificateStatus, error)
}

// ArtifactRepository persists composed documents.
type ArtifactRepository interface {
	SaveArtifact(ctx context.Context, a domain.StoredArtifact) error
	LatestArtifact(ctx context.Context, certificateID string) (domain.StoredArtifact, error)
}

// ProfileRepository holds company branding profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, companyID string) (map[string]any, error)
}

// PhotoIndex lists the storage paths of an observation's photos in display order.
type PhotoIndex interface {
	ListPhotoPaths(ctx context.Context, observationID string) ([]string, error)
}

// URLResolver turns a storage path into a fetchable URL.
type URLResolver interface {
	ResolvePublicURL(ctx context.Context, path string) (string, error)
}
