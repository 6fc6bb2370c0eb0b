package ports

import (
	"context"

	"certforge/internal/domain"
)

// JobRepository supports claiming and updating composition jobs.
type JobRepository interface {
	ClaimNext(ctx context.Context) (job domain.ComposeJob, found bool, err error)
	UpdateProgress(ctx context.Context, certificateID string, progress float64) error
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJobForCertificate(ctx context.Context, certificateID string) (jobID string, err error)
}
