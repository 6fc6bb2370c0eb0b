package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"certforge/internal/domain"
	"certforge/internal/ports"
)

const finishTimeout = 5 * time.Second

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job domain.ComposeJob, found bool, err error) {
	err = db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT id, certificate_id FROM composition_jobs
			WHERE status = 'queued'
			ORDER BY queued_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		`).Scan(&job.ID, &job.CertificateID)
		if notFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return start(ctx, tx, job)
	})
	if err != nil {
		return domain.ComposeJob{}, false, err
	}
	return job, found, nil
}

// StartJobForCertificate claims the queued job of one certificate for inline composition.
func (db *DB) StartJobForCertificate(ctx context.Context, certificateID string) (string, error) {
	if !validID(certificateID) {
		return "", ports.ErrNotFound
	}
	job := domain.ComposeJob{CertificateID: certificateID}
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT id FROM composition_jobs
			WHERE certificate_id = $1 AND status = 'queued'
			ORDER BY queued_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		`, certificateID).Scan(&job.ID)
		if notFound(err) {
			return ports.ErrNotFound
		}
		if err != nil {
			return err
		}
		return start(ctx, tx, job)
	})
	if err != nil {
		return "", err
	}
	return job.ID, nil
}

func start(ctx context.Context, tx pgx.Tx, job domain.ComposeJob) error {
	if _, err := tx.Exec(ctx, `
		UPDATE composition_jobs SET status = 'running', started_at = now(), attempts = attempts + 1 WHERE id = $1
	`, job.ID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		UPDATE certificates SET status = 'running', started_at = COALESCE(started_at, now()) WHERE id = $1
	`, job.CertificateID)
	return err
}

func (db *DB) UpdateProgress(ctx context.Context, certificateID string, progress float64) error {
	progress = min(max(progress, 0), 1)
	_, err := db.Pool.Exec(ctx, `UPDATE certificates SET progress = $2 WHERE id = $1`, certificateID, progress)
	return err
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
	return db.finish(ctx, jobID, "completed", "")
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	return db.finish(ctx, jobID, "failed", reason)
}

// finish settles a job and its certificate atomically. It detaches from the
// caller's cancellation so a shutdown still records the outcome.
func (db *DB) finish(ctx context.Context, jobID, status, reason string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var certID string
		if err := tx.QueryRow(ctx, `
			UPDATE composition_jobs SET status = $2, last_error = NULLIF($3, ''), finished_at = now()
			WHERE id = $1
			RETURNING certificate_id
		`, jobID, status, reason).Scan(&certID); err != nil {
			if notFound(err) {
				return ports.ErrNotFound
			}
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE certificates
			SET status = $2,
				progress = CASE WHEN $2 = 'completed' THEN 1 ELSE progress END,
				finished_at = now()
			WHERE id = $1
		`, certID, status)
		return err
	})
}
