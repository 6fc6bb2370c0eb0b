package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"certforge/internal/domain"
	"certforge/internal/ports"
)

// SaveArtifact stores a composed document and copies its score and filename onto the certificate.
func (db *DB) SaveArtifact(ctx context.Context, a domain.StoredArtifact) error {
	critical := nonNil(a.CriticalIssues)
	warnings := nonNil(a.Warnings)
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO certificate_artifacts
				(certificate_id, filename, content, pages, quality_score, metrics, critical_issues, warnings)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, a.CertificateID, a.FileName, a.Content, a.Pages, a.Metrics.Score, a.Metrics, critical, warnings); err != nil {
			return fmt.Errorf("insert artifact: %w", err)
		}
		tag, err := tx.Exec(ctx, `
			UPDATE certificates SET quality_score = $2, filename = $3 WHERE id = $1
		`, a.CertificateID, a.Metrics.Score, a.FileName)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

func (db *DB) LatestArtifact(ctx context.Context, certificateID string) (domain.StoredArtifact, error) {
	a := domain.StoredArtifact{CertificateID: certificateID}
	if !validID(certificateID) {
		return a, ports.ErrNotFound
	}
	err := db.Pool.QueryRow(ctx, `
		SELECT filename, content, pages, metrics, critical_issues, warnings, created_at
		FROM certificate_artifacts
		WHERE certificate_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, certificateID).Scan(&a.FileName, &a.Content, &a.Pages, &a.Metrics, &a.CriticalIssues, &a.Warnings, &a.CreatedAt)
	if notFound(err) {
		return a, ports.ErrNotFound
	}
	return a, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
