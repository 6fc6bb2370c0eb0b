package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"certforge/internal/domain"
	"certforge/internal/ports"
)

// Create stores a submission and queues its composition job.
func (db *DB) Create(ctx context.Context, sub domain.Submission) (string, error) {
	var certID string
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO certificates (company_id, raw, inspection_items, observations, options)
			VALUES (NULLIF($1, ''), $2, $3, $4, $5)
			RETURNING id
		`, sub.CompanyID, sub.Record, sub.InspectionItems, sub.Observations, sub.Options).Scan(&certID); err != nil {
			return fmt.Errorf("insert certificate: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO composition_jobs (certificate_id) VALUES ($1)`, certID); err != nil {
			return fmt.Errorf("queue composition: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return certID, nil
}

func (db *DB) Get(ctx context.Context, certificateID string) (domain.Submission, error) {
	var sub domain.Submission
	if !validID(certificateID) {
		return sub, ports.ErrNotFound
	}
	var companyID *string
	err := db.Pool.QueryRow(ctx, `
		SELECT company_id, raw, inspection_items, observations, options
		FROM certificates WHERE id = $1
	`, certificateID).Scan(&companyID, &sub.Record, &sub.InspectionItems, &sub.Observations, &sub.Options)
	if notFound(err) {
		return sub, ports.ErrNotFound
	}
	if err != nil {
		return sub, err
	}
	if companyID != nil {
		sub.CompanyID = *companyID
	}
	return sub, nil
}

func (db *DB) Status(ctx context.Context, certificateID string) (domain.CertificateStatus, error) {
	st := domain.CertificateStatus{ID: certificateID}
	if !validID(certificateID) {
		return st, ports.ErrNotFound
	}
	err := db.Pool.QueryRow(ctx, `
		SELECT status, progress, quality_score, filename, created_at, finished_at
		FROM certificates WHERE id = $1
	`, certificateID).Scan(&st.Status, &st.Progress, &st.QualityScore, &st.FileName, &st.CreatedAt, &st.FinishedAt)
	if notFound(err) {
		return st, ports.ErrNotFound
	}
	return st, err
}

// GetProfile returns the branding stored for a company.
func (db *DB) GetProfile(ctx context.Context, companyID string) (map[string]any, error) {
	var branding map[string]any
	err := db.Pool.QueryRow(ctx, `SELECT branding FROM company_profiles WHERE company_id = $1`, companyID).Scan(&branding)
	if notFound(err) {
		return nil, ports.ErrNotFound
	}
	return branding, err
}

// ListPhotoPaths returns an observation's photo paths in display order.
func (db *DB) ListPhotoPaths(ctx context.Context, observationID string) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT storage_path FROM observation_photos
		WHERE observation_id = $1
		ORDER BY position, storage_path
	`, observationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
