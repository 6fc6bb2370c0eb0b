package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certforge/internal/domain"
	"certforge/internal/ports"
)

// testDB connects to TEST_DATABASE_URL and applies migrations, skipping when unset.
func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url, 2)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestValidID(t *testing.T) {
	assert.True(t, validID(uuid.NewString()))
	assert.False(t, validID("not-a-uuid"))
	assert.False(t, validID(""))
}

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	db := &DB{}
	ctx := context.Background()

	_, err := db.Get(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = db.Status(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = db.LatestArtifact(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = db.StartJobForCertificate(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCertificateLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	format := "Letter"
	sub := domain.Submission{
		Record:       map[string]any{"certificateNumber": "EICR-1", "clientName": "Jane"},
		Observations: []map[string]any{{"id": "o1", "code": "C2"}},
		Options:      domain.OptionsInput{Format: format},
	}
	id, err := db.Create(ctx, sub)
	require.NoError(t, err)

	got, err := db.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "EICR-1", got.Record["certificateNumber"])
	assert.Equal(t, format, got.Options.Format)
	require.Len(t, got.Observations, 1)

	jobID, err := db.StartJobForCertificate(ctx, id)
	require.NoError(t, err)
	require.NoError(t, db.UpdateProgress(ctx, id, 0.5))

	st, err := db.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "running", st.Status)
	assert.InDelta(t, 0.5, st.Progress, 1e-9)

	require.NoError(t, db.SaveArtifact(ctx, domain.StoredArtifact{
		CertificateID: id,
		FileName:      "EICR_EICR-1_Jane_undated.pdf",
		Content:       []byte("%PDF-1.3"),
		Pages:         3,
		Metrics:       domain.QualityMetrics{Score: 64},
	}))
	require.NoError(t, db.MarkCompleted(ctx, jobID))

	st, err = db.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "completed", st.Status)
	assert.InDelta(t, 1.0, st.Progress, 1e-9)
	require.NotNil(t, st.QualityScore)
	assert.Equal(t, 64, *st.QualityScore)

	art, err := db.LatestArtifact(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, art.Pages)
	assert.Equal(t, []string{}, art.CriticalIssues)

	_, err = db.StartJobForCertificate(ctx, id)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListPhotoPaths_Ordered(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	obs := "obs-" + uuid.NewString()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO observation_photos (observation_id, storage_path, position)
		VALUES ($1, 'b.jpg', 2), ($1, 'a.jpg', 1), ($1, 'c.jpg', 2)
	`, obs)
	require.NoError(t, err)

	paths, err := db.ListPhotoPaths(ctx, obs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, paths)
}
