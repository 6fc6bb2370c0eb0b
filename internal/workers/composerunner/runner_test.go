package composerunner_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certforge/internal/compose"
	"certforge/internal/domain"
	"certforge/internal/layout"
	"certforge/internal/layout/layouttest"
	"certforge/internal/metrics"
	"certforge/internal/ports"
	"certforge/internal/workers/composerunner"
)

type fakeJobs struct {
	mu        sync.Mutex
	queue     []domain.ComposeJob
	completed []string
	failed    map[string]string
	progress  map[string][]float64
}

func newFakeJobs(certIDs ...string) *fakeJobs {
	f := &fakeJobs{failed: map[string]string{}, progress: map[string][]float64{}}
	for _, id := range certIDs {
		f.queue = append(f.queue, domain.ComposeJob{ID: "job-" + id, CertificateID: id})
	}
	return f
}

func (f *fakeJobs) ClaimNext(context.Context) (domain.ComposeJob, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return domain.ComposeJob{}, false, nil
	}
	job := f.queue[0]
	f.queue = f.queue[1:]
	return job, true, nil
}

func (f *fakeJobs) UpdateProgress(_ context.Context, id string, p float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[id] = append(f.progress[id], p)
	return nil
}

func (f *fakeJobs) MarkCompleted(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, jobID)
	return nil
}

func (f *fakeJobs) MarkFailed(_ context.Context, jobID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[jobID] = reason
	return nil
}

func (f *fakeJobs) StartJobForCertificate(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.queue {
		if j.CertificateID == id {
			f.queue = append(f.queue[:i], f.queue[i+1:]...)
			return j.ID, nil
		}
	}
	return "", ports.ErrNotFound
}

func (f *fakeJobs) settled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.completed) + len(f.failed)
}

type processorFunc func(ctx context.Context, id string) error

func (p processorFunc) Process(ctx context.Context, id string) error { return p(ctx, id) }

func TestRun_ProcessesQueueAndStops(t *testing.T) {
	jobs := newFakeJobs("a", "b", "c", "bad")
	proc := processorFunc(func(_ context.Context, id string) error {
		if id == "bad" {
			return errors.New("broken record")
		}
		return nil
	})
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		composerunner.Run(ctx, jobs, proc, composerunner.Config{
			Concurrency:  2,
			PollInterval: 5 * time.Millisecond,
			Metrics:      m,
		})
		close(done)
	}()

	require.Eventually(t, func() bool { return jobs.settled() == 4 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.ElementsMatch(t, []string{"job-a", "job-b", "job-c"}, jobs.completed)
	assert.Equal(t, map[string]string{"job-bad": "broken record"}, jobs.failed)
	assert.InDelta(t, 4, testutil.ToFloat64(m.JobsClaimedTotal), 0)
}

func TestRun_NoWorkersReturnsImmediately(t *testing.T) {
	composerunner.Run(context.Background(), newFakeJobs("a"), processorFunc(func(context.Context, string) error {
		t.Fatal("processed without workers")
		return nil
	}), composerunner.Config{})
}

func TestProcessInline(t *testing.T) {
	jobs := newFakeJobs("a", "b")
	var seen []string
	proc := processorFunc(func(_ context.Context, id string) error {
		seen = append(seen, id)
		if id == "b" {
			return errors.New("nope")
		}
		return nil
	})

	require.NoError(t, composerunner.ProcessInline(context.Background(), jobs, proc, "a"))
	assert.Equal(t, []string{"job-a"}, jobs.completed)

	err := composerunner.ProcessInline(context.Background(), jobs, proc, "b")
	require.EqualError(t, err, "nope")
	assert.Equal(t, "nope", jobs.failed["job-b"])

	err = composerunner.ProcessInline(context.Background(), jobs, proc, "missing")
	assert.ErrorIs(t, err, composerunner.ErrNotQueued)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.Equal(t, []string{"a", "b"}, seen)

	// A job a worker already claimed is not processed a second time.
	jobs = newFakeJobs("c")
	_, _, _ = jobs.ClaimNext(context.Background())
	err = composerunner.ProcessInline(context.Background(), jobs, proc, "c")
	assert.ErrorIs(t, err, composerunner.ErrNotQueued)
	assert.Equal(t, []string{"a", "b"}, seen)
}

type fakeCerts map[string]domain.Submission

func (f fakeCerts) Create(context.Context, domain.Submission) (string, error) { return "", nil }
func (f fakeCerts) Status(context.Context, string) (domain.CertificateStatus, error) {
	return domain.CertificateStatus{}, nil
}
func (f fakeCerts) Get(_ context.Context, id string) (domain.Submission, error) {
	sub, ok := f[id]
	if !ok {
		return sub, ports.ErrNotFound
	}
	return sub, nil
}

type fakeArtifacts struct{ saved []domain.StoredArtifact }

func (f *fakeArtifacts) SaveArtifact(_ context.Context, a domain.StoredArtifact) error {
	f.saved = append(f.saved, a)
	return nil
}
func (f *fakeArtifacts) LatestArtifact(context.Context, string) (domain.StoredArtifact, error) {
	return domain.StoredArtifact{}, ports.ErrNotFound
}

type fakeBranding map[string]map[string]any

func (f fakeBranding) Profile(_ context.Context, id string) (map[string]any, error) {
	return f[id], nil
}

func recorderComposer() *compose.Composer {
	return compose.New(func(f domain.PageFormat) layout.Document { return layouttest.New(f) },
		compose.WithClock(func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }))
}

func TestComposeProcessor_SavesArtifact(t *testing.T) {
	certs := fakeCerts{"c1": {
		Record: map[string]any{
			"certificateNumber": "EICR-77",
			"clientName":        "Jane Doe",
			"inspectionDate":    "2026-02-14",
		},
		CompanyID: "acme",
	}}
	arts := &fakeArtifacts{}
	jobs := newFakeJobs()
	p := composerunner.ComposeProcessor{
		Certificates: certs,
		Artifacts:    arts,
		Branding:     fakeBranding{"acme": {"companyName": "Acme Electrical"}},
		Jobs:         jobs,
		Composer:     recorderComposer(),
	}

	require.NoError(t, p.Process(context.Background(), "c1"))
	require.Len(t, arts.saved, 1)
	saved := arts.saved[0]
	assert.Equal(t, "c1", saved.CertificateID)
	assert.Equal(t, "EICR_EICR-77_Jane_Doe_2026-02-14.pdf", saved.FileName)
	assert.NotEmpty(t, saved.Content)
	assert.Positive(t, saved.Pages)
	assert.NotEmpty(t, saved.CriticalIssues)

	progress := jobs.progress["c1"]
	require.NotEmpty(t, progress)
	assert.InDelta(t, 1.0, progress[len(progress)-1], 1e-9)
	assert.IsNonDecreasing(t, progress)
}

func TestComposeProcessor_UnknownCertificate(t *testing.T) {
	p := composerunner.ComposeProcessor{
		Certificates: fakeCerts{},
		Artifacts:    &fakeArtifacts{},
		Composer:     recorderComposer(),
	}
	err := p.Process(context.Background(), "ghost")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
