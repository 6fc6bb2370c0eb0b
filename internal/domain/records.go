package domain

import "time"

// Submission is one certificate as supplied by the form layer.
type Submission struct {
	Record          map[string]any   `json:"record"`
	InspectionItems []map[string]any `json:"inspectionItems,omitempty"`
	Observations    []map[string]any `json:"observations,omitempty"`
	Options         OptionsInput     `json:"options"`
	CompanyID       string           `json:"companyId,omitempty"`
}

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Settled reports whether composition has finished, successfully or not.
func (s CertificateStatus) Settled() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// CertificateStatus tracks a submission through the composition queue.
type CertificateStatus struct {
	ID           string
	Status       string
	Progress     float64
	QualityScore *int
	FileName     *string
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// StoredArtifact is a persisted composition result.
type StoredArtifact struct {
	CertificateID  string
	FileName       string
	Content        []byte
	Pages          int
	Metrics        QualityMetrics
	CriticalIssues []string
	Warnings       []string
	CreatedAt      time.Time
}

type ComposeJob struct {
	ID            string
	CertificateID string
}
