package domain

import "time"

// Image is a decoded, ready-to-place image. Format is "jpeg" or "png".
type Image struct {
	Key    string
	Format string
	Data   []byte
	Width  int
	Height int
}

// QualityMetrics is computed fresh for every composition run and never persisted by the composer.
type QualityMetrics struct {
	Satisfactory      int `json:"satisfactory"`
	Critical          int `json:"critical"`
	Improvement       int `json:"improvement"`
	Limitation        int `json:"limitation"`
	TotalEntities     int `json:"totalEntities"`
	PopulatedEntities int `json:"populatedEntities"`
	CompletionPercent int `json:"completionPercent"`
	Score             int `json:"score"`
}

type Metadata struct {
	Title         string
	Subject       string
	Author        string
	Keywords      string
	CertificateID string
	QualityScore  int
	CreatedAt     time.Time
}

// Artifact is the finished document. It is not modified after Compose returns it.
type Artifact struct {
	Content        []byte
	FileName       string
	Pages          int
	Metadata       Metadata
	Metrics        QualityMetrics
	CriticalIssues []string
	Warnings       []string
}
