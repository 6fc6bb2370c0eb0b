package quality

import (
	"certforge/internal/domain"
)

const (
	signaturePenalty        = 15
	criticalActionPenalty   = 10
	maxCriticalActionsTotal = 30
)

// Score computes completeness and item counts for cert.
//
// Completion is the share of entities with at least one recorded (non
// placeholder) field. The score is completion minus rule penalties for a
// missing inspector signature and for C1/C2 observations without follow-up,
// clamped to 0..100.
func Score(cert domain.Certificate) domain.QualityMetrics {
	return ScoreFor(cert, domain.DefaultOptions())
}

// ScoreFor scores cert for a document rendered with opts. Without digital
// signatures the signature penalty does not apply, matching RulesFor.
func ScoreFor(cert domain.Certificate, opts domain.Options) domain.QualityMetrics {
	var m domain.QualityMetrics

	for _, it := range cert.InspectionItems {
		switch it.Outcome {
		case domain.Acceptable:
			m.Satisfactory++
		case string(domain.SeverityC1), string(domain.SeverityC2), domain.Unacceptable:
			m.Critical++
		case string(domain.SeverityC3):
			m.Improvement++
		case domain.Limitation, domain.NotVerified, string(domain.SeverityFI):
			m.Limitation++
		}
	}
	for _, o := range cert.Observations {
		switch {
		case o.Code.Critical():
			m.Critical++
		case o.Code == domain.SeverityFI:
			m.Limitation++
		default:
			m.Improvement++
		}
	}

	populated := []bool{
		cert.Client.Populated(),
		cert.Inspector.Populated(),
		cert.Branding.Populated(),
		cert.Supply.Populated(),
		cert.Installation.Populated(),
		cert.Declaration.Populated(),
	}
	for _, c := range cert.Circuits {
		populated = append(populated, c.Populated())
	}
	for _, t := range cert.TestResults {
		populated = append(populated, t.Populated())
	}
	for _, o := range cert.Observations {
		populated = append(populated, o.Populated())
	}
	for _, it := range cert.InspectionItems {
		populated = append(populated, it.Populated())
	}
	m.TotalEntities = len(populated)
	for _, p := range populated {
		if p {
			m.PopulatedEntities++
		}
	}
	if m.TotalEntities > 0 {
		m.CompletionPercent = m.PopulatedEntities * 100 / m.TotalEntities
	}

	score := m.CompletionPercent
	if m.PopulatedEntities > 0 {
		if opts.IncludeDigitalSignatures && cert.Inspector.SignaturePath == "" {
			score -= signaturePenalty
		}
		score -= min(criticalWithoutAction(cert.Observations)*criticalActionPenalty, maxCriticalActionsTotal)
	}
	m.Score = max(0, min(100, score))
	return m
}
