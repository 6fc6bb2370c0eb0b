package shapers

import (
	"strings"

	"certforge/internal/canonical"
	"certforge/internal/domain"
)

var observationCollections = []string{
	"observations",
	"defects",
	"codedObservations",
	"observationsAndRecommendations",
}

// Observations shapes coded observations. Caller-supplied rows take
// precedence over any list embedded in the record.
func Observations(rec canonical.Record, supplied []map[string]any) []domain.Observation {
	rows := selectRows(rec, supplied, observationCollections...)
	if len(rows) == 0 {
		return nil
	}
	out := make([]domain.Observation, len(rows))
	for i, row := range rows {
		out[i] = observation(row, i)
	}
	return out
}

func observation(row canonical.Record, i int) domain.Observation {
	code := severity(row.String("", "code", "classification", "classificationCode", "severity", "defectCode"))
	return domain.Observation{
		ID:                    row.String("", "id", "observationId", "uuid"),
		ItemNumber:            row.String(ordinal(i), "itemNumber", "item", "number"),
		Description:           row.String(domain.NotSpecified, "description", "observation", "defectDescription", "text"),
		Code:                  code,
		CodeDescription:       code.Description(),
		Urgency:               code.Urgency(),
		RectificationRequired: code.RequiresRectification(),
		Location:              row.String(domain.NotApplicable, "location", "area", "circuitReference"),
		Recommendation:        row.String(domain.NotApplicable, "recommendation", "recommendedAction", "remedialAction", "action"),
		Regulation:            row.String(domain.NotApplicable, "regulation", "regulationReference", "bsReference"),
	}
}

// severity falls back to C3 for unknown or missing codes.
func severity(s string) domain.Severity {
	if sev, ok := domain.ParseSeverity(s); ok {
		return sev
	}
	return domain.SeverityC3
}

var inspectionCollections = []string{
	"inspectionItems",
	"inspectionChecklist",
	"inspections",
	"checklist",
}

// InspectionItems shapes the inspection schedule.
func InspectionItems(rec canonical.Record, supplied []map[string]any) []domain.InspectionItem {
	rows := selectRows(rec, supplied, inspectionCollections...)
	if len(rows) == 0 {
		return nil
	}
	out := make([]domain.InspectionItem, len(rows))
	for i, row := range rows {
		out[i] = domain.InspectionItem{
			Section:     row.String("General", "section", "category", "group"),
			Number:      row.String(ordinal(i), "itemNumber", "number", "ref", "id"),
			Description: row.String(domain.NotSpecified, "description", "item", "title", "label"),
			Outcome:     inspectionOutcome(row.String("", "outcome", "result", "status", "value")),
			Notes:       row.String(domain.NotApplicable, "notes", "comments", "comment"),
		}
	}
	return out
}

func inspectionOutcome(s string) string {
	if s == "" {
		return domain.NotVerified
	}
	if sev, ok := domain.ParseSeverity(s); ok {
		return string(sev)
	}
	switch strings.ToLower(s) {
	case "acceptable", "satisfactory", "pass", "yes", "ok", "true", "✓", "tick":
		return domain.Acceptable
	case "unacceptable", "fail", "no", "false", "✗", "x":
		return domain.Unacceptable
	case "n/v", "nv", "not verified":
		return domain.NotVerified
	case "lim", "limitation":
		return domain.Limitation
	case "n/a", "na", "not applicable":
		return domain.NotApplicable
	}
	return s
}
