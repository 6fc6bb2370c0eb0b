package quality

import (
	"fmt"
	"strings"

	"certforge/internal/domain"
)

// NeedsAttention reports whether a completion report should be emitted.
func NeedsAttention(f Findings, m domain.QualityMetrics, threshold int) bool {
	return f.HasCritical() || m.Score < threshold
}

// Report renders a human-readable completion report.
func Report(f Findings, m domain.QualityMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quality score %d/100, %d%% complete (%d of %d sections populated)\n",
		m.Score, m.CompletionPercent, m.PopulatedEntities, m.TotalEntities)
	fmt.Fprintf(&b, "Items: %d satisfactory, %d critical, %d improvement, %d limitation\n",
		m.Satisfactory, m.Critical, m.Improvement, m.Limitation)
	writeIssues(&b, "Critical issues", f.Critical)
	writeIssues(&b, "Warnings", f.Warnings)
	return strings.TrimRight(b.String(), "\n")
}

func writeIssues(b *strings.Builder, title string, issues []Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, is := range issues {
		fmt.Fprintf(b, "  - [%s] %s\n", is.Code, is.Message)
	}
}
