package quality_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certforge/internal/canonical"
	"certforge/internal/domain"
	"certforge/internal/quality"
	"certforge/internal/shapers"
)

func shape(t *testing.T, raw string) domain.Certificate {
	t.Helper()
	rec, err := canonical.FromJSON([]byte(raw))
	require.NoError(t, err)
	return shapers.Shape(rec, shapers.Inputs{})
}

func codes(issues []quality.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Code)
	}
	return out
}

const complete = `{
	"certificateNumber":"EICR-7","clientName":"Jane Doe","clientAddress":"2 Low Rd",
	"installationAddress":"1 High St","inspectorName":"Sam Spark","inspectorSignature":"sigs/sam.png",
	"companyName":"Spark Ltd","inspectionDate":"2024-03-05","nextInspectionDate":"2029-03-05",
	"earthingArrangement":"TN-S","summaryOfCondition":"Good",
	"circuits":[{"circuitNumber":"1","description":"Lights","rating":6}],
	"testResults":[{"circuitNumber":"1","r1r2":0.4,"zs":0.8}],
	"inspectionItems":[{"description":"Labelling","outcome":"acceptable"}]
}`

func TestScore_EmptyRecordScoresZero(t *testing.T) {
	m := quality.Score(shape(t, `{}`))
	assert.Equal(t, 0, m.Score)
	assert.Equal(t, 0, m.PopulatedEntities)
	assert.Equal(t, 0, m.CompletionPercent)
	assert.Positive(t, m.TotalEntities)
}

func TestScore_CompleteRecord(t *testing.T) {
	m := quality.Score(shape(t, complete))
	assert.Equal(t, 100, m.CompletionPercent)
	assert.Equal(t, 100, m.Score)
	assert.Equal(t, 1, m.Satisfactory)
}

func TestScore_Penalties(t *testing.T) {
	cert := shape(t, complete)
	cert.Inspector.SignaturePath = ""
	m := quality.Score(cert)
	assert.Equal(t, 85, m.Score)

	for range 5 {
		cert.Observations = append(cert.Observations, domain.Observation{
			Code: domain.SeverityC1, Description: "Exposed live parts", Recommendation: domain.NotSpecified,
		})
	}
	m = quality.Score(cert)
	// Observations are populated, so completion stays at 100; the action penalty caps at 30.
	assert.Equal(t, 100, m.CompletionPercent)
	assert.Equal(t, 55, m.Score)
	assert.Equal(t, 5, m.Critical)
}

func TestScoreFor_SignaturesDisabledMatchesRules(t *testing.T) {
	cert := shape(t, complete)
	cert.Inspector.SignaturePath = ""
	opts := domain.DefaultOptions()
	opts.IncludeDigitalSignatures = false

	m := quality.ScoreFor(cert, opts)
	assert.Equal(t, 100, m.Score)
	assert.NotContains(t, codes(quality.ValidateWith(cert, quality.RulesFor(opts)).Critical), quality.CodeSignatureMissing)

	assert.Equal(t, 85, quality.ScoreFor(cert, domain.DefaultOptions()).Score)
}

func TestScore_Clamped(t *testing.T) {
	cert := shape(t, `{"clientName":"A"}`)
	for range 3 {
		cert.Observations = append(cert.Observations, domain.Observation{Code: domain.SeverityC2})
	}
	m := quality.Score(cert)
	assert.GreaterOrEqual(t, m.Score, 0)
	assert.LessOrEqual(t, m.Score, 100)
}

func TestScore_CountsByCategory(t *testing.T) {
	cert := domain.Certificate{
		InspectionItems: []domain.InspectionItem{
			{Outcome: domain.Acceptable}, {Outcome: domain.Unacceptable}, {Outcome: "C3"},
			{Outcome: domain.Limitation}, {Outcome: domain.NotVerified}, {Outcome: domain.NotApplicable},
		},
		Observations: []domain.Observation{
			{Code: domain.SeverityC1}, {Code: domain.SeverityC3}, {Code: domain.SeverityFI},
		},
	}
	m := quality.Score(cert)
	assert.Equal(t, 1, m.Satisfactory)
	assert.Equal(t, 2, m.Critical)
	assert.Equal(t, 2, m.Improvement)
	assert.Equal(t, 3, m.Limitation)
}

func TestScore_DoesNotMutate(t *testing.T) {
	cert := shape(t, complete)
	before := shape(t, complete)
	quality.Score(cert)
	quality.Validate(cert)
	assert.Empty(t, cmp.Diff(before, cert))
}

func TestValidate_EmptyRecord(t *testing.T) {
	f := quality.Validate(shape(t, `{}`))
	assert.True(t, f.HasCritical())
	assert.ElementsMatch(t, []string{
		"client_name_missing", "installation_address_missing", "inspector_name_missing", quality.CodeSignatureMissing,
	}, codes(f.Critical))
	assert.Contains(t, codes(f.Warnings), "inspection_date_missing")
}

func TestValidate_CompleteRecord(t *testing.T) {
	f := quality.Validate(shape(t, complete))
	assert.Empty(t, f.Critical)
	assert.Empty(t, f.Warnings)
}

func TestValidate_CircuitsWithoutResults(t *testing.T) {
	cert := shape(t, complete)
	cert.TestResults = []domain.TestResult{{CircuitNumber: "1", Synthesized: true}}
	assert.Contains(t, codes(quality.Validate(cert).Critical), "test_results_missing")
}

func TestValidate_CriticalObservationWithoutAction(t *testing.T) {
	cert := shape(t, complete)
	cert.Observations = []domain.Observation{
		{Code: domain.SeverityC2, Recommendation: "Replace board"},
		{Code: domain.SeverityC3, Recommendation: domain.NotSpecified},
	}
	assert.NotContains(t, codes(quality.Validate(cert).Critical), "critical_without_action")

	cert.Observations[0].Recommendation = domain.NotSpecified
	assert.Contains(t, codes(quality.Validate(cert).Critical), "critical_without_action")
}

func TestValidate_LimitationsUnexplained(t *testing.T) {
	cert := shape(t, complete)
	cert.InspectionItems = append(cert.InspectionItems, domain.InspectionItem{Description: "Loft", Outcome: domain.Limitation})
	assert.Contains(t, codes(quality.Validate(cert).Warnings), "limitations_unexplained")

	cert.Installation.Limitations = "Loft not accessible"
	assert.NotContains(t, codes(quality.Validate(cert).Warnings), "limitations_unexplained")
}

func TestRulesFor_SignaturesDisabled(t *testing.T) {
	cert := shape(t, complete)
	cert.Inspector.SignaturePath = ""

	opts := domain.DefaultOptions()
	assert.Contains(t, codes(quality.ValidateWith(cert, quality.RulesFor(opts)).Critical), quality.CodeSignatureMissing)

	opts.IncludeDigitalSignatures = false
	assert.Empty(t, quality.ValidateWith(cert, quality.RulesFor(opts)).Critical)
}

func TestReport(t *testing.T) {
	cert := shape(t, `{}`)
	f := quality.Validate(cert)
	m := quality.Score(cert)

	out := quality.Report(f, m)
	assert.Contains(t, out, "Quality score 0/100")
	assert.Contains(t, out, "Critical issues:")
	assert.Contains(t, out, "[client_name_missing]")
	assert.True(t, quality.NeedsAttention(f, m, 70))
	assert.False(t, quality.NeedsAttention(quality.Findings{}, domain.QualityMetrics{Score: 90}, 70))
}
