package shapers_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certforge/internal/canonical"
	"certforge/internal/domain"
	"certforge/internal/shapers"
)

func record(t *testing.T, raw string) canonical.Record {
	t.Helper()
	r, err := canonical.FromJSON([]byte(raw))
	require.NoError(t, err)
	return r
}

// assertTotal walks every string field of v and fails on empty values.
// Asset references (fields ending in Path) may legitimately be empty.
func assertTotal(t *testing.T, v reflect.Value, path string) {
	t.Helper()
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Type().Field(i)
			if strings.HasSuffix(f.Name, "Path") {
				continue
			}
			assertTotal(t, v.Field(i), path+"."+f.Name)
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			assertTotal(t, v.Index(i), path)
		}
	case reflect.String:
		assert.NotEmpty(t, v.String(), "field %s is empty", path)
	}
}

var fixtures = map[string]string{
	"empty":   `{}`,
	"garbage": `{"circuits":"nope","observations":{"a":1},"clientName":{"x":1},"rating":[],"testResults":[1,null,"x"]}`,
	"full": `{
		"certificateNumber":"EICR-001","clientName":"Jane Doe","installationAddress":"1 High St",
		"inspectorName":"Sam Spark","inspectorSignature":"sigs/sam.png","inspectionDate":"2024-03-05T10:00:00Z",
		"earthingArrangement":"TN-C-S","ze":0.35,"pfc":"1.6kA",
		"circuits":[{"circuitNumber":"1","description":"Lights","liveSize":"1.5","cpcSize":"1.0mm²","rating":6},
		            {"circuitNumber":"2","description":"Sockets","liveSize":2.5,"rating":"32A","rcdRating":30}],
		"testResults":[{"circuitNumber":"1","r1r2":0.42,"zs":"0.77","insulationLiveEarth":">200","polarity":true},
		               {"circuitNumber":"2","r1r2":"0.3Ω","polarity":"fail"}],
		"observations":[{"id":"o1","code":"C2","description":"No RCD on sockets","recommendation":"Fit RCD"},
		                {"code":"weird","description":"Label missing"}],
		"inspectionItems":[{"section":"Consumer unit","description":"Labelling","outcome":"acceptable"},
		                   {"description":"Bonding","outcome":"lim"}]
	}`,
}

func TestShape_EveryFieldPopulated(t *testing.T) {
	for name, raw := range fixtures {
		t.Run(name, func(t *testing.T) {
			cert := shapers.Shape(record(t, raw), shapers.Inputs{})
			assertTotal(t, reflect.ValueOf(cert), "Certificate")
		})
	}
}

func TestShape_Idempotent(t *testing.T) {
	for name, raw := range fixtures {
		t.Run(name, func(t *testing.T) {
			a := shapers.Shape(record(t, raw), shapers.Inputs{})
			b := shapers.Shape(record(t, raw), shapers.Inputs{})
			if diff := cmp.Diff(a, b); diff != "" {
				t.Fatalf("shaping is not deterministic (-first +second):\n%s", diff)
			}
		})
	}
}

func TestShape_EmptyRecordPlaceholders(t *testing.T) {
	cert := shapers.Shape(canonical.Record{}, shapers.Inputs{})
	assert.Equal(t, domain.NotSpecified, cert.Client.Name)
	assert.Empty(t, cert.Circuits)
	assert.Empty(t, cert.TestResults)
	assert.Empty(t, cert.Observations)
	assert.Equal(t, shapers.AssessmentSatisfactory, cert.Declaration.OverallAssessment)
}

func TestCircuits_RowCountMatchesWinningList(t *testing.T) {
	rec := record(t, `{"circuits":[],"scheduleOfTests":[{"a":1},{"a":2},{"a":3}],"circuitDetails":[{"a":1}]}`)
	assert.Len(t, shapers.Circuits(rec), 3)
}

func TestCircuits_LegacyAliasMatchesCanonicalField(t *testing.T) {
	rows := `[{"circuitNumber":"1","description":"Cooker","liveSize":"6","cpcSize":"2.5","rating":"40"},
	          {"circuitNumber":"2","description":"Immersion","liveSize":"2.5mm²","rating":16}]`
	modern := shapers.Circuits(record(t, `{"circuits":`+rows+`}`))
	legacy := shapers.Circuits(record(t, `{"circuitDetails":`+rows+`}`))
	if diff := cmp.Diff(modern, legacy); diff != "" {
		t.Fatalf("legacy alias shaped differently (-circuits +circuitDetails):\n%s", diff)
	}
	assert.Equal(t, "6mm²", modern[0].LiveSize)
	assert.Equal(t, "2.5mm²", modern[1].LiveSize)
	assert.Equal(t, "40A", modern[0].Rating)
}

func TestCircuits_NoMergingAcrossCandidates(t *testing.T) {
	rec := record(t, `{"circuits":[{"description":"A"}],"circuitDetails":[{"description":"B","rating":20}]}`)
	got := shapers.Circuits(rec)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Description)
	assert.Equal(t, domain.NotApplicable, got[0].Rating)
}

func TestCircuits_DerivedFromTestResults(t *testing.T) {
	got := shapers.Circuits(record(t, `{"testResults":[{"circuitNumber":"4","description":"Shower"}]}`))
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].Number)
	assert.Equal(t, "Shower", got[0].Description)
}

func TestCircuits_CountHintSynthesis(t *testing.T) {
	rec := record(t, `{"numberOfCircuits":"12"}`)
	circuits := shapers.Circuits(rec)
	require.Len(t, circuits, 12)
	assert.Equal(t, "Circuit 12", circuits[11].Description)
	assert.True(t, circuits[0].Synthesized)

	tests := shapers.TestResults(rec, circuits)
	require.Len(t, tests, 12)
	assert.Equal(t, "12", tests[11].CircuitNumber)
	assert.False(t, tests[0].HasReadings())

	capped := shapers.Circuits(record(t, `{"circuitCount":500}`))
	assert.Len(t, capped, shapers.MaxSynthesizedRows)
}

func TestTestResults_Outcomes(t *testing.T) {
	cert := shapers.Shape(record(t, fixtures["full"]), shapers.Inputs{})
	require.Len(t, cert.TestResults, 2)
	assert.Equal(t, domain.Acceptable, cert.TestResults[0].Polarity)
	assert.Equal(t, domain.Unacceptable, cert.TestResults[1].Polarity)
	assert.Equal(t, ">200MΩ", cert.TestResults[0].InsulationLiveEarth)
	assert.Equal(t, "0.3Ω", cert.TestResults[1].R1R2)
}

func TestObservations_SuppliedRowsTakePrecedence(t *testing.T) {
	rec := record(t, `{"observations":[{"code":"C3"},{"code":"C3"}]}`)
	got := shapers.Observations(rec, []map[string]any{{"id": "x", "code": "c1", "description": "Exposed live parts"}})
	require.Len(t, got, 1)
	o := got[0]
	assert.Equal(t, domain.SeverityC1, o.Code)
	assert.Equal(t, "Immediate", o.Urgency)
	assert.True(t, o.RectificationRequired)
	assert.Equal(t, domain.SeverityC1.Description(), o.CodeDescription)
}

func TestObservations_UnknownCodeDefaultsToC3(t *testing.T) {
	cert := shapers.Shape(record(t, fixtures["full"]), shapers.Inputs{})
	require.Len(t, cert.Observations, 2)
	assert.Equal(t, domain.SeverityC3, cert.Observations[1].Code)
	assert.False(t, cert.Observations[1].RectificationRequired)
	assert.Empty(t, cert.Observations[1].ID, "no recorded id means no photo lookup key")
	assert.Equal(t, shapers.AssessmentUnsatisfactory, cert.Declaration.OverallAssessment)
}

func TestInspectionItems_OutcomeNormalised(t *testing.T) {
	cert := shapers.Shape(record(t, fixtures["full"]), shapers.Inputs{})
	require.Len(t, cert.InspectionItems, 2)
	assert.Equal(t, domain.Acceptable, cert.InspectionItems[0].Outcome)
	assert.Equal(t, domain.Limitation, cert.InspectionItems[1].Outcome)
	assert.Equal(t, "General", cert.InspectionItems[1].Section)
}

func TestBranding_ProfileFallback(t *testing.T) {
	rec := record(t, `{"companyBranding":{"name":"Record Electrical"}}`)
	profile := canonical.Record{"name": "Stored Ltd", "phone": "0100", "primary_color": "00ff00", "logo_path": "logos/acme.png"}
	b := shapers.Branding(rec, profile)
	assert.Equal(t, "Record Electrical", b.Name)
	assert.Equal(t, "0100", b.Phone)
	assert.Equal(t, "#00ff00", b.PrimaryColor)
	assert.Equal(t, "logos/acme.png", b.LogoPath)

	bad := shapers.Branding(record(t, `{"brandColor":"red"}`), nil)
	assert.Equal(t, "#1F3A5F", bad.PrimaryColor)
}

func TestInstallation_DatesNormalised(t *testing.T) {
	inst := shapers.Installation(record(t, `{"inspectionDate":"05/03/2024","nextInspectionDate":"soon"}`))
	assert.Equal(t, "2024-03-05", inst.InspectionDate)
	assert.Equal(t, "soon", inst.NextInspectionDate)
	assert.Equal(t, domain.None, inst.Limitations)
}
