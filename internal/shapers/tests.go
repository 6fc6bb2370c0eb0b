package shapers

import (
	"certforge/internal/canonical"
	"certforge/internal/domain"
)

var testResultCollections = []string{
	"testResults",
	"scheduleOfTests",
	"circuitTestResults",
	"circuits",
	"circuitDetails",
}

// TestResults shapes the schedule of test results. When nothing was
// recorded but circuits were synthesised from a count hint, one placeholder
// row per circuit is produced so the schedule table stays well formed.
func TestResults(rec canonical.Record, circuits []domain.Circuit) []domain.TestResult {
	rows := selectRows(rec, nil, testResultCollections...)
	if len(rows) == 0 {
		var out []domain.TestResult
		for i, c := range circuits {
			if !c.Synthesized {
				continue
			}
			tr := testResult(canonical.Record{}, i)
			tr.CircuitNumber = c.Number
			tr.Description = c.Description
			tr.Synthesized = true
			out = append(out, tr)
		}
		return out
	}
	out := make([]domain.TestResult, len(rows))
	for i, row := range rows {
		out[i] = testResult(row, i)
	}
	return out
}

func testResult(row canonical.Record, i int) domain.TestResult {
	na := domain.NotApplicable
	return domain.TestResult{
		CircuitNumber:       row.String(ordinal(i), circuitNumberPaths...),
		Description:         row.String("Circuit "+ordinal(i), circuitDescriptionPaths...),
		R1R2:                row.WithUnit(canonical.UnitOhms, na, "r1r2", "r1PlusR2", "r1R2", "continuity"),
		R2:                  row.WithUnit(canonical.UnitOhms, na, "r2"),
		RingR1:              row.WithUnit(canonical.UnitOhms, na, "ringR1", "ringFinalR1", "ringContinuityLive"),
		RingRn:              row.WithUnit(canonical.UnitOhms, na, "ringRn", "ringFinalRn", "ringContinuityNeutral"),
		RingR2:              row.WithUnit(canonical.UnitOhms, na, "ringR2", "ringFinalR2", "ringContinuityCpc"),
		InsulationLiveLive:  row.WithUnit(canonical.UnitMegOhms, na, "insulationLiveLive", "insulationResistanceLiveLive", "irLiveLive"),
		InsulationLiveEarth: row.WithUnit(canonical.UnitMegOhms, na, "insulationLiveEarth", "insulationResistanceLiveEarth", "irLiveEarth", "insulationResistance"),
		TestVoltage:         row.WithUnit(canonical.UnitVolts, na, "insulationTestVoltage", "testVoltage"),
		Polarity:            outcome(row, na, "polarity", "polarityCorrect"),
		Zs:                  row.WithUnit(canonical.UnitOhms, na, "zs", "measuredZs", "earthFaultLoopImpedance"),
		RCDTime:             row.WithUnit(canonical.UnitMillisec, na, "rcdTime", "rcdOneX", "rcdTripTime", "rcdDisconnectionTime"),
		RCDTestButton:       outcome(row, na, "rcdTestButton", "rcdButton"),
		AFDDTest:            outcome(row, na, "afddTest", "afdd"),
		Remarks:             row.String(domain.None, "remarks", "notes", "comments"),
	}
}

// outcome renders pass/fail style values as ✓ / ✗ and keeps anything else verbatim.
func outcome(row canonical.Record, def string, paths ...string) string {
	s := row.String("", paths...)
	if s == "" {
		return def
	}
	if b, ok := canonical.ParseBool(s); ok {
		if b {
			return domain.Acceptable
		}
		return domain.Unacceptable
	}
	return s
}
