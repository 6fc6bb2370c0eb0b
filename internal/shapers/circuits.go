package shapers

import (
	"strconv"

	"certforge/internal/canonical"
	"certforge/internal/domain"
)

// Candidate locations in priority order. testResults comes last: legacy
// forms only recorded circuits as part of the test schedule.
var circuitCollections = []string{
	"circuits",
	"scheduleOfTests",
	"circuitDetails",
	"distributionBoard.circuits",
	"boards.0.circuits",
	"testResults",
}

var circuitCountHints = []string{
	"numberOfCircuits",
	"circuitCount",
	"distributionBoard.numberOfCircuits",
	"boardDetails.numberOfWays",
}

var (
	circuitNumberPaths      = []string{"circuitNumber", "number", "circuitRef", "ref", "wayNumber"}
	circuitDescriptionPaths = []string{"circuitDescription", "description", "designation", "name"}
)

// Circuits shapes the circuit schedule.
func Circuits(rec canonical.Record) []domain.Circuit {
	rows := selectRows(rec, nil, circuitCollections...)
	if len(rows) == 0 {
		return synthesizeCircuits(countHint(rec))
	}
	out := make([]domain.Circuit, len(rows))
	for i, row := range rows {
		out[i] = circuit(row, i)
	}
	return out
}

func circuit(row canonical.Record, i int) domain.Circuit {
	na := domain.NotApplicable
	return domain.Circuit{
		Number:           row.String(ordinal(i), circuitNumberPaths...),
		Description:      row.String("Circuit "+ordinal(i), circuitDescriptionPaths...),
		TypeOfWiring:     row.String(na, "typeOfWiring", "wiringType", "cableType"),
		ReferenceMethod:  row.String(na, "referenceMethod", "installationMethod"),
		Points:           row.String(na, "pointsServed", "points", "numberOfPoints"),
		LiveSize:         row.WithUnit(canonical.UnitSquareMM, na, "liveSize", "liveConductorSize", "cableSize", "conductorSize"),
		CPCSize:          row.WithUnit(canonical.UnitSquareMM, na, "cpcSize", "cpc", "earthConductorSize"),
		DeviceStandard:   row.String(na, "bsStandard", "protectiveDeviceType", "deviceStandard", "bsNumber"),
		DeviceType:       row.String(na, "protectiveDeviceCurve", "curve", "deviceType"),
		Rating:           row.WithUnit(canonical.UnitAmps, na, "protectiveDeviceRating", "rating", "ratingAmps", "ocpdRating"),
		BreakingCapacity: row.WithUnit(canonical.UnitKiloAmps, na, "breakingCapacity", "protectiveDeviceKaRating", "kaRating"),
		RCDType:          row.String(na, "rcdType"),
		RCDRating:        row.WithUnit(canonical.UnitMilliAmps, na, "rcdRating", "rcdOperatingCurrent", "idn"),
		MaxZs:            row.WithUnit(canonical.UnitOhms, na, "maxZs", "maximumZs", "maxPermittedZs"),
	}
}

func countHint(rec canonical.Record) int {
	n := rec.Int(0, circuitCountHints...)
	if n < 0 {
		return 0
	}
	if n > MaxSynthesizedRows {
		return MaxSynthesizedRows
	}
	return n
}

func synthesizeCircuits(n int) []domain.Circuit {
	if n == 0 {
		return nil
	}
	out := make([]domain.Circuit, n)
	for i := range out {
		c := circuit(canonical.Record{}, i)
		c.Description = "Circuit " + strconv.Itoa(i+1)
		c.Synthesized = true
		out[i] = c
	}
	return out
}
