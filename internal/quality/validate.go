// Package quality validates shaped certificates and scores their completeness.
// Nothing here mutates its input or blocks composition: findings are
// reported alongside the artifact so an incomplete certificate can still be
// issued as a draft.
package quality

import (
	"certforge/internal/domain"
)

type Level string

const (
	LevelCritical Level = "critical"
	LevelWarning  Level = "warning"
)

const CodeSignatureMissing = "inspector_signature_missing"

// Issue is one failed rule.
type Issue struct {
	Code    string
	Level   Level
	Message string
}

// Rule is a declarative predicate over a shaped certificate. Violated
// returns true when the certificate breaks the rule.
type Rule struct {
	Code     string
	Level    Level
	Message  string
	Violated func(domain.Certificate) bool
}

// Findings splits failed rules by level.
type Findings struct {
	Critical []Issue
	Warnings []Issue
}

func (f Findings) HasCritical() bool { return len(f.Critical) > 0 }

// Messages flattens issues for embedding in artifacts.
func Messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}

// DefaultRules is the rule set applied by Validate.
var DefaultRules = []Rule{
	{
		Code: "client_name_missing", Level: LevelCritical,
		Message:  "Client name has not been recorded",
		Violated: func(c domain.Certificate) bool { return domain.IsPlaceholder(c.Client.Name) },
	},
	{
		Code: "installation_address_missing", Level: LevelCritical,
		Message:  "Installation address has not been recorded",
		Violated: func(c domain.Certificate) bool { return domain.IsPlaceholder(c.Installation.Address) },
	},
	{
		Code: "inspector_name_missing", Level: LevelCritical,
		Message:  "Inspector name has not been recorded",
		Violated: func(c domain.Certificate) bool { return domain.IsPlaceholder(c.Inspector.Name) },
	},
	{
		Code: CodeSignatureMissing, Level: LevelCritical,
		Message:  "Inspector signature is missing",
		Violated: func(c domain.Certificate) bool { return c.Inspector.SignaturePath == "" },
	},
	{
		Code: "test_results_missing", Level: LevelCritical,
		Message:  "Circuits are scheduled but no test results were recorded",
		Violated: func(c domain.Certificate) bool { return len(c.Circuits) > 0 && !anyReadings(c.TestResults) },
	},
	{
		Code: "critical_without_action", Level: LevelCritical,
		Message:  "C1/C2 observation without a recommended remedial action",
		Violated: func(c domain.Certificate) bool { return criticalWithoutAction(c.Observations) > 0 },
	},
	{
		Code: "inspection_date_missing", Level: LevelWarning,
		Message:  "Inspection date has not been recorded",
		Violated: func(c domain.Certificate) bool { return domain.IsPlaceholder(c.Installation.InspectionDate) },
	},
	{
		Code: "next_inspection_missing", Level: LevelWarning,
		Message:  "Next inspection date has not been recorded",
		Violated: func(c domain.Certificate) bool { return domain.IsPlaceholder(c.Installation.NextInspectionDate) },
	},
	{
		Code: "inspection_schedule_empty", Level: LevelWarning,
		Message:  "No inspection schedule items were recorded",
		Violated: func(c domain.Certificate) bool { return len(c.InspectionItems) == 0 },
	},
	{
		Code: "limitations_unexplained", Level: LevelWarning,
		Message: "Limitations were recorded on inspection items but not described",
		Violated: func(c domain.Certificate) bool {
			return domain.IsPlaceholder(c.Installation.Limitations) && countOutcome(c.InspectionItems, domain.Limitation) > 0
		},
	},
	{
		Code: "company_unbranded", Level: LevelWarning,
		Message:  "Company branding name has not been recorded",
		Violated: func(c domain.Certificate) bool { return domain.IsPlaceholder(c.Branding.Name) },
	},
}

// Validate evaluates DefaultRules.
func Validate(cert domain.Certificate) Findings {
	return ValidateWith(cert, DefaultRules)
}

// RulesFor drops the signature rule when the document carries no signatures.
func RulesFor(opts domain.Options) []Rule {
	if opts.IncludeDigitalSignatures {
		return DefaultRules
	}
	rules := make([]Rule, 0, len(DefaultRules))
	for _, r := range DefaultRules {
		if r.Code != CodeSignatureMissing {
			rules = append(rules, r)
		}
	}
	return rules
}

func ValidateWith(cert domain.Certificate, rules []Rule) Findings {
	var f Findings
	for _, r := range rules {
		if r.Violated == nil || !r.Violated(cert) {
			continue
		}
		is := Issue{Code: r.Code, Level: r.Level, Message: r.Message}
		if r.Level == LevelCritical {
			f.Critical = append(f.Critical, is)
		} else {
			f.Warnings = append(f.Warnings, is)
		}
	}
	return f
}

func anyReadings(results []domain.TestResult) bool {
	for _, r := range results {
		if r.HasReadings() {
			return true
		}
	}
	return false
}

func criticalWithoutAction(obs []domain.Observation) int {
	n := 0
	for _, o := range obs {
		if o.Code.Critical() && domain.IsPlaceholder(o.Recommendation) {
			n++
		}
	}
	return n
}

func countOutcome(items []domain.InspectionItem, outcome string) int {
	n := 0
	for _, it := range items {
		if it.Outcome == outcome {
			n++
		}
	}
	return n
}
