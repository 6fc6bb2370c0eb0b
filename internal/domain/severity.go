package domain

import "strings"

// Severity is an observation classification code.
type Severity string

const (
	SeverityC1 Severity = "C1"
	SeverityC2 Severity = "C2"
	SeverityC3 Severity = "C3"
	SeverityFI Severity = "FI"
)

var severityAliases = map[string]Severity{
	"c1":                             SeverityC1,
	"code1":                          SeverityC1,
	"code 1":                         SeverityC1,
	"danger":                         SeverityC1,
	"danger present":                 SeverityC1,
	"c2":                             SeverityC2,
	"code2":                          SeverityC2,
	"code 2":                         SeverityC2,
	"potentially dangerous":          SeverityC2,
	"c3":                             SeverityC3,
	"code3":                          SeverityC3,
	"code 3":                         SeverityC3,
	"improvement":                    SeverityC3,
	"improvement recommended":        SeverityC3,
	"fi":                             SeverityFI,
	"further investigation":          SeverityFI,
	"further investigation required": SeverityFI,
}

// ParseSeverity normalises a recorded classification. Unknown values report false.
func ParseSeverity(s string) (Severity, bool) {
	sev, ok := severityAliases[strings.ToLower(strings.TrimSpace(s))]
	return sev, ok
}

func (s Severity) Description() string {
	switch s {
	case SeverityC1:
		return "Danger present. Risk of injury. Immediate remedial action required"
	case SeverityC2:
		return "Potentially dangerous. Urgent remedial action required"
	case SeverityFI:
		return "Further investigation required without delay"
	default:
		return "Improvement recommended"
	}
}

func (s Severity) Urgency() string {
	switch s {
	case SeverityC1:
		return "Immediate"
	case SeverityC2:
		return "Urgent"
	case SeverityFI:
		return "Investigate"
	default:
		return "Recommended"
	}
}

// RequiresRectification is true for C1, C2 and FI.
func (s Severity) RequiresRectification() bool {
	return s == SeverityC1 || s == SeverityC2 || s == SeverityFI
}

// Critical is true for C1 and C2.
func (s Severity) Critical() bool { return s == SeverityC1 || s == SeverityC2 }
