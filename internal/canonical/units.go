package canonical

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unit suffixes used by the shapers.
const (
	UnitSquareMM  = "mm²"
	UnitAmps      = "A"
	UnitKiloAmps  = "kA"
	UnitMilliAmps = "mA"
	UnitOhms      = "Ω"
	UnitMegOhms   = "MΩ"
	UnitMillisec  = "ms"
	UnitVolts     = "V"
	UnitHertz     = "Hz"
)

// knownUnits are compared case-insensitively against the end of a value.
var knownUnits = []string{
	"mm²", "mm2", "sq mm", "sqmm", "mm",
	"ka", "ma", "a", "amp", "amps",
	"mω", "megohm", "megohms", "mohm", "ω", "ohm", "ohms",
	"ms", "s", "kv", "v", "volts", "hz",
}

// HasUnitSuffix reports whether s already ends in a unit. Anything that does
// not end in a digit is treated as carrying its own suffix.
func HasUnitSuffix(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, u := range knownUnits {
		if strings.HasSuffix(lower, u) {
			return true
		}
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	return !unicode.IsDigit(last)
}

// AppendUnit appends unit to a numeric-looking value that has no unit yet.
// Placeholders and free text are returned unchanged, so "2.5mm²" never
// becomes "2.5mm²mm²".
func AppendUnit(s, unit string) string {
	s = strings.TrimSpace(s)
	if s == "" || unit == "" || !numericLooking(s) || HasUnitSuffix(s) {
		return s
	}
	return s + unit
}

func numericLooking(s string) bool {
	s = strings.TrimLeft(s, "<>=≥≤ ")
	for _, r := range s {
		return unicode.IsDigit(r) || r == '.'
	}
	return false
}
