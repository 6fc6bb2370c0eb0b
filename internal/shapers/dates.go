package shapers

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 January 2006",
	"January 2, 2006",
}

// normalizeDate renders recognised dates as YYYY-MM-DD. Unrecognised
// non-empty input is kept verbatim; empty input becomes def.
func normalizeDate(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return s
}
