package compose

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"certforge/internal/domain"
)

const maxClientLen = 40

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// FileName derives the artifact filename as <tag>_<id>_<client>_<date>.pdf.
// It depends only on its arguments. Diacritics are folded to ASCII and
// other unsafe characters collapse to underscores; placeholders and
// unparseable dates get fixed substitutes.
func FileName(tag, certificateID, client, inspectionDate string) string {
	id := slug(certificateID, 0)
	if domain.IsPlaceholder(certificateID) || id == "" {
		id = "UNNUMBERED"
	}
	name := slug(client, maxClientLen)
	if domain.IsPlaceholder(client) || name == "" {
		name = "Client"
	}
	date := "undated"
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(inspectionDate)); err == nil {
		date = t.Format("2006-01-02")
	}
	prefix := slug(tag, 0)
	if prefix == "" {
		prefix = domain.CertificateTypeTag
	}
	return prefix + "_" + id + "_" + name + "_" + date + ".pdf"
}

func slug(s string, limit int) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	out := strings.Trim(unsafeRun.ReplaceAllString(folded, "_"), "_-")
	if limit > 0 && len(out) > limit {
		out = strings.TrimRight(out[:limit], "_-")
	}
	return out
}
