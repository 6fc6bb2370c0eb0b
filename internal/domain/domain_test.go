package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"certforge/internal/domain"
)

func TestParseSeverity(t *testing.T) {
	cases := map[string]domain.Severity{
		"C1":                    domain.SeverityC1,
		" code 2 ":              domain.SeverityC2,
		"Improvement":           domain.SeverityC3,
		"further investigation": domain.SeverityFI,
	}
	for in, want := range cases {
		got, ok := domain.ParseSeverity(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := domain.ParseSeverity("C9")
	assert.False(t, ok)
}

func TestSeverityDerivations(t *testing.T) {
	assert.True(t, domain.SeverityC1.RequiresRectification())
	assert.True(t, domain.SeverityFI.RequiresRectification())
	assert.False(t, domain.SeverityC3.RequiresRectification())
	assert.Equal(t, "Urgent", domain.SeverityC2.Urgency())
	assert.True(t, domain.SeverityC2.Critical())
	assert.False(t, domain.SeverityFI.Critical())
}

func TestOptionsInputResolve(t *testing.T) {
	off := false
	o := domain.OptionsInput{IncludeFooter: &off, Format: "letter"}.Resolve()
	assert.False(t, o.IncludeFooter)
	assert.True(t, o.IncludeHeader)
	assert.Equal(t, domain.FormatLetter, o.Format)

	assert.Equal(t, domain.DefaultOptions(), domain.OptionsInput{}.Resolve())
}

func TestDocumentIDFallsBackToReference(t *testing.T) {
	c := domain.Certificate{Header: domain.CertificateHeader{CertificateNumber: domain.NotSpecified, Reference: "JOB-7"}}
	assert.Equal(t, "JOB-7", c.DocumentID())
}
