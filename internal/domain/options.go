package domain

import "strings"

// PageFormat is the paper size of the composed document.
type PageFormat string

const (
	FormatA4     PageFormat = "A4"
	FormatLetter PageFormat = "Letter"
)

// ParsePageFormat accepts case-insensitive spellings and falls back to A4.
func ParsePageFormat(s string) PageFormat {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatLetter)) {
		return FormatLetter
	}
	return FormatA4
}

// Options control which sections the composer renders.
type Options struct {
	IncludeHeader              bool
	IncludeFooter              bool
	IncludeInspectionChecklist bool
	IncludeTestResults         bool
	IncludeDigitalSignatures   bool
	Format                     PageFormat
	// PrefetchPhotos resolves every observation's photos concurrently before layout.
	PrefetchPhotos bool
}

func DefaultOptions() Options {
	return Options{
		IncludeHeader:              true,
		IncludeFooter:              true,
		IncludeInspectionChecklist: true,
		IncludeTestResults:         true,
		IncludeDigitalSignatures:   true,
		Format:                     FormatA4,
	}
}

// OptionsInput is the wire form of Options; absent flags keep their defaults.
type OptionsInput struct {
	IncludeHeader              *bool  `json:"includeHeader,omitempty"`
	IncludeFooter              *bool  `json:"includeFooter,omitempty"`
	IncludeInspectionChecklist *bool  `json:"includeInspectionChecklist,omitempty"`
	IncludeTestResults         *bool  `json:"includeTestResults,omitempty"`
	IncludeDigitalSignatures   *bool  `json:"includeDigitalSignatures,omitempty"`
	Format                     string `json:"format,omitempty"`
	PrefetchPhotos             bool   `json:"prefetchPhotos,omitempty"`
}

func (in OptionsInput) Resolve() Options {
	o := DefaultOptions()
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&o.IncludeHeader, in.IncludeHeader)
	set(&o.IncludeFooter, in.IncludeFooter)
	set(&o.IncludeInspectionChecklist, in.IncludeInspectionChecklist)
	set(&o.IncludeTestResults, in.IncludeTestResults)
	set(&o.IncludeDigitalSignatures, in.IncludeDigitalSignatures)
	o.Format = ParsePageFormat(in.Format)
	o.PrefetchPhotos = in.PrefetchPhotos
	return o
}
