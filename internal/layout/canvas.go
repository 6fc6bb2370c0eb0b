// Package layout is a cursor-based paginated writer. It places blocks on a
// Canvas top to bottom, breaking pages when a block would cross the bottom
// margin.
//
// All coordinates are millimetres from the top-left corner of the page, and
// every y passed to a Canvas is the top edge of what is drawn.
package layout

import (
	"io"
	"strconv"
	"strings"

	"certforge/internal/domain"
)

// Canvas is the drawing capability the engine writes through. Pages are
// numbered from 1.
type Canvas interface {
	AddPage()
	SetPage(n int)
	PageCount() int
	PageSize() (w, h float64)

	SetFont(f Font)
	SetTextColor(c Color)
	SetFillColor(c Color)
	SetDrawColor(c Color)

	Text(x, y float64, s string)
	Cell(x, y, w, h float64, s string, style CellStyle)
	Rect(x, y, w, h float64, fill bool)
	Line(x1, y1, x2, y2 float64)
	StringWidth(s string) float64
	SplitText(s string, w float64) []string
	Image(img domain.Image, x, y, w, h float64) error
	Watermark(text string)

	// Err returns the first drawing failure, if any.
	Err() error
}

// Document is a Canvas that can be serialised.
type Document interface {
	Canvas
	SetMetadata(m domain.Metadata)
	Output(w io.Writer) error
}

type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

type CellStyle struct {
	Border bool
	Fill   bool
	Align  Align
}

const (
	FontFamily = "Helvetica"
	ptToMM     = 25.4 / 72
)

type Font struct {
	Family string
	Bold   bool
	Italic bool
	Size   float64 // points
}

// LineHeight is the vertical advance of one line set in f, in millimetres.
func (f Font) LineHeight() float64 { return f.Size * ptToMM * 1.3 }

// Style renders the bold/italic flags the way PDF libraries spell them.
func (f Font) Style() string {
	s := ""
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	return s
}

type Color struct{ R, G, B uint8 }

var (
	Black        = Color{}
	White        = Color{255, 255, 255}
	Grey         = Color{110, 110, 110}
	LightGrey    = Color{236, 238, 241}
	DefaultBrand = Color{0x1F, 0x3A, 0x5F}
)

// ParseHex parses "#RRGGBB" or "RRGGBB".
func ParseHex(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

// PageDimensions returns the page size in millimetres.
func PageDimensions(f domain.PageFormat) (w, h float64) {
	if f == domain.FormatLetter {
		return 215.9, 279.4
	}
	return 210, 297
}

// Wrap greedily breaks s into lines no wider than maxW as measured by width.
// Explicit newlines are kept and words longer than a line are split.
func Wrap(s string, maxW float64, width func(string) float64) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if width(candidate) <= maxW {
				line = candidate
				continue
			}
			if line != "" {
				out = append(out, line)
				line = ""
			}
			for width(word) > maxW {
				n := fitRunes(word, maxW, width)
				out = append(out, word[:n])
				word = word[n:]
			}
			line = word
		}
		out = append(out, line)
	}
	return out
}

// fitRunes returns the byte length of the longest rune prefix of s that fits,
// never less than one rune.
func fitRunes(s string, maxW float64, width func(string) float64) int {
	end := 0
	for i := range s {
		if i > 0 && width(s[:i]) > maxW {
			break
		}
		end = i
	}
	if end == 0 {
		for i := range s {
			if i > 0 {
				return i
			}
		}
		return len(s)
	}
	return end
}
