// Package layouttest provides an in-memory layout.Document that records
// every drawing call. It backs layout tests and dry-run composition.
package layouttest

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"certforge/internal/domain"
	"certforge/internal/layout"
)

// Op is one recorded drawing call.
type Op struct {
	Page int
	Kind string // text, cell, rect, line, image, watermark
	X, Y float64
	W, H float64
	Text string
}

// Recorder measures text with a fixed advance of half the font size per rune.
type Recorder struct {
	Ops      []Op
	Metadata domain.Metadata

	// ImageErr, when set, decides the result of every Image call.
	ImageErr func(img domain.Image) error
	// Fail is returned by Err.
	Fail error

	width, height float64
	pages         int
	current       int
	font          layout.Font
}

var _ layout.Document = (*Recorder)(nil)

func New(format domain.PageFormat) *Recorder {
	w, h := layout.PageDimensions(format)
	return &Recorder{width: w, height: h, font: layout.Font{Family: layout.FontFamily, Size: 9}}
}

func (r *Recorder) AddPage() {
	r.pages++
	r.current = r.pages
}

func (r *Recorder) SetPage(n int) {
	if n >= 1 && n <= r.pages {
		r.current = n
	}
}

func (r *Recorder) PageCount() int               { return r.pages }
func (r *Recorder) PageSize() (float64, float64) { return r.width, r.height }
func (r *Recorder) SetFont(f layout.Font)        { r.font = f }
func (r *Recorder) SetTextColor(layout.Color)    {}
func (r *Recorder) SetFillColor(layout.Color)    {}
func (r *Recorder) SetDrawColor(layout.Color)    {}

func (r *Recorder) Text(x, y float64, s string) {
	r.record(Op{Kind: "text", X: x, Y: y, H: r.font.LineHeight(), Text: s})
}

func (r *Recorder) Cell(x, y, w, h float64, s string, _ layout.CellStyle) {
	r.record(Op{Kind: "cell", X: x, Y: y, W: w, H: h, Text: s})
}

func (r *Recorder) Rect(x, y, w, h float64, _ bool) {
	r.record(Op{Kind: "rect", X: x, Y: y, W: w, H: h})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.record(Op{Kind: "line", X: x1, Y: y1, W: x2 - x1, H: y2 - y1})
}

func (r *Recorder) StringWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * r.font.Size * 25.4 / 72 * 0.5
}

func (r *Recorder) SplitText(s string, w float64) []string {
	return layout.Wrap(s, w, r.StringWidth)
}

func (r *Recorder) Image(img domain.Image, x, y, w, h float64) error {
	if r.ImageErr != nil {
		if err := r.ImageErr(img); err != nil {
			return err
		}
	}
	r.record(Op{Kind: "image", X: x, Y: y, W: w, H: h, Text: img.Key})
	return nil
}

func (r *Recorder) Watermark(text string) {
	r.record(Op{Kind: "watermark", Text: text})
}

func (r *Recorder) Err() error { return r.Fail }

func (r *Recorder) SetMetadata(m domain.Metadata) { r.Metadata = m }

// Output writes a plain-text transcript, one op per line.
func (r *Recorder) Output(w io.Writer) error {
	if r.Fail != nil {
		return r.Fail
	}
	for _, op := range r.Ops {
		if _, err := fmt.Fprintf(w, "p%d %-9s %6.1f %6.1f %q\n", op.Page, op.Kind, op.X, op.Y, op.Text); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) record(op Op) {
	op.Page = r.current
	r.Ops = append(r.Ops, op)
}

// Texts returns the text of every text and cell op on page, in draw order.
func (r *Recorder) Texts(page int) []string {
	var out []string
	for _, op := range r.Ops {
		if op.Page == page && (op.Kind == "text" || op.Kind == "cell") {
			out = append(out, op.Text)
		}
	}
	return out
}

// Find returns the ops of kind whose text contains sub.
func (r *Recorder) Find(kind, sub string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind && strings.Contains(op.Text, sub) {
			out = append(out, op)
		}
	}
	return out
}

// Count is the number of ops of kind.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
