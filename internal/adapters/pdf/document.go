// Package pdf implements layout.Document on go-pdf/fpdf.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"certforge/internal/domain"
	"certforge/internal/layout"
)

const ptToMM = 25.4 / 72

// Core fonts are cp1252. Symbols outside it are spelled out before translation.
var symbols = strings.NewReplacer(
	"Ω", "ohm",
	"✓", "OK",
	"✗", "X",
	"≥", ">=",
	"≤", "<=",
	"→", "->",
)

type Document struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	font layout.Font
}

var _ layout.Document = (*Document)(nil)

func New(format domain.PageFormat) *Document {
	size := "A4"
	if format == domain.FormatLetter {
		size = "Letter"
	}
	p := fpdf.New("P", "mm", size, "")
	p.SetAutoPageBreak(false, 0)
	p.SetMargins(layout.Margin, layout.Margin, layout.Margin)
	p.SetCreator("certforge", false)
	d := &Document{pdf: p, tr: p.UnicodeTranslatorFromDescriptor("")}
	d.SetFont(layout.Font{Family: layout.FontFamily, Size: 9})
	return d
}

func (d *Document) text(s string) string { return d.tr(symbols.Replace(s)) }

func (d *Document) AddPage()       { d.pdf.AddPage() }
func (d *Document) SetPage(n int)  { d.pdf.SetPage(n) }
func (d *Document) PageCount() int { return d.pdf.PageCount() }
func (d *Document) PageSize() (float64, float64) {
	w, h := d.pdf.GetPageSize()
	return w, h
}

func (d *Document) SetFont(f layout.Font) {
	d.font = f
	d.pdf.SetFont(f.Family, f.Style(), f.Size)
}

func (d *Document) SetTextColor(c layout.Color) { d.pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }
func (d *Document) SetFillColor(c layout.Color) { d.pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
func (d *Document) SetDrawColor(c layout.Color) { d.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }

// Text converts the top-of-line y to fpdf's baseline.
func (d *Document) Text(x, y float64, s string) {
	d.pdf.Text(x, y+d.font.Size*ptToMM, d.text(s))
}

func (d *Document) Cell(x, y, w, h float64, s string, style layout.CellStyle) {
	border := ""
	if style.Border {
		border = "1"
	}
	align := string(style.Align)
	if align == "" {
		align = "L"
	}
	d.pdf.SetXY(x, y)
	d.pdf.CellFormat(w, h, d.text(s), border, 0, align+"M", style.Fill, 0, "")
}

func (d *Document) Rect(x, y, w, h float64, fill bool) {
	style := "D"
	if fill {
		style = "FD"
	}
	d.pdf.Rect(x, y, w, h, style)
}

func (d *Document) Line(x1, y1, x2, y2 float64) { d.pdf.Line(x1, y1, x2, y2) }

func (d *Document) StringWidth(s string) float64 { return d.pdf.GetStringWidth(d.text(s)) }

// SplitText wraps on the untranslated text so callers get UTF-8 lines back.
func (d *Document) SplitText(s string, w float64) []string {
	return layout.Wrap(s, w, d.StringWidth)
}

// Image registers img under its key once and places it. A registration
// failure is returned and cleared so the document stays usable.
func (d *Document) Image(img domain.Image, x, y, w, h float64) error {
	opts := fpdf.ImageOptions{ImageType: imageType(img.Format)}
	if d.pdf.GetImageInfo(img.Key) == nil {
		d.pdf.RegisterImageOptionsReader(img.Key, opts, bytes.NewReader(img.Data))
		if d.pdf.Err() {
			err := d.pdf.Error()
			d.pdf.ClearError()
			return fmt.Errorf("pdf: register image %s: %w", img.Key, err)
		}
	}
	d.pdf.ImageOptions(img.Key, x, y, w, h, false, opts, 0, "")
	return nil
}

func imageType(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

// Watermark draws text large, translucent and rotated across the page centre.
func (d *Document) Watermark(text string) {
	w, h := d.pdf.GetPageSize()
	prev := d.font
	d.SetFont(layout.Font{Family: layout.FontFamily, Bold: true, Size: 96})
	d.pdf.SetTextColor(200, 30, 30)
	d.pdf.SetAlpha(0.12, "Normal")
	d.pdf.TransformBegin()
	d.pdf.TransformRotate(45, w/2, h/2)
	d.pdf.Text(w/2-d.StringWidth(text)/2, h/2+12, d.text(text))
	d.pdf.TransformEnd()
	d.pdf.SetAlpha(1, "Normal")
	d.SetFont(prev)
}

func (d *Document) Err() error {
	if d.pdf.Err() {
		return d.pdf.Error()
	}
	return nil
}

func (d *Document) SetMetadata(m domain.Metadata) {
	d.pdf.SetTitle(m.Title, true)
	d.pdf.SetSubject(m.Subject, true)
	d.pdf.SetAuthor(m.Author, true)
	keywords := strings.TrimSpace(strings.Join([]string{
		m.Keywords,
		"certificate:" + m.CertificateID,
		"quality:" + strconv.Itoa(m.QualityScore),
	}, " "))
	d.pdf.SetKeywords(keywords, true)
	if !m.CreatedAt.IsZero() {
		d.pdf.SetCreationDate(m.CreatedAt)
		d.pdf.SetModificationDate(m.CreatedAt)
	}
}

func (d *Document) Output(w io.Writer) error {
	return d.pdf.Output(w)
}
