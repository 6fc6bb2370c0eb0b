package layout

const (
	cellPad      = 1.2
	keepWithNext = 14.0
	blockGap     = 2.5
)

// KV is one labelled value of a key-value block.
type KV struct {
	Key   string
	Value string
}

// Heading draws a full-width section bar in the accent colour. It is kept on
// the same page as the start of the content that follows it.
func (e *Engine) Heading(text string) error {
	const h = 8.0
	if _, err := e.Ensure(h + keepWithNext); err != nil {
		return err
	}
	e.canvas.SetFont(Font{Family: FontFamily, Bold: true, Size: 11})
	e.canvas.SetFillColor(e.accent)
	e.canvas.SetTextColor(White)
	e.canvas.Cell(e.cur.Margin, e.cur.Y, e.cur.ContentWidth(), h, " "+text, CellStyle{Fill: true, Align: AlignLeft})
	e.canvas.SetTextColor(Black)
	e.advance(h + blockGap)
	return nil
}

// Subheading draws an underlined title in the accent colour.
func (e *Engine) Subheading(text string) error {
	const h = 6.0
	if _, err := e.Ensure(h + keepWithNext); err != nil {
		return err
	}
	e.canvas.SetFont(Font{Family: FontFamily, Bold: true, Size: 10})
	e.canvas.SetTextColor(e.accent)
	e.canvas.Cell(e.cur.Margin, e.cur.Y, e.cur.ContentWidth(), h, text, CellStyle{Align: AlignLeft})
	e.canvas.SetDrawColor(e.accent)
	e.canvas.Line(e.cur.Margin, e.cur.Y+h, e.cur.PageWidth-e.cur.Margin, e.cur.Y+h)
	e.canvas.SetTextColor(Black)
	e.advance(h + 1.5)
	return nil
}

// Paragraph flows wrapped text, breaking pages between lines.
func (e *Engine) Paragraph(text string) error {
	return e.paragraph(text, e.body)
}

// Note is a smaller, grey paragraph.
func (e *Engine) Note(text string) error {
	e.canvas.SetTextColor(Grey)
	defer e.canvas.SetTextColor(Black)
	return e.paragraph(text, Font{Family: FontFamily, Italic: true, Size: 8})
}

func (e *Engine) paragraph(text string, f Font) error {
	if err := e.writable(); err != nil {
		return err
	}
	lh := f.LineHeight()
	for _, line := range e.split(text, e.cur.ContentWidth(), f) {
		if _, err := e.Ensure(lh); err != nil {
			return err
		}
		e.canvas.SetFont(f)
		e.canvas.Text(e.cur.Margin, e.cur.Y, line)
		e.advance(lh)
	}
	e.advance(blockGap)
	return nil
}

// KeyValues draws a two-column grid of labels and wrapped values. Each pair
// stays on one page.
func (e *Engine) KeyValues(pairs []KV) error {
	if err := e.writable(); err != nil {
		return err
	}
	keyFont := Font{Family: FontFamily, Bold: true, Size: e.body.Size}
	lh := e.body.LineHeight()
	keyW := e.cur.ContentWidth() * 0.36
	valW := e.cur.ContentWidth() - keyW
	for _, kv := range pairs {
		keys := e.split(kv.Key, keyW-2*cellPad, keyFont)
		vals := e.split(kv.Value, valW-2*cellPad, e.body)
		maxH := e.cur.BodyHeight() - 2*cellPad
		keys, vals = clip(keys, lh, maxH), clip(vals, lh, maxH)
		h := float64(max(len(keys), len(vals)))*lh + 2*cellPad
		if _, err := e.Ensure(h); err != nil {
			return err
		}
		x := e.cur.Margin
		e.box(x, e.cur.Y, keyW, h, keys, keyFont, CellStyle{Border: true, Fill: true, Align: AlignLeft}, LightGrey)
		e.box(x+keyW, e.cur.Y, valW, h, vals, e.body, CellStyle{Border: true, Align: AlignLeft}, White)
		e.advance(h)
	}
	e.advance(blockGap)
	return nil
}

// box draws a bordered cell holding pre-wrapped lines.
func (e *Engine) box(x, y, w, h float64, lines []string, f Font, style CellStyle, fill Color) {
	e.canvas.SetDrawColor(Grey)
	if style.Fill {
		e.canvas.SetFillColor(fill)
	}
	if style.Border || style.Fill {
		e.canvas.Rect(x, y, w, h, style.Fill)
	}
	e.canvas.SetFont(f)
	lh := f.LineHeight()
	for i, line := range lines {
		lx := x + cellPad
		switch style.Align {
		case AlignCenter:
			lx = x + (w-e.canvas.StringWidth(line))/2
		case AlignRight:
			lx = x + w - cellPad - e.canvas.StringWidth(line)
		}
		e.canvas.Text(lx, y+cellPad+float64(i)*lh, line)
	}
}
