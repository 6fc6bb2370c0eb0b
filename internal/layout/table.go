package layout

// Column describes one table column. Widths are relative weights scaled to
// the content width.
type Column struct {
	Title  string
	Weight float64
	Align  Align
}

type Table struct {
	Columns  []Column
	Rows     [][]string
	FontSize float64
}

// Table draws a grid that may span pages. The header row is drawn at the
// start and again at the top of every continuation page; each data row is
// drawn exactly once and never split. A row taller than a page is clipped.
func (e *Engine) Table(t Table) error {
	if err := e.writable(); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		return nil
	}
	size := t.FontSize
	if size <= 0 {
		size = 7
	}
	font := Font{Family: FontFamily, Size: size}
	headFont := Font{Family: FontFamily, Bold: true, Size: size}
	lh := font.LineHeight()
	widths := e.columnWidths(t.Columns)

	titles := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		titles[i] = c.Title
	}
	header := e.wrapRow(titles, widths, headFont)
	headH := rowHeight(header, lh)
	maxRow := e.cur.BodyHeight() - headH

	if len(t.Rows) == 0 {
		if _, err := e.Ensure(headH); err != nil {
			return err
		}
		e.drawHeader(header, widths, headH, headFont, t.Columns)
		e.advance(blockGap)
		return nil
	}

	for i, row := range t.Rows {
		cells := e.wrapRow(row, widths, font)
		h := rowHeight(cells, lh)
		if h > maxRow {
			for j := range cells {
				cells[j] = clip(cells[j], lh, maxRow-2*cellPad)
			}
			h = maxRow
		}
		need := h
		if i == 0 {
			need += headH
		}
		broke, err := e.Ensure(need)
		if err != nil {
			return err
		}
		if i == 0 || broke {
			e.drawHeader(header, widths, headH, headFont, t.Columns)
		}
		x := e.cur.Margin
		for j, lines := range cells {
			e.canvas.SetTextColor(Black)
			e.box(x, e.cur.Y, widths[j], h, lines, font, CellStyle{Border: true, Align: t.Columns[j].Align}, White)
			x += widths[j]
		}
		e.advance(h)
	}
	e.advance(blockGap)
	return nil
}

func (e *Engine) drawHeader(header [][]string, widths []float64, h float64, f Font, cols []Column) {
	x := e.cur.Margin
	e.canvas.SetTextColor(White)
	for j, lines := range header {
		e.box(x, e.cur.Y, widths[j], h, lines, f, CellStyle{Border: true, Fill: true, Align: cols[j].Align}, e.accent)
		x += widths[j]
	}
	e.canvas.SetTextColor(Black)
	e.advance(h)
}

func (e *Engine) columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, c := range cols {
		total += weight(c)
	}
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = e.cur.ContentWidth() * weight(c) / total
	}
	return out
}

func weight(c Column) float64 {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}

// wrapRow wraps each cell to its column. Missing cells are blank and extra
// cells are ignored.
func (e *Engine) wrapRow(row []string, widths []float64, f Font) [][]string {
	out := make([][]string, len(widths))
	for j, w := range widths {
		s := ""
		if j < len(row) {
			s = row[j]
		}
		out[j] = e.split(s, w-2*cellPad, f)
	}
	return out
}

func rowHeight(cells [][]string, lh float64) float64 {
	n := 1
	for _, lines := range cells {
		n = max(n, len(lines))
	}
	return float64(n)*lh + 2*cellPad
}
