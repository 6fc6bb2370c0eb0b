package layout

import (
	"errors"
)

// Margin applies to all four page edges.
const Margin = 15.0

var (
	ErrFinalized    = errors.New("layout: document already finalized")
	ErrNotFinalized = errors.New("layout: page decorations require a finalized document")
)

type State int

const (
	Ready State = iota
	NeedsPage
	Finalizing
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case NeedsPage:
		return "needs_page"
	case Finalizing:
		return "finalizing"
	}
	return "unknown"
}

// Cursor is the write position. Y never exceeds Bottom().
type Cursor struct {
	Page       int
	Y          float64
	PageWidth  float64
	PageHeight float64
	Margin     float64
}

func (c Cursor) Bottom() float64       { return c.PageHeight - c.Margin }
func (c Cursor) Remaining() float64    { return c.Bottom() - c.Y }
func (c Cursor) ContentWidth() float64 { return c.PageWidth - 2*c.Margin }

// BodyHeight is the usable height of a whole page.
func (c Cursor) BodyHeight() float64 { return c.PageHeight - 2*c.Margin }

// Engine owns one document's cursor. It is not safe for concurrent use.
type Engine struct {
	canvas Canvas
	cur    Cursor
	state  State
	accent Color
	body   Font
}

// New starts writing at the top of the canvas' current page, adding the
// first page if the canvas is empty.
func New(c Canvas) *Engine {
	if c.PageCount() == 0 {
		c.AddPage()
	}
	w, h := c.PageSize()
	return &Engine{
		canvas: c,
		cur:    Cursor{Page: c.PageCount(), Y: Margin, PageWidth: w, PageHeight: h, Margin: Margin},
		state:  Ready,
		accent: DefaultBrand,
		body:   Font{Family: FontFamily, Size: 9},
	}
}

func (e *Engine) Cursor() Cursor { return e.cur }
func (e *Engine) State() State   { return e.state }

// SetAccent sets the colour of heading bars and table headers.
func (e *Engine) SetAccent(c Color) { e.accent = c }

// Ensure guarantees h millimetres of room below the cursor, breaking the page
// first when needed. A block taller than a page is not broken at the top of
// a page; the caller clips it. It reports whether a break happened.
func (e *Engine) Ensure(h float64) (bool, error) {
	if e.state == Finalizing {
		return false, ErrFinalized
	}
	if h <= e.cur.Remaining() || e.atTop() {
		return false, nil
	}
	e.state = NeedsPage
	e.newPage()
	e.state = Ready
	return true, nil
}

// ForceNewPage starts a new page unless the cursor is already at the top of
// an empty one.
func (e *Engine) ForceNewPage() error {
	if e.state == Finalizing {
		return ErrFinalized
	}
	if e.atTop() {
		return nil
	}
	e.newPage()
	return nil
}

// Spacer advances the cursor without drawing. It never breaks a page.
func (e *Engine) Spacer(h float64) error {
	if e.state == Finalizing {
		return ErrFinalized
	}
	e.advance(h)
	return nil
}

// Finalize stops accepting blocks and returns the page count.
func (e *Engine) Finalize() (int, error) {
	e.state = Finalizing
	return e.canvas.PageCount(), e.canvas.Err()
}

// ApplyFooter draws a footer in the bottom margin of every page. label
// returns the left and right footer texts for page n of total.
func (e *Engine) ApplyFooter(label func(page, total int) (left, right string)) error {
	if e.state != Finalizing {
		return ErrNotFinalized
	}
	total := e.canvas.PageCount()
	font := Font{Family: FontFamily, Size: 7}
	y := e.cur.Bottom() + 4
	for p := 1; p <= total; p++ {
		e.canvas.SetPage(p)
		e.canvas.SetDrawColor(LightGrey)
		e.canvas.Line(e.cur.Margin, y-1.5, e.cur.PageWidth-e.cur.Margin, y-1.5)
		e.canvas.SetFont(font)
		e.canvas.SetTextColor(Grey)
		left, right := label(p, total)
		e.canvas.Text(e.cur.Margin, y, left)
		e.canvas.Text(e.cur.PageWidth-e.cur.Margin-e.canvas.StringWidth(right), y, right)
	}
	e.canvas.SetPage(total)
	return e.canvas.Err()
}

// ApplyWatermark overlays text diagonally on every page.
func (e *Engine) ApplyWatermark(text string) error {
	if e.state != Finalizing {
		return ErrNotFinalized
	}
	total := e.canvas.PageCount()
	for p := 1; p <= total; p++ {
		e.canvas.SetPage(p)
		e.canvas.Watermark(text)
	}
	e.canvas.SetPage(total)
	return e.canvas.Err()
}

func (e *Engine) atTop() bool { return e.cur.Y <= e.cur.Margin }

func (e *Engine) newPage() {
	e.canvas.AddPage()
	e.cur.Page = e.canvas.PageCount()
	e.cur.Y = e.cur.Margin
}

func (e *Engine) advance(h float64) {
	e.cur.Y = min(e.cur.Y+h, e.cur.Bottom())
}

func (e *Engine) writable() error {
	if e.state == Finalizing {
		return ErrFinalized
	}
	return nil
}

// split wraps s to width w in font f, always yielding at least one line.
func (e *Engine) split(s string, w float64, f Font) []string {
	e.canvas.SetFont(f)
	lines := e.canvas.SplitText(s, w)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// clip keeps as many lines as fit in maxH.
func clip(lines []string, lh, maxH float64) []string {
	n := int(maxH / lh)
	if n < 1 {
		n = 1
	}
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
