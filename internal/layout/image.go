package layout

import (
	"errors"
	"fmt"
	"math"

	"certforge/internal/domain"
)

// ErrImageSize is returned for images without usable dimensions.
var ErrImageSize = errors.New("layout: image has no usable dimensions")

const pxToMM = 25.4 / 96

// Fit scales w×h to fit within maxW×maxH, preserving aspect ratio. Images
// that already fit keep their size. Degenerate input yields 0×0.
func Fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	s := math.Min(1, math.Min(maxW/w, maxH/h))
	return w * s, h * s
}

// NaturalSize is the image's size in millimetres at 96 dpi.
func NaturalSize(img domain.Image) (float64, float64) {
	return float64(img.Width) * pxToMM, float64(img.Height) * pxToMM
}

// ImageBlock places one image at the left margin, fitted within maxW×maxH.
// On failure nothing is placed and the cursor does not move.
func (e *Engine) ImageBlock(img domain.Image, maxW, maxH float64) error {
	if err := e.writable(); err != nil {
		return err
	}
	nw, nh := NaturalSize(img)
	w, h := Fit(nw, nh, min(maxW, e.cur.ContentWidth()), min(maxH, e.cur.BodyHeight()))
	if w == 0 {
		return fmt.Errorf("%w: %s", ErrImageSize, img.Key)
	}
	if _, err := e.Ensure(h); err != nil {
		return err
	}
	if err := e.canvas.Image(img, e.cur.Margin, e.cur.Y, w, h); err != nil {
		return fmt.Errorf("layout: place image %s: %w", img.Key, err)
	}
	e.advance(h + blockGap)
	return nil
}

// ImageGrid lays photos out two per row, each fitted within half the content
// width and maxH. Images that cannot be placed leave their slot empty and are
// reported in the joined error; the rest of the grid is still drawn.
func (e *Engine) ImageGrid(imgs []domain.Image, maxH float64) error {
	if err := e.writable(); err != nil {
		return err
	}
	const gap = 4.0
	colW := (e.cur.ContentWidth() - gap) / 2
	maxH = min(maxH, e.cur.BodyHeight())

	var errs []error
	for i := 0; i < len(imgs); i += 2 {
		row := imgs[i:min(i+2, len(imgs))]
		sizes := make([][2]float64, len(row))
		rowH := 0.0
		for j, img := range row {
			nw, nh := NaturalSize(img)
			w, h := Fit(nw, nh, colW, maxH)
			if w == 0 {
				errs = append(errs, fmt.Errorf("%w: %s", ErrImageSize, img.Key))
			}
			sizes[j] = [2]float64{w, h}
			rowH = max(rowH, h)
		}
		if rowH == 0 {
			continue
		}
		if _, err := e.Ensure(rowH); err != nil {
			return err
		}
		for j, img := range row {
			if sizes[j][0] == 0 {
				continue
			}
			x := e.cur.Margin + float64(j)*(colW+gap)
			if err := e.canvas.Image(img, x, e.cur.Y, sizes[j][0], sizes[j][1]); err != nil {
				errs = append(errs, fmt.Errorf("layout: place image %s: %w", img.Key, err))
			}
		}
		e.advance(rowH + gap)
	}
	return errors.Join(errs...)
}

// Signature is one signatory box. Image is nil when no signature was resolved.
type Signature struct {
	Role  string
	Name  string
	Date  string
	Image *domain.Image
}

// SignatureBlock draws signatory boxes side by side, two per row. A box whose
// image cannot be placed is still drawn with a blank signature line.
func (e *Engine) SignatureBlock(sigs []Signature) error {
	if err := e.writable(); err != nil {
		return err
	}
	const (
		gap    = 4.0
		imageH = 18.0
	)
	lh := e.body.LineHeight()
	colW := (e.cur.ContentWidth() - gap) / 2
	boxH := 3*lh + imageH + 3*cellPad + 2

	var errs []error
	for i := 0; i < len(sigs); i += 2 {
		if _, err := e.Ensure(boxH); err != nil {
			return err
		}
		for j, s := range sigs[i:min(i+2, len(sigs))] {
			x := e.cur.Margin + float64(j)*(colW+gap)
			y := e.cur.Y
			e.canvas.SetDrawColor(Grey)
			e.canvas.Rect(x, y, colW, boxH, false)
			e.canvas.SetFont(Font{Family: FontFamily, Bold: true, Size: e.body.Size})
			e.canvas.SetTextColor(Black)
			e.canvas.Text(x+cellPad, y+cellPad, s.Role)
			imgY := y + cellPad + lh
			if s.Image != nil {
				nw, nh := NaturalSize(*s.Image)
				w, h := Fit(nw, nh, colW-2*cellPad, imageH)
				if w == 0 {
					errs = append(errs, fmt.Errorf("%w: %s", ErrImageSize, s.Image.Key))
				} else if err := e.canvas.Image(*s.Image, x+cellPad, imgY, w, h); err != nil {
					errs = append(errs, fmt.Errorf("layout: place signature %s: %w", s.Image.Key, err))
				}
			}
			lineY := imgY + imageH + 1
			e.canvas.Line(x+cellPad, lineY, x+colW-cellPad, lineY)
			e.canvas.SetFont(e.body)
			e.canvas.Text(x+cellPad, lineY+cellPad, "Name: "+s.Name)
			e.canvas.Text(x+cellPad, lineY+cellPad+lh, "Date: "+s.Date)
		}
		e.advance(boxH + gap)
	}
	return errors.Join(errs...)
}
