package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"

	"certforge/internal/domain"
)

// MaxPixels bounds the decoded size of a single asset.
const MaxPixels = 40_000_000

var ErrUndecodable = errors.New("assets: undecodable image")

// Decode sizes data and normalises it to JPEG or PNG. JPEG and plain 8-bit
// PNG pass through untouched. GIF, WebP, interlaced and 16-bit PNG are
// re-encoded as 8-bit PNG.
func Decode(key string, data []byte) (domain.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.Image{}, fmt.Errorf("%w: %s: %w", ErrUndecodable, key, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return domain.Image{}, fmt.Errorf("%w: %s: empty image", ErrUndecodable, key)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return domain.Image{}, fmt.Errorf("%w: %s is %dx%d", ErrTooLarge, key, cfg.Width, cfg.Height)
	}

	img := domain.Image{Key: key, Format: format, Data: data, Width: cfg.Width, Height: cfg.Height}
	switch format {
	case "jpeg":
		return img, nil
	case "png":
		if !needsReencode(data) {
			return img, nil
		}
	case "gif", "webp":
	default:
		return domain.Image{}, fmt.Errorf("%w: %s: unsupported format %q", ErrUndecodable, key, format)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Image{}, fmt.Errorf("%w: %s: %w", ErrUndecodable, key, err)
	}
	b := src.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), src, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return domain.Image{}, fmt.Errorf("assets: re-encode %s: %w", key, err)
	}
	img.Format = "png"
	img.Data = buf.Bytes()
	return img, nil
}

// needsReencode inspects the PNG header for 16-bit depth or interlacing.
func needsReencode(data []byte) bool {
	// 8-byte signature, then IHDR: length(4) type(4) width(4) height(4) depth(1) color(1) compression(1) filter(1) interlace(1)
	if len(data) < 29 {
		return true
	}
	return data[24] == 16 || data[28] != 0
}
