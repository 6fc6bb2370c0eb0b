package pdf_test

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certforge/internal/adapters/pdf"
	"certforge/internal/domain"
	"certforge/internal/layout"
)

func pngImage(t *testing.T, key string) domain.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 60, 40))))
	return domain.Image{Key: key, Format: "png", Data: buf.Bytes(), Width: 60, Height: 40}
}

func TestDocument_RendersThroughEngine(t *testing.T) {
	doc := pdf.New(domain.FormatA4)
	e := layout.New(doc)

	w, h := doc.PageSize()
	assert.InDelta(t, 210, w, 0.01)
	assert.InDelta(t, 297, h, 0.01)

	require.NoError(t, e.Heading("Client & scope"))
	require.NoError(t, e.KeyValues([]layout.KV{{Key: "Zs", Value: "0.42Ω ✓"}, {Key: "Live size", Value: "2.5mm²"}}))
	require.NoError(t, e.ImageBlock(pngImage(t, "photo"), 80, 60))
	require.NoError(t, e.ForceNewPage())
	require.NoError(t, e.Paragraph("Second page"))

	pages, err := e.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	require.NoError(t, e.ApplyFooter(func(p, n int) (string, string) { return "EICR-1", "Page" }))
	require.NoError(t, e.ApplyWatermark("DRAFT"))

	doc.SetMetadata(domain.Metadata{Title: "EICR EICR-1", CertificateID: "EICR-1", QualityScore: 80, CreatedAt: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)})
	var out bytes.Buffer
	require.NoError(t, doc.Output(&out))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
	assert.Contains(t, out.String(), "/Title")
}

func TestDocument_BadImageIsRecoverable(t *testing.T) {
	doc := pdf.New(domain.FormatLetter)
	doc.AddPage()

	err := doc.Image(domain.Image{Key: "bad", Format: "png", Data: []byte("nope"), Width: 10, Height: 10}, 10, 10, 20, 20)
	require.Error(t, err)
	assert.NoError(t, doc.Err())

	require.NoError(t, doc.Image(pngImage(t, "good"), 10, 40, 20, 15))
	// Same key reuses the registered image.
	require.NoError(t, doc.Image(pngImage(t, "good"), 40, 40, 20, 15))

	var out bytes.Buffer
	require.NoError(t, doc.Output(&out))
}

func TestDocument_SplitTextKeepsUTF8(t *testing.T) {
	doc := pdf.New(domain.FormatA4)
	doc.AddPage()
	doc.SetFont(layout.Font{Family: layout.FontFamily, Size: 9})

	lines := doc.SplitText("Insulation resistance ≥ 200 MΩ on all circuits tested", 30)
	require.Greater(t, len(lines), 1)
	joined := ""
	for _, l := range lines {
		joined += l + " "
	}
	assert.Contains(t, joined, "MΩ")
	assert.Positive(t, doc.StringWidth("0.42Ω"))
}
