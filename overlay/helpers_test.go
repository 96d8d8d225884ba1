package overlay

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

var testPage = Page{Index: 0, Width: 600, Height: 800}

// attached returns a controller with a live surface.
func attached(t *testing.T) *Controller {
	t.Helper()
	c := NewController(testPage, nil)
	c.Attach()
	return c
}

func testDoc(t *testing.T, n int) *Document {
	t.Helper()
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Width: 600, Height: 800}
	}
	doc, err := NewDocument([]byte("%PDF-test"), pages)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func rgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// fakeRasterizer paints pages a flat color. Pages default to testPage.
type fakeRasterizer struct {
	calls int
	err   error
	fill  color.Color
}

func (f *fakeRasterizer) RenderPage(ctx context.Context, doc []byte, page int, scale float64) (image.Image, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fill := f.fill
	if fill == nil {
		fill = color.White
	}
	w := int(testPage.Width * scale)
	h := int(testPage.Height * scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	return img, nil
}

// fakeEncoder records what the flattener hands it.
type fakeEncoder struct {
	preserve bool
	layers   []image.Image
	fail     error
}

func (e *fakeEncoder) PreservesContent() bool { return e.preserve }

func (e *fakeEncoder) ComposePage(p Page, layer image.Image) (PagePart, error) {
	e.layers = append(e.layers, layer)
	part := PagePart{Page: p}
	if layer != nil {
		part.Layer = []byte{1}
	}
	return part, nil
}

func (e *fakeEncoder) Assemble(parts []PagePart) ([]byte, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	var out []byte
	for _, p := range parts {
		out = append(out, byte('0'+p.Page.Index))
	}
	return out, nil
}

var errBoom = errors.New("boom")
