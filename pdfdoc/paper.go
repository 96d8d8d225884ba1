package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// PaperRasterizer renders every page as blank paper of the right size.
// The host falls back to it when PDFium cannot start. Annotations still
// line up with the page geometry, only the original content is missing,
// so nothing that writes files may use it as a page source.
type PaperRasterizer struct {
	Background color.Color // white when nil
	Border     bool        // draw a hairline around the page
}

func (r PaperRasterizer) RenderPage(ctx context.Context, doc []byte, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := Load(doc)
	if err != nil {
		return nil, err
	}
	p, ok := d.Page(page)
	if !ok {
		return nil, fmt.Errorf("page %d out of range 1-%d", page+1, d.NumPages())
	}
	w := int(math.Ceil(p.Width * scale))
	h := int(math.Ceil(p.Height * scale))
	dc := gg.NewContext(w, h)
	bg := r.Background
	if bg == nil {
		bg = color.White
	}
	dc.SetColor(bg)
	dc.Clear()
	if r.Border {
		dc.SetRGB(0.6, 0.6, 0.6)
		dc.SetLineWidth(1)
		dc.DrawRectangle(0.5, 0.5, float64(w)-1, float64(h)-1)
		dc.Stroke()
	}
	return dc.Image(), nil
}
