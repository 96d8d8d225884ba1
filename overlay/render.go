package overlay

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	textFontOnce sync.Once
	textFont     *truetype.Font
	textFontErr  error
)

func parsedFont() (*truetype.Font, error) {
	textFontOnce.Do(func() {
		textFont, textFontErr = truetype.Parse(goregular.TTF)
	})
	if textFontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %v", textFontErr)
	}
	return textFont, nil
}

// faceCache holds the faces of a single render. A truetype face keeps
// hinting state while drawing, so faces are never shared between renders.
type faceCache map[float64]font.Face

// face returns a Go Regular face of the given pixel size.
func (fc faceCache) face(size float64) (font.Face, error) {
	size = math.Round(size*4) / 4
	if f, ok := fc[size]; ok {
		return f, nil
	}
	ft, err := parsedFont()
	if err != nil {
		return nil, err
	}
	f := truetype.NewFace(ft, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	fc[size] = f
	return f, nil
}

// RenderScene rasterizes objs on a transparent canvas covering the page
// at scale pixels per document unit. Objects are painted in order, so
// later ones cover earlier ones exactly as on the live canvas.
func RenderScene(objs []Object, page Page, scale float64, assets *AssetStore) (*image.RGBA, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("render scale %g", scale)
	}
	w := int(math.Ceil(page.Width * scale))
	h := int(math.Ceil(page.Height * scale))
	dc := gg.NewContext(w, h)

	faces := faceCache{}
	for _, o := range objs {
		if err := drawObject(dc, o, scale, assets, faces); err != nil {
			return nil, err
		}
	}
	return dc.Image().(*image.RGBA), nil
}

func drawObject(dc *gg.Context, o Object, scale float64, assets *AssetStore, faces faceCache) error {
	switch o.Kind {
	case KindText:
		return drawText(dc, o.Text, scale, faces)
	case KindStroke:
		drawStroke(dc, o.Stroke, scale)
	case KindShape:
		drawShape(dc, o.Shape, scale)
	case KindImage:
		img, ok := assets.Get(o.Image.Asset)
		if !ok {
			return fmt.Errorf("object %d: asset %.12s not loaded", o.ID, o.Image.Asset)
		}
		dc.Push()
		dc.Translate(o.Image.Position.X*scale, o.Image.Position.Y*scale)
		dc.Scale(o.Image.Scale*scale, o.Image.Scale*scale)
		dc.DrawImage(img, 0, 0)
		dc.Pop()
	default:
		return fmt.Errorf("object %d: unknown kind %d", o.ID, int(o.Kind))
	}
	return nil
}

func drawText(dc *gg.Context, t *Text, scale float64, faces faceCache) error {
	face, err := faces.face(t.FontSize * scale)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetColor(t.Color.NRGBA())
	dc.DrawStringWrapped(t.Content, t.Position.X*scale, t.Position.Y*scale, 0, 0, t.Width*scale, textLineHeight, gg.AlignLeft)
	return nil
}

func drawStroke(dc *gg.Context, s *Stroke, scale float64) {
	dc.SetColor(s.Color.NRGBA())
	w := s.Width * scale
	if len(s.Points) == 1 {
		p := s.Points[0]
		dc.DrawCircle(p.X*scale, p.Y*scale, w/2)
		dc.Fill()
		return
	}
	dc.SetLineWidth(w)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	dc.MoveTo(s.Points[0].X*scale, s.Points[0].Y*scale)
	for _, p := range s.Points[1:] {
		dc.LineTo(p.X*scale, p.Y*scale)
	}
	dc.Stroke()
}

func drawShape(dc *gg.Context, s *Shape, scale float64) {
	dc.SetColor(s.Fill.NRGBA())
	dc.DrawRectangle(s.Position.X*scale, s.Position.Y*scale, s.Size.W*scale, s.Size.H*scale)
	if s.Style == ShapeRedaction {
		dc.Fill()
		return
	}
	dc.SetLineWidth(math.Max(1, scale))
	dc.Stroke()
}

// Composite paints layer over base. A layer of a different size is
// scaled to cover base exactly.
func Composite(base, layer image.Image) *image.RGBA {
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), base, b.Min, xdraw.Src)
	if layer == nil {
		return out
	}
	if layer.Bounds().Size() == b.Size() {
		xdraw.Draw(out, out.Bounds(), layer, layer.Bounds().Min, xdraw.Over)
	} else {
		xdraw.CatmullRom.Scale(out, out.Bounds(), layer, layer.Bounds(), xdraw.Over, nil)
	}
	return out
}
