package overlay

import "math"

const (
	MinZoom  = 0.1
	MaxZoom  = 8.0
	ZoomStep = 0.1
)

// Point is a position. Whether it is in document or screen space depends
// on where it came from; stored geometry is always document space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect is an axis-aligned rectangle with its origin at the top left.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Viewport carries the zoom of one open page. Pan belongs to the host.
type Viewport struct {
	Zoom       float64
	PageWidth  float64
	PageHeight float64
}

func NewViewport(p Page) Viewport {
	return Viewport{Zoom: 1, PageWidth: p.Width, PageHeight: p.Height}
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) || z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// SetZoom clamps z into [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(z float64) {
	v.Zoom = clampZoom(z)
}

func (v *Viewport) ZoomIn() { v.SetZoom(math.Round((v.Zoom+ZoomStep)*100) / 100) }
func (v *Viewport) ZoomOut() { v.SetZoom(math.Round((v.Zoom-ZoomStep)*100) / 100) }

// ScreenSize is the page size at the current zoom.
func (v Viewport) ScreenSize() Size {
	return Size{v.PageWidth * v.Zoom, v.PageHeight * v.Zoom}
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return MinZoom
	}
	return v.Zoom
}

func ToScreen(p Point, v Viewport) Point {
	z := v.zoom()
	return Point{p.X * z, p.Y * z}
}

func ToDoc(p Point, v Viewport) Point {
	z := v.zoom()
	return Point{p.X / z, p.Y / z}
}

func ScreenLength(l float64, v Viewport) float64 { return l * v.zoom() }
func DocLength(l float64, v Viewport) float64 { return l / v.zoom() }
