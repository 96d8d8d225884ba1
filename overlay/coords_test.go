package overlay

import (
	"math"
	"testing"
)

func TestCoordinateRoundTrip(t *testing.T) {
	points := []Point{{0, 0}, {100, 100}, {612, 792}, {0.333, 17.25}, {-4, 1e4}}
	for _, z := range []float64{0.1, 0.3, 0.75, 1, 1.7, 2, 8} {
		v := Viewport{Zoom: z, PageWidth: 612, PageHeight: 792}
		for _, p := range points {
			got := ToDoc(ToScreen(p, v), v)
			if math.Abs(got.X-p.X) > 1e-6 || math.Abs(got.Y-p.Y) > 1e-6 {
				t.Errorf("zoom %g: round trip of %v = %v", z, p, got)
			}
		}
		if l := DocLength(ScreenLength(20, v), v); math.Abs(l-20) > 1e-6 {
			t.Errorf("zoom %g: length round trip = %g", z, l)
		}
	}
}

func TestToScreenScalesUniformly(t *testing.T) {
	v := Viewport{Zoom: 2}
	if got := ToScreen(Point{100, 50}, v); got != (Point{200, 100}) {
		t.Errorf("ToScreen = %v", got)
	}
	if got := ScreenLength(16, v); got != 32 {
		t.Errorf("ScreenLength = %g", got)
	}
}

func TestZoomClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below floor", 0.01, MinZoom},
		{"zero", 0, MinZoom},
		{"negative", -3, MinZoom},
		{"nan", math.NaN(), MinZoom},
		{"above ceiling", 100, MaxZoom},
		{"in range", 1.5, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewport(testPage)
			v.SetZoom(tt.in)
			if v.Zoom != tt.want {
				t.Errorf("SetZoom(%g) = %g, want %g", tt.in, v.Zoom, tt.want)
			}
		})
	}
}

func TestZoomSteps(t *testing.T) {
	v := NewViewport(testPage)
	v.ZoomIn()
	if v.Zoom != 1.1 {
		t.Errorf("ZoomIn from 1 = %g", v.Zoom)
	}
	for i := 0; i < 50; i++ {
		v.ZoomOut()
	}
	if v.Zoom != MinZoom {
		t.Errorf("zoom after many ZoomOut = %g, want %g", v.Zoom, MinZoom)
	}
	if s := v.ScreenSize(); math.Abs(s.W-60) > 1e-9 || math.Abs(s.H-80) > 1e-9 {
		t.Errorf("ScreenSize = %v", s)
	}
}
