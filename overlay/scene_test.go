package overlay

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func redaction(x, y float64, c Color) Object {
	return NewShape(Shape{Position: Point{x, y}, Size: Size{100, 50}, Fill: c, Style: ShapeRedaction})
}

func TestSceneAddRemove(t *testing.T) {
	s := NewScene()
	a, err := s.Add(redaction(0, 0, Black))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.Add(redaction(10, 10, Gray))
	if a != 1 || b != 2 {
		t.Fatalf("ids = %d, %d", a, b)
	}
	if err := s.SetActive(b); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(b); err != nil {
		t.Fatal(err)
	}
	if s.Active() != 0 {
		t.Error("removing the active object kept it active")
	}
	c, _ := s.Add(redaction(20, 20, White))
	if c != 3 {
		t.Errorf("id after remove = %d, want 3 (ids are never reused)", c)
	}
	err = s.Remove(42)
	if !errors.Is(err, ErrUnknownObject) {
		t.Errorf("Remove(42) = %v", err)
	}
}

func TestSceneAddValidates(t *testing.T) {
	s := NewScene()
	bad := []Object{
		{Kind: KindText},
		{Kind: KindStroke, Shape: &Shape{}},
		NewStroke(Stroke{Color: Black, Width: 2}),
		NewShape(Shape{Size: Size{-1, 10}, Style: ShapeRect}),
		NewText(Text{Width: 200, FontSize: 16, Content: "\xff"}),
	}
	for i, o := range bad {
		if _, err := s.Add(o); err == nil {
			t.Errorf("%d: Add accepted invalid object", i)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after rejected adds", s.Len())
	}
}

func TestSceneUpdateIsAtomic(t *testing.T) {
	s := NewScene()
	id, _ := s.Add(NewText(Text{Position: Point{1, 2}, Width: 200, FontSize: 16, Color: Black, Content: "hi"}))
	before := s.Objects()

	size := Size{10, 10}
	var ie *InputError
	if err := s.Update(id, Patch{Size: &size}); !errors.As(err, &ie) {
		t.Errorf("patching a missing field: got %v, want InputError", err)
	}
	neg := -1.0
	content := "changed"
	if err := s.Update(id, Patch{Content: &content, FontSize: &neg}); err == nil {
		t.Error("negative font size accepted")
	}
	if d := cmp.Diff(before, s.Objects()); d != "" {
		t.Errorf("failed update changed the scene (-before +after):\n%s", d)
	}

	if err := s.Update(id, Patch{Content: &content}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(id)
	if got.Text.Content != "changed" {
		t.Errorf("content = %q", got.Text.Content)
	}
}

func TestSceneObjectsAreCopies(t *testing.T) {
	s := NewScene()
	id, _ := s.Add(NewStroke(Stroke{Points: []Point{{1, 1}, {2, 2}}, Color: Black, Width: 2}))
	objs := s.Objects()
	objs[0].Stroke.Points[0] = Point{99, 99}
	got, _ := s.Get(id)
	if got.Stroke.Points[0] != (Point{1, 1}) {
		t.Error("mutating a returned object changed the scene")
	}
}

func TestSceneTranslate(t *testing.T) {
	s := NewScene()
	id, _ := s.Add(NewStroke(Stroke{Points: []Point{{1, 1}, {2, 2}}, Color: Black, Width: 2}))
	if err := s.Translate(id, Point{10, 5}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(id)
	want := []Point{{11, 6}, {12, 7}}
	if d := cmp.Diff(want, got.Stroke.Points); d != "" {
		t.Errorf("points (-want +got):\n%s", d)
	}
}

func TestSceneHitTestTopmost(t *testing.T) {
	s := NewScene()
	low, _ := s.Add(redaction(0, 0, Black))
	high, _ := s.Add(redaction(50, 25, Gray))
	if got := s.HitTest(Point{60, 30}); got != high {
		t.Errorf("overlap hit = %d, want %d", got, high)
	}
	if got := s.HitTest(Point{10, 10}); got != low {
		t.Errorf("hit = %d, want %d", got, low)
	}
	if got := s.HitTest(Point{500, 500}); got != 0 {
		t.Errorf("miss = %d", got)
	}
}

func TestSnapshotEmptyScene(t *testing.T) {
	if got := NewScene().Snapshot().String(); got != `{"version":1,"objects":[]}` {
		t.Errorf("empty snapshot = %s", got)
	}
	s := NewScene()
	id, _ := s.Add(redaction(0, 0, Black))
	s.Remove(id)
	if !s.Snapshot().Equal(NewScene().Snapshot()) {
		t.Error("emptied scene does not match a fresh one")
	}
}

func TestSceneRestore(t *testing.T) {
	s := NewScene()
	s.Add(redaction(0, 0, Black))
	s.Add(NewText(Text{Position: Point{100, 100}, Width: 200, FontSize: 16, Color: Black, Content: "Enter Text Here"}))
	snap := s.Snapshot()

	other := NewScene()
	if err := other.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !other.Snapshot().Equal(snap) {
		t.Errorf("restored scene serializes differently:\n%s\n%s", other.Snapshot(), snap)
	}
	if id, _ := other.Add(redaction(1, 1, White)); id != 3 {
		t.Errorf("id after restore = %d, want 3", id)
	}
}

func TestSceneRestoreRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"version":1,`},
		{"wrong version", `{"version":2,"objects":[]}`},
		{"unknown field", `{"version":1,"objects":[],"extra":true}`},
		{"zero id", `{"version":1,"objects":[{"id":0,"kind":"shape","shape":{"position":{"x":0,"y":0},"size":{"w":1,"h":1},"fill":"#000000ff","style":"rect"}}]}`},
		{"duplicate id", `{"version":1,"objects":[` +
			`{"id":1,"kind":"shape","shape":{"position":{"x":0,"y":0},"size":{"w":1,"h":1},"fill":"#000000ff","style":"rect"}},` +
			`{"id":1,"kind":"shape","shape":{"position":{"x":0,"y":0},"size":{"w":1,"h":1},"fill":"#000000ff","style":"rect"}}]}`},
		{"kind mismatch", `{"version":1,"objects":[{"id":1,"kind":"text","shape":{"position":{"x":0,"y":0},"size":{"w":1,"h":1},"fill":"#000000ff","style":"rect"}}]}`},
		{"bad color", `{"version":1,"objects":[{"id":1,"kind":"shape","shape":{"position":{"x":0,"y":0},"size":{"w":1,"h":1},"fill":"nope","style":"rect"}}]}`},
		{"unknown kind", `{"version":1,"objects":[{"id":1,"kind":"blob"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScene()
			id, _ := s.Add(redaction(0, 0, Black))
			s.SetActive(id)
			before := s.Snapshot()

			err := s.Restore(SnapshotFromBytes([]byte(tt.data)))
			var re *RestoreError
			if !errors.As(err, &re) {
				t.Fatalf("got %v, want RestoreError", err)
			}
			if !s.Snapshot().Equal(before) || s.Active() != id {
				t.Error("failed restore changed the scene")
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#000", Color{0, 0, 0, 255}},
		{"#ff8000", Color{255, 128, 0, 255}},
		{"#80808099", Color{128, 128, 128, 0x99}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseColor("grey"); err == nil {
		t.Error("ParseColor(grey): no error")
	}
}
