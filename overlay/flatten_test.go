package overlay

import (
	"context"
	"errors"
	"testing"
)

func sceneWith(t *testing.T, objs ...Object) *Scene {
	t.Helper()
	s := NewScene()
	for _, o := range objs {
		if _, err := s.Add(o); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestExportOnlyAnnotatedPageChanges(t *testing.T) {
	doc := testDoc(t, 3)
	enc := &fakeEncoder{preserve: true}
	f := &Flattener{Encoder: enc, Multiplier: 2}
	scenes := map[int]*Scene{
		0: NewScene(),
		1: sceneWith(t, redaction(100, 100, Gray)),
	}

	res, err := f.Export(context.Background(), doc, scenes)
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Bytes) != "012" || res.Pages != 3 {
		t.Errorf("output = %q, %d pages", res.Bytes, res.Pages)
	}
	if enc.layers[0] != nil || enc.layers[2] != nil {
		t.Error("unannotated pages got a layer")
	}
	layer := enc.layers[1]
	if layer == nil {
		t.Fatal("annotated page has no layer")
	}
	if b := layer.Bounds(); b.Dx() != 1200 || b.Dy() != 1600 {
		t.Errorf("layer size = %v, want page size times 2", b)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	for i, want := range []int{0, 2} {
		var w *EmptySceneWarning
		if !errors.As(res.Warnings[i], &w) || w.Page != want {
			t.Errorf("warning %d = %v, want page %d", i, res.Warnings[i], want+1)
		}
	}
}

func TestExportRasterMode(t *testing.T) {
	doc := testDoc(t, 3)
	enc := &fakeEncoder{}
	r := &fakeRasterizer{}
	f := &Flattener{Encoder: enc, Rasterizer: r, Multiplier: 1}
	scenes := map[int]*Scene{1: sceneWith(t, redaction(10, 10, Black))}

	res, err := f.Export(context.Background(), doc, scenes)
	if err != nil {
		t.Fatal(err)
	}
	if r.calls != 1 {
		t.Errorf("rasterized %d pages, want only the annotated one", r.calls)
	}
	if len(enc.layers) != 3 {
		t.Fatalf("composed %d pages", len(enc.layers))
	}
	for _, i := range []int{0, 2} {
		if enc.layers[i] != nil {
			t.Errorf("page %d: unannotated page was flattened instead of re-emitted", i+1)
		}
	}
	if enc.layers[1] == nil {
		t.Fatal("page 2: flattened page missing")
	}
	if got := rgbaAt(enc.layers[1], 20, 20); got.R != 0 || got.A != 255 {
		t.Errorf("page 2 = %v, want the redaction over the page", got)
	}
	if got := rgbaAt(enc.layers[1], 300, 300); got.R != 255 || got.G != 255 || got.A != 255 {
		t.Errorf("page 2 outside the redaction = %v, want the page raster", got)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("warnings = %v", res.Warnings)
	}

	r.err = errBoom
	_, err = f.Export(context.Background(), doc, scenes)
	var de *DecodeError
	if !errors.As(err, &de) || !errors.Is(err, errBoom) {
		t.Errorf("rasterizer failure = %v", err)
	}

	f.Rasterizer = nil
	if _, err := f.Export(context.Background(), doc, scenes); err == nil {
		t.Error("raster mode without a rasterizer succeeded")
	}
}

func TestExportErrors(t *testing.T) {
	doc := testDoc(t, 3)
	scenes := map[int]*Scene{1: sceneWith(t, redaction(0, 0, Black))}

	t.Run("no document", func(t *testing.T) {
		f := &Flattener{Encoder: &fakeEncoder{preserve: true}}
		res, err := f.Export(context.Background(), nil, scenes)
		var ee *ExportError
		if !errors.As(err, &ee) || !errors.Is(err, ErrNoDocument) || res != nil {
			t.Errorf("got %v, %v", res, err)
		}
	})
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := &Flattener{Encoder: &fakeEncoder{preserve: true}}
		res, err := f.Export(ctx, doc, scenes)
		if !errors.Is(err, context.Canceled) || res != nil {
			t.Errorf("got %v, %v", res, err)
		}
	})
	t.Run("encoder failure", func(t *testing.T) {
		f := &Flattener{Encoder: &fakeEncoder{preserve: true, fail: errBoom}}
		res, err := f.Export(context.Background(), doc, scenes)
		var ee *ExportError
		if !errors.As(err, &ee) || !errors.Is(err, errBoom) || res != nil {
			t.Errorf("got %v, %v", res, err)
		}
	})
	t.Run("missing asset", func(t *testing.T) {
		img := NewImage(Image{Position: Point{0, 0}, Scale: 1, Asset: "gone", PixelWidth: 1, PixelHeight: 1})
		f := &Flattener{Encoder: &fakeEncoder{preserve: true}}
		_, err := f.Export(context.Background(), doc, map[int]*Scene{2: sceneWith(t, img)})
		var ee *ExportError
		if !errors.As(err, &ee) || ee.Page != 2 {
			t.Errorf("got %v", err)
		}
	})
}
