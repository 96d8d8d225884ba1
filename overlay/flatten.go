package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
)

// DefaultExportScale is the resolution multiplier for annotation rasters.
const DefaultExportScale = 2

// PagePart is one composed output page, ready for assembly.
type PagePart struct {
	Page  Page
	Layer []byte // PNG; nil re-emits the original page unchanged
}

// Encoder writes the output document. When PreservesContent is true the
// original page content stays beneath each layer; otherwise each layer is
// a complete flattened page image.
type Encoder interface {
	PreservesContent() bool
	ComposePage(p Page, layer image.Image) (PagePart, error)
	Assemble(parts []PagePart) ([]byte, error)
}

type ExportResult struct {
	Bytes    []byte
	Pages    int
	Warnings []error
}

// Flattener composites scenes onto their pages and assembles the result.
type Flattener struct {
	Encoder    Encoder
	Rasterizer Rasterizer // used only when the encoder cannot preserve content
	Assets     *AssetStore
	Multiplier float64
	Logger     *log.Logger
}

func (f *Flattener) logger() *log.Logger {
	if f.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return f.Logger
}

// Export emits every page of doc in order. Pages without a scene or with
// an empty scene are re-emitted unchanged and reported as warnings.
func (f *Flattener) Export(ctx context.Context, doc *Document, scenes map[int]*Scene) (*ExportResult, error) {
	if doc == nil {
		return nil, &ExportError{Page: -1, Err: ErrNoDocument}
	}
	if f.Encoder == nil {
		return nil, &ExportError{Page: -1, Err: errors.New("no output encoder")}
	}
	preserve := f.Encoder.PreservesContent()
	if !preserve && f.Rasterizer == nil {
		return nil, &ExportError{Page: -1, Err: errors.New("encoder needs page rasters but no rasterizer is set")}
	}
	scale := f.Multiplier
	if scale <= 0 {
		scale = DefaultExportScale
	}
	lg := f.logger()

	res := &ExportResult{}
	parts := make([]PagePart, 0, doc.NumPages())
	for _, page := range doc.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, &ExportError{Page: page.Index, Err: err}
		}
		var objs []Object
		if s := scenes[page.Index]; s != nil {
			objs = s.Objects()
		}
		if len(objs) == 0 {
			res.Warnings = append(res.Warnings, &EmptySceneWarning{Page: page.Index})
		}

		layer, err := f.pageLayer(ctx, doc, page, objs, scale, preserve)
		if err != nil {
			return nil, &ExportError{Page: page.Index, Err: err}
		}
		part, err := f.Encoder.ComposePage(page, layer)
		if err != nil {
			return nil, &ExportError{Page: page.Index, Err: err}
		}
		parts = append(parts, part)
		lg.Printf("export: page %d/%d, %d objects", page.Index+1, doc.NumPages(), len(objs))
	}

	out, err := f.Encoder.Assemble(parts)
	if err != nil {
		return nil, &ExportError{Page: -1, Err: err}
	}
	res.Bytes = out
	res.Pages = len(parts)
	return res, nil
}

// pageLayer returns what the encoder draws over page. A page without
// objects gets a nil layer in both modes so the encoder re-emits it as is.
func (f *Flattener) pageLayer(ctx context.Context, doc *Document, page Page, objs []Object, scale float64, preserve bool) (image.Image, error) {
	if len(objs) == 0 {
		return nil, nil
	}
	layer, err := RenderScene(objs, page, scale, f.Assets)
	if err != nil {
		return nil, fmt.Errorf("rasterize annotations: %w", err)
	}
	if preserve {
		return layer, nil
	}
	base, err := f.Rasterizer.RenderPage(ctx, doc.Bytes(), page.Index, scale)
	if err != nil {
		return nil, &DecodeError{Op: "render page", Err: err}
	}
	return Composite(base, layer), nil
}
