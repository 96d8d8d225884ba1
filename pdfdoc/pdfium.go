package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
	xdraw "golang.org/x/image/draw"
)

// PdfiumRasterizer renders page content with PDFium compiled to
// WebAssembly, so no cgo or system library is needed. It is safe for
// concurrent use; each render borrows a worker from the pool.
type PdfiumRasterizer struct {
	pool    pdfium.Pool
	timeout time.Duration
}

// NewPdfiumRasterizer starts a pool of up to workers PDFium instances.
// Close releases them.
func NewPdfiumRasterizer(workers int) (*PdfiumRasterizer, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  workers,
		MaxTotal: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("start pdfium: %w", err)
	}
	return &PdfiumRasterizer{pool: pool, timeout: 30 * time.Second}, nil
}

func (r *PdfiumRasterizer) Close() error {
	return r.pool.Close()
}

// RenderPage renders page at scale pixels per point. The result is a copy
// that stays valid after the worker is returned.
func (r *PdfiumRasterizer) RenderPage(ctx context.Context, doc []byte, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("render scale %g", scale)
	}
	inst, err := r.pool.GetInstance(r.timeout)
	if err != nil {
		return nil, fmt.Errorf("get pdfium worker: %w", err)
	}
	defer inst.Close()

	opened, err := inst.OpenDocument(&requests.OpenDocument{File: &doc})
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer inst.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: opened.Document})

	ref := requests.Page{ByIndex: &requests.PageByIndex{Document: opened.Document, Index: page}}
	size, err := inst.GetPageSize(&requests.GetPageSize{Page: ref})
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page+1, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rendered, err := inst.RenderPageInPixels(&requests.RenderPageInPixels{
		Page:   ref,
		Width:  int(math.Ceil(size.Width * scale)),
		Height: int(math.Ceil(size.Height * scale)),
	})
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page+1, err)
	}
	defer rendered.Cleanup()

	src := rendered.Result.Image
	img := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	xdraw.Draw(img, img.Bounds(), src, src.Bounds().Min, xdraw.Src)
	return img, nil
}
