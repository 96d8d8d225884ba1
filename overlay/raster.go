package overlay

import (
	"context"
	"image"
)

// Rasterizer decodes a document page into a bitmap. Scale 1 renders one
// pixel per document unit.
type Rasterizer interface {
	RenderPage(ctx context.Context, doc []byte, page int, scale float64) (image.Image, error)
}

// Ticket identifies one raster request. Completions carrying an old
// generation are dropped.
type Ticket struct {
	Page  int
	Scale float64
	gen   uint64
}

// RasterResult is the outcome of an asynchronous raster job.
type RasterResult struct {
	Ticket Ticket
	Image  image.Image
	Err    error
}

type rasterEntry struct {
	scale float64
	img   image.Image
}

// RasterCache keeps the latest bitmap of each open page, one entry per
// page. It is used from the session's single thread of control only.
type RasterCache struct {
	entries map[int]rasterEntry
	gen     uint64
}

func NewRasterCache() *RasterCache {
	return &RasterCache{entries: make(map[int]rasterEntry)}
}

func (c *RasterCache) Lookup(page int, scale float64) (image.Image, bool) {
	e, ok := c.entries[page]
	if !ok || e.scale != scale {
		return nil, false
	}
	return e.img, true
}

// Begin starts a request and makes every older ticket stale.
func (c *RasterCache) Begin(page int, scale float64) Ticket {
	c.gen++
	return Ticket{Page: page, Scale: scale, gen: c.gen}
}

// Current reports whether t is the latest request.
func (c *RasterCache) Current(t Ticket) bool { return t.gen == c.gen }

// Complete stores img if t is still current. It reports whether the
// bitmap was kept.
func (c *RasterCache) Complete(t Ticket, img image.Image) bool {
	if !c.Current(t) || img == nil {
		return false
	}
	c.entries[t.Page] = rasterEntry{scale: t.Scale, img: img}
	return true
}

// Render returns the cached bitmap or rasterizes it synchronously.
func (c *RasterCache) Render(ctx context.Context, r Rasterizer, doc []byte, page int, scale float64) (image.Image, error) {
	if img, ok := c.Lookup(page, scale); ok {
		return img, nil
	}
	t := c.Begin(page, scale)
	img, err := r.RenderPage(ctx, doc, page, scale)
	if err != nil {
		return nil, &DecodeError{Op: "render page", Err: err}
	}
	c.Complete(t, img)
	return img, nil
}

// Outdate makes every pending ticket stale without dropping entries.
func (c *RasterCache) Outdate() { c.gen++ }

// Invalidate drops the entry of one page and outdates pending requests.
func (c *RasterCache) Invalidate(page int) {
	delete(c.entries, page)
	c.gen++
}

// Reset drops everything, as on a document switch.
func (c *RasterCache) Reset() {
	c.entries = make(map[int]rasterEntry)
	c.gen++
}
