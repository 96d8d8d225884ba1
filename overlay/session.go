package overlay

import (
	"context"
	"errors"
	"image"
	"io"
	"log"
)

// EncoderFunc builds the output encoder for a loaded document.
type EncoderFunc func(doc *Document) (Encoder, error)

type Options struct {
	Tools       ToolConfig
	Rasterizer  Rasterizer
	NewEncoder  EncoderFunc
	ExportScale float64
	Keys        *KeyRouter // created when nil
	Logger      *log.Logger
}

// Session ties one document to its per-page controllers, the tool state
// machine and the raster cache. It is driven from a single goroutine;
// work handed out as jobs only touches copies.
type Session struct {
	doc     *Document
	pages   map[int]*Controller
	current int

	tools      *Tools
	assets     *AssetStore
	cache      *RasterCache
	rasterizer Rasterizer
	newEncoder EncoderFunc
	scale      float64

	keys *KeyRouter
	sub  *Subscription
	log  *log.Logger
}

// OpenSession starts a session on doc. A nil doc gives an empty session
// that can Load a document later.
func OpenSession(doc *Document, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	keys := opts.Keys
	if keys == nil {
		keys = NewKeyRouter()
	}
	scale := opts.ExportScale
	if scale <= 0 {
		scale = DefaultExportScale
	}
	assets := NewAssetStore()
	s := &Session{
		pages:      make(map[int]*Controller),
		tools:      NewTools(opts.Tools, assets, logger),
		assets:     assets,
		cache:      NewRasterCache(),
		rasterizer: opts.Rasterizer,
		newEncoder: opts.NewEncoder,
		scale:      scale,
		keys:       keys,
		log:        logger,
	}
	s.sub = keys.Subscribe(s.handleKey)
	if doc != nil {
		if err := s.Load(doc); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Load replaces the document. All scenes and histories of the previous
// document are dropped.
func (s *Session) Load(doc *Document) error {
	if doc == nil {
		return &InputError{Op: "load document", Err: ErrNoDocument}
	}
	if c := s.pages[s.current]; c != nil {
		c.Release()
	}
	s.doc = doc
	s.pages = make(map[int]*Controller)
	s.current = 0
	s.cache.Reset()
	s.log.Printf("loaded document: %d pages", doc.NumPages())
	return s.OpenPage(0)
}

// OpenPage makes page i the active page. The previous page's surface is
// disposed before the new one is created; its scene and history are kept.
func (s *Session) OpenPage(i int) error {
	if s.doc == nil {
		return &InputError{Op: "open page", Err: ErrNoDocument}
	}
	p, ok := s.doc.Page(i)
	if !ok {
		return inputErr("open page", "page %d out of range 1-%d", i+1, s.doc.NumPages())
	}
	if c := s.pages[s.current]; c != nil {
		c.Release()
	}
	c := s.pages[i]
	if c == nil {
		c = NewController(p, s.log)
		s.pages[i] = c
	}
	c.Attach()
	s.current = i
	s.tools.cfg.Active = ToolSelect
	s.cache.Outdate()
	return nil
}

// Close releases the live surface and the key subscription.
func (s *Session) Close() {
	if c := s.pages[s.current]; c != nil {
		c.Release()
	}
	s.sub.Close()
}

func (s *Session) Document() *Document { return s.doc }
func (s *Session) PageIndex() int { return s.current }
func (s *Session) Keys() *KeyRouter { return s.keys }
func (s *Session) Assets() *AssetStore { return s.assets }
func (s *Session) Tool() Tool { return s.tools.Active() }
func (s *Session) ToolConfig() ToolConfig { return s.tools.Config() }

// Controller returns the active page's controller, or nil without a
// document.
func (s *Session) Controller() *Controller {
	if s.doc == nil {
		return nil
	}
	return s.pages[s.current]
}

func (s *Session) Page() (Page, bool) {
	if c := s.Controller(); c != nil {
		return c.Page(), true
	}
	return Page{}, false
}

// Scenes returns the scenes of every page visited so far.
func (s *Session) Scenes() map[int]*Scene {
	out := make(map[int]*Scene, len(s.pages))
	for i, c := range s.pages {
		out[i] = c.Scene()
	}
	return out
}

// swallow drops surface races: input that arrives while no surface is
// live is ignored.
func (s *Session) swallow(err error) error {
	if IsOperationError(err) {
		s.log.Printf("ignored: %v", err)
		return nil
	}
	return err
}

func (s *Session) SelectTool(t Tool) (ID, error) {
	id, err := s.tools.Select(s.Controller(), t)
	return id, s.swallow(err)
}

func (s *Session) InsertImage(data []byte) (ID, error) {
	id, err := s.tools.InsertImage(s.Controller(), data)
	return id, s.swallow(err)
}

func (s *Session) PointerDown(p Point) error {
	return s.swallow(s.tools.PointerDown(s.Controller(), p))
}

func (s *Session) PointerMove(p Point) error {
	return s.swallow(s.tools.PointerMove(s.Controller(), p))
}

func (s *Session) PointerUp(p Point) error {
	return s.swallow(s.tools.PointerUp(s.Controller(), p))
}

func (s *Session) handleKey(ev KeyEvent) error {
	return s.swallow(s.tools.HandleKey(s.Controller(), ev))
}

func (s *Session) Undo() error {
	c := s.Controller()
	if c == nil {
		return nil
	}
	return c.Undo()
}

func (s *Session) Redo() error {
	c := s.Controller()
	if c == nil {
		return nil
	}
	return c.Redo()
}

// Active returns the focused object of the active page.
func (s *Session) Active() (Object, bool) {
	c := s.Controller()
	if c == nil {
		return Object{}, false
	}
	return c.Scene().Get(c.Scene().Active())
}

func (s *Session) UpdateActive(p Patch) error {
	obj, ok := s.Active()
	if !ok {
		return nil
	}
	return s.Controller().Update(obj.ID, p)
}

func (s *Session) RemoveActive() error {
	obj, ok := s.Active()
	if !ok {
		return nil
	}
	return s.Controller().Remove(obj.ID)
}

func (s *Session) Viewport() Viewport {
	if c := s.Controller(); c != nil {
		return c.Viewport()
	}
	return Viewport{Zoom: 1}
}

func (s *Session) ZoomIn() { s.zoom((*Controller).ZoomIn) }
func (s *Session) ZoomOut() { s.zoom((*Controller).ZoomOut) }

func (s *Session) SetZoom(z float64) {
	s.zoom(func(c *Controller) { c.SetZoom(z) })
}

func (s *Session) zoom(fn func(*Controller)) {
	if c := s.Controller(); c != nil {
		fn(c)
	}
}

// Raster returns the cached bitmap of the active page at its zoom.
func (s *Session) Raster() (image.Image, bool) {
	c := s.Controller()
	if c == nil {
		return nil, false
	}
	return s.cache.Lookup(c.Page().Index, c.Viewport().Zoom)
}

// RasterJob prepares a rasterization of the active page at its zoom. The
// returned function may run on any goroutine; its result goes back
// through AcceptRaster. It returns nil when the bitmap is already cached
// or nothing can be rendered.
func (s *Session) RasterJob(ctx context.Context) func() RasterResult {
	c := s.Controller()
	if c == nil || s.rasterizer == nil {
		return nil
	}
	page, scale := c.Page().Index, c.Viewport().Zoom
	if _, ok := s.cache.Lookup(page, scale); ok {
		return nil
	}
	t := s.cache.Begin(page, scale)
	r, data := s.rasterizer, s.doc.Bytes()
	return func() RasterResult {
		img, err := r.RenderPage(ctx, data, page, scale)
		return RasterResult{Ticket: t, Image: img, Err: err}
	}
}

// AcceptRaster installs a finished job. Results for an outdated request
// are dropped and report false. A failure of the current request is
// returned as a DecodeError.
func (s *Session) AcceptRaster(res RasterResult) (bool, error) {
	if !s.cache.Current(res.Ticket) {
		s.log.Printf("raster: dropped stale result for page %d at %.2f", res.Ticket.Page+1, res.Ticket.Scale)
		return false, nil
	}
	if res.Err != nil {
		err := &DecodeError{Op: "render page", Err: res.Err}
		s.log.Printf("raster: page %d: %v", res.Ticket.Page+1, err)
		return false, err
	}
	return s.cache.Complete(res.Ticket, res.Image), nil
}

func (s *Session) flattener(enc Encoder) *Flattener {
	return &Flattener{
		Encoder:    enc,
		Rasterizer: s.rasterizer,
		Assets:     s.assets,
		Multiplier: s.scale,
		Logger:     s.log,
	}
}

func (s *Session) encoder() (Encoder, error) {
	if s.doc == nil {
		return nil, &ExportError{Page: -1, Err: ErrNoDocument}
	}
	if s.newEncoder == nil {
		return nil, &ExportError{Page: -1, Err: errors.New("no output encoder configured")}
	}
	enc, err := s.newEncoder(s.doc)
	if err != nil {
		return nil, &ExportError{Page: -1, Err: err}
	}
	return enc, nil
}

// Export flattens every page synchronously. Page rasters at the export
// scale bypass the view's cache, which holds one on-screen entry per page.
func (s *Session) Export(ctx context.Context) (*ExportResult, error) {
	enc, err := s.encoder()
	if err != nil {
		return nil, err
	}
	f := s.flattener(enc)
	res, err := f.Export(ctx, s.doc, s.Scenes())
	if err != nil {
		s.log.Printf("%v", err)
		return nil, err
	}
	for _, w := range res.Warnings {
		s.log.Printf("export: %v", w)
	}
	return res, nil
}

// ExportJob snapshots the scenes and returns an export that may run on
// another goroutine while editing continues.
func (s *Session) ExportJob(ctx context.Context) (func() (*ExportResult, error), error) {
	enc, err := s.encoder()
	if err != nil {
		return nil, err
	}
	f := s.flattener(enc)
	f.Assets = s.assets.clone()
	scenes := make(map[int]*Scene, len(s.pages))
	for i, c := range s.pages {
		scenes[i] = c.Scene().Clone()
	}
	doc := s.doc
	return func() (*ExportResult, error) {
		return f.Export(ctx, doc, scenes)
	}, nil
}
