package overlay

import (
	"io"
	"log"
)

// Brush is a continuous-stroke configuration. Width is in screen pixels.
type Brush struct {
	Color Color
	Width float64
}

type drag struct {
	id    ID
	start Point
	last  Point
}

// Surface is the live drawing surface bound to one page. Only the active
// page has one, and it must be closed before another is created.
type Surface struct {
	page    int
	drawing bool
	brush   Brush
	stroke  []Point
	drag    *drag
	closed  bool
}

func (s *Surface) Page() int { return s.page }
func (s *Surface) Drawing() bool { return s.drawing }
func (s *Surface) Brush() Brush { return s.brush }
func (s *Surface) Closed() bool { return s.closed }
func (s *Surface) PendingStroke() []Point { return append([]Point(nil), s.stroke...) }

// DragOffset reports an in-flight move in screen space for previews.
func (s *Surface) DragOffset() (ID, Point) {
	if s.drag == nil {
		return 0, Point{}
	}
	return s.drag.id, s.drag.last.Sub(s.drag.start)
}

func (s *Surface) startDrawing(b Brush) {
	s.drawing = true
	s.brush = b
}

// resetDrawingMode turns drawing off and drops any half-finished gesture
// so a stale brush cannot leak into the next tool.
func (s *Surface) resetDrawingMode() {
	s.drawing = false
	s.brush = Brush{}
	s.stroke = nil
	s.drag = nil
}

// Close disposes the surface. Later input addressed to it is ignored.
func (s *Surface) Close() {
	s.resetDrawingMode()
	s.closed = true
}

// Controller owns the editing state of one page.
type Controller struct {
	page    Page
	scene   *Scene
	history *History
	view    Viewport
	surface *Surface
	log     *log.Logger
}

func NewController(p Page, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	scene := NewScene()
	return &Controller{
		page:    p,
		scene:   scene,
		history: NewHistory(scene.Snapshot()),
		view:    NewViewport(p),
		log:     logger,
	}
}

func (c *Controller) Page() Page { return c.page }
func (c *Controller) Scene() *Scene { return c.scene }
func (c *Controller) History() *History { return c.history }
func (c *Controller) Viewport() Viewport { return c.view }
func (c *Controller) Surface() *Surface { return c.surface }
func (c *Controller) SetZoom(z float64) { c.view.SetZoom(z) }
func (c *Controller) ZoomIn() { c.view.ZoomIn() }
func (c *Controller) ZoomOut() { c.view.ZoomOut() }

// Attach creates the live surface for this page. An existing surface is
// disposed first.
func (c *Controller) Attach() *Surface {
	c.Release()
	c.surface = &Surface{page: c.page.Index}
	return c.surface
}

// Release disposes the live surface, if any.
func (c *Controller) Release() {
	if c.surface != nil {
		c.surface.Close()
		c.surface = nil
	}
}

func (c *Controller) live(op string) (*Surface, error) {
	if c == nil || c.surface == nil {
		return nil, &OperationError{Op: op, Err: ErrNoSurface}
	}
	if c.surface.closed {
		return nil, &OperationError{Op: op, Err: ErrSurfaceClosed}
	}
	return c.surface, nil
}

// apply runs one scene mutation and records the result. Nothing is
// recorded when the mutation fails.
func (c *Controller) apply(fn func(*Scene) error) error {
	if err := fn(c.scene); err != nil {
		return err
	}
	c.history.Record(c.scene.Snapshot())
	return nil
}

// Update patches an object directly, as a host does for move or resize
// handles.
func (c *Controller) Update(id ID, p Patch) error {
	return c.apply(func(s *Scene) error { return s.Update(id, p) })
}

func (c *Controller) Remove(id ID) error {
	return c.apply(func(s *Scene) error { return s.Remove(id) })
}

func (c *Controller) Clear() error {
	return c.apply(func(s *Scene) error {
		s.Clear()
		return nil
	})
}

func (c *Controller) Undo() error {
	if c.surface != nil {
		c.surface.stroke = nil
		c.surface.drag = nil
	}
	if err := c.history.Undo(c.scene); err != nil {
		c.log.Printf("page %d: undo: %v", c.page.Index+1, err)
		return err
	}
	return nil
}

func (c *Controller) Redo() error {
	if c.surface != nil {
		c.surface.stroke = nil
		c.surface.drag = nil
	}
	if err := c.history.Redo(c.scene); err != nil {
		c.log.Printf("page %d: redo: %v", c.page.Index+1, err)
		return err
	}
	return nil
}
