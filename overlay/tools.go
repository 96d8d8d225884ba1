package overlay

import (
	"fmt"
	"io"
	"log"
	"unicode/utf8"
)

type Tool int

const (
	ToolSelect Tool = iota
	ToolTextInsert
	ToolFreehand
	ToolErase
	ToolRedact
	ToolImageInsert
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolTextInsert:
		return "text"
	case ToolFreehand:
		return "pencil"
	case ToolErase:
		return "erase"
	case ToolRedact:
		return "redact"
	case ToolImageInsert:
		return "image"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// RedactStyle picks between the two redaction variants.
type RedactStyle int

const (
	RedactShape RedactStyle = iota
	RedactStroke
)

const (
	DefaultText       = "Enter Text Here"
	DefaultTextWidth  = 200
	DefaultFontSize   = 16
	DefaultImageScale = 0.5
)

var (
	DefaultTextPosition   = Point{100, 100}
	DefaultRedactPosition = Point{100, 100}
	DefaultRedactSize     = Size{100, 50}
)

// ToolConfig is shared by every page of a session. Brush widths are in
// screen pixels and are divided by the zoom when a stroke is stored.
type ToolConfig struct {
	Active        Tool
	BrushColor    Color
	BrushWidth    float64
	EraseColor    Color
	EraseWidth    float64
	RedactColor   Color
	RedactWidth   float64
	RedactOpacity float64
	RedactStyle   RedactStyle
}

func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		Active:        ToolSelect,
		BrushColor:    Black,
		BrushWidth:    2,
		EraseColor:    White,
		EraseWidth:    20,
		RedactColor:   Gray,
		RedactWidth:   20,
		RedactOpacity: 0.8,
		RedactStyle:   RedactShape,
	}
}

// Tools is the tool state machine. One tool is active at a time and
// input is translated into scene mutations on the controller it is given.
type Tools struct {
	cfg    ToolConfig
	assets *AssetStore
	log    *log.Logger
}

func NewTools(cfg ToolConfig, assets *AssetStore, logger *log.Logger) *Tools {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if assets == nil {
		assets = NewAssetStore()
	}
	cfg.Active = ToolSelect
	return &Tools{cfg: cfg, assets: assets, log: logger}
}

func (t *Tools) Config() ToolConfig { return t.cfg }
func (t *Tools) Active() Tool { return t.cfg.Active }

// Select switches to tool. Drawing mode and the active object are reset
// first, even when tool is already active. Single-shot tools create
// their object right away and return its ID.
func (t *Tools) Select(c *Controller, tool Tool) (ID, error) {
	if tool < ToolSelect || tool > ToolImageInsert {
		return 0, inputErr("select tool", "unknown tool %d", int(tool))
	}
	surf, err := c.live("select " + tool.String())
	if err != nil {
		return 0, err
	}
	surf.resetDrawingMode()
	c.scene.SetActive(0)
	t.cfg.Active = tool
	t.log.Printf("page %d: tool %s", c.page.Index+1, tool)

	switch tool {
	case ToolTextInsert:
		return t.addText(c)
	case ToolFreehand:
		surf.startDrawing(Brush{t.cfg.BrushColor, t.cfg.BrushWidth})
	case ToolErase:
		surf.startDrawing(Brush{t.cfg.EraseColor, t.cfg.EraseWidth})
	case ToolRedact:
		if t.cfg.RedactStyle == RedactStroke {
			surf.startDrawing(Brush{t.cfg.RedactColor.WithOpacity(t.cfg.RedactOpacity), t.cfg.RedactWidth})
			return 0, nil
		}
		return t.addRedaction(c)
	}
	return 0, nil
}

func (t *Tools) addText(c *Controller) (ID, error) {
	obj := NewText(Text{
		Position: DefaultTextPosition,
		Width:    DefaultTextWidth,
		FontSize: DefaultFontSize,
		Color:    Black,
		Content:  DefaultText,
	})
	return t.place(c, obj)
}

func (t *Tools) addRedaction(c *Controller) (ID, error) {
	obj := NewShape(Shape{
		Position: DefaultRedactPosition,
		Size:     DefaultRedactSize,
		Fill:     t.cfg.RedactColor.WithOpacity(t.cfg.RedactOpacity),
		Style:    ShapeRedaction,
	})
	return t.place(c, obj)
}

// place adds a discrete object, focuses it, records, and hands control
// back to Select.
func (t *Tools) place(c *Controller, obj Object) (ID, error) {
	var id ID
	err := c.apply(func(s *Scene) error {
		var err error
		id, err = s.Add(obj)
		if err != nil {
			return err
		}
		return s.SetActive(id)
	})
	if err != nil {
		return 0, err
	}
	t.cfg.Active = ToolSelect
	return id, nil
}

// InsertImage decodes asset and places it centered on the page at the
// default scale. Unsupported assets leave everything untouched.
func (t *Tools) InsertImage(c *Controller, asset []byte) (ID, error) {
	surf, err := c.live("insert image")
	if err != nil {
		return 0, err
	}
	key, img, err := t.assets.Put(asset)
	if err != nil {
		return 0, err
	}
	surf.resetDrawingMode()
	c.scene.SetActive(0)
	t.cfg.Active = ToolImageInsert

	b := img.Bounds()
	w := float64(b.Dx()) * DefaultImageScale
	h := float64(b.Dy()) * DefaultImageScale
	obj := NewImage(Image{
		Position:    Point{(c.page.Width - w) / 2, (c.page.Height - h) / 2},
		Scale:       DefaultImageScale,
		Asset:       key,
		PixelWidth:  b.Dx(),
		PixelHeight: b.Dy(),
	})
	return t.place(c, obj)
}

// PointerDown starts a stroke in drawing mode, otherwise selects the
// topmost object under p. p is in screen space relative to the page.
func (t *Tools) PointerDown(c *Controller, p Point) error {
	surf, err := c.live("pointer down")
	if err != nil {
		return err
	}
	if surf.drawing {
		surf.stroke = []Point{p}
		return nil
	}
	id := c.scene.HitTest(ToDoc(p, c.view))
	c.scene.SetActive(id)
	surf.drag = nil
	if id != 0 {
		surf.drag = &drag{id: id, start: p, last: p}
	}
	return nil
}

func (t *Tools) PointerMove(c *Controller, p Point) error {
	surf, err := c.live("pointer move")
	if err != nil {
		return err
	}
	switch {
	case surf.drawing && surf.stroke != nil:
		if last := surf.stroke[len(surf.stroke)-1]; last != p {
			surf.stroke = append(surf.stroke, p)
		}
	case surf.drag != nil:
		surf.drag.last = p
	}
	return nil
}

// PointerUp completes the gesture. A finished stroke or a move that
// changed something is recorded as one history entry.
func (t *Tools) PointerUp(c *Controller, p Point) error {
	surf, err := c.live("pointer up")
	if err != nil {
		return err
	}
	if surf.drawing {
		if surf.stroke == nil {
			return nil
		}
		if last := surf.stroke[len(surf.stroke)-1]; last != p {
			surf.stroke = append(surf.stroke, p)
		}
		pts := make([]Point, len(surf.stroke))
		for i, sp := range surf.stroke {
			pts[i] = ToDoc(sp, c.view)
		}
		surf.stroke = nil
		obj := NewStroke(Stroke{
			Points: pts,
			Color:  surf.brush.Color,
			Width:  DocLength(surf.brush.Width, c.view),
		})
		return c.apply(func(s *Scene) error {
			_, err := s.Add(obj)
			return err
		})
	}
	d := surf.drag
	surf.drag = nil
	if d == nil {
		return nil
	}
	d.last = p
	delta := ToDoc(d.last.Sub(d.start), c.view)
	if delta == (Point{}) {
		return nil
	}
	return c.apply(func(s *Scene) error { return s.Translate(d.id, delta) })
}

// HandleKey edits the focused text object. Every keystroke that changes
// the content is recorded on its own.
func (t *Tools) HandleKey(c *Controller, ev KeyEvent) error {
	if _, err := c.live("key"); err != nil {
		return err
	}
	obj, ok := c.scene.Get(c.scene.Active())
	if !ok || obj.Kind != KindText {
		return nil
	}
	content := obj.Text.Content
	switch ev.Type {
	case KeyBackspace:
		if content == "" {
			return nil
		}
		_, size := utf8.DecodeLastRuneInString(content)
		content = content[:len(content)-size]
	case KeyRune:
		if ev.Rune == utf8.RuneError {
			return nil
		}
		content += string(ev.Rune)
	case KeyPaste:
		if ev.Text == "" {
			return nil
		}
		content += ev.Text
	default:
		return nil
	}
	return c.Update(obj.ID, Patch{Content: &content})
}
