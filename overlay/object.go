package overlay

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
)

// ID identifies an object within one scene. Zero means none.
type ID uint64

type Kind int

const (
	KindText Kind = iota + 1
	KindStroke
	KindShape
	KindImage
)

var kindNames = map[Kind]string{
	KindText:   "text",
	KindStroke: "stroke",
	KindShape:  "shape",
	KindImage:  "image",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown object kind %d", int(k))
	}
	return []byte(s), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown object kind %q", b)
}

// Color is a non-premultiplied RGBA color. It serializes as #rrggbbaa.
type Color struct {
	R, G, B, A uint8
}

var (
	Black = Color{0, 0, 0, 255}
	White = Color{255, 255, 255, 255}
	Gray  = Color{128, 128, 128, 255}
)

func (c Color) NRGBA() color.NRGBA { return color.NRGBA{c.R, c.G, c.B, c.A} }

// WithOpacity returns c with its alpha set to o in [0,1].
func (c Color) WithOpacity(o float64) Color {
	o = math.Max(0, math.Min(1, o))
	c.A = uint8(math.Round(o * 255))
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{r, g, b, alpha}, nil
}

type Text struct {
	Position Point   `json:"position"`
	Width    float64 `json:"width"`
	FontSize float64 `json:"fontSize"`
	Color    Color   `json:"color"`
	Content  string  `json:"content"`
}

type Stroke struct {
	Points []Point `json:"points"`
	Color  Color   `json:"color"`
	Width  float64 `json:"width"`
}

type ShapeStyle string

const (
	ShapeRect      ShapeStyle = "rect"
	ShapeRedaction ShapeStyle = "redaction"
)

type Shape struct {
	Position Point      `json:"position"`
	Size     Size       `json:"size"`
	Fill     Color      `json:"fill"`
	Style    ShapeStyle `json:"style"`
}

// Image references its pixels through the session's AssetStore.
type Image struct {
	Position    Point   `json:"position"`
	Scale       float64 `json:"scale"`
	Asset       string  `json:"asset"`
	PixelWidth  int     `json:"pixelWidth"`
	PixelHeight int     `json:"pixelHeight"`
}

// Object is one annotation. Exactly the payload matching Kind is set.
type Object struct {
	ID     ID      `json:"id"`
	Kind   Kind    `json:"kind"`
	Text   *Text   `json:"text,omitempty"`
	Stroke *Stroke `json:"stroke,omitempty"`
	Shape  *Shape  `json:"shape,omitempty"`
	Image  *Image  `json:"image,omitempty"`
}

func NewText(t Text) Object { return Object{Kind: KindText, Text: &t} }
func NewStroke(s Stroke) Object { return Object{Kind: KindStroke, Stroke: &s} }
func NewShape(s Shape) Object { return Object{Kind: KindShape, Shape: &s} }
func NewImage(i Image) Object { return Object{Kind: KindImage, Image: &i} }

// Clone returns a deep copy.
func (o Object) Clone() Object {
	c := Object{ID: o.ID, Kind: o.Kind}
	switch o.Kind {
	case KindText:
		if o.Text != nil {
			t := *o.Text
			c.Text = &t
		}
	case KindStroke:
		if o.Stroke != nil {
			s := *o.Stroke
			s.Points = append([]Point(nil), o.Stroke.Points...)
			c.Stroke = &s
		}
	case KindShape:
		if o.Shape != nil {
			s := *o.Shape
			c.Shape = &s
		}
	case KindImage:
		if o.Image != nil {
			i := *o.Image
			c.Image = &i
		}
	}
	return c
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks the discriminant against the payloads and the geometry.
func (o Object) Validate() error {
	set := 0
	for _, p := range []bool{o.Text != nil, o.Stroke != nil, o.Shape != nil, o.Image != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("object %d: %d payloads set", o.ID, set)
	}
	switch o.Kind {
	case KindText:
		t := o.Text
		if t == nil {
			return fmt.Errorf("object %d: text payload missing", o.ID)
		}
		if !finite(t.Position.X, t.Position.Y, t.Width, t.FontSize) || t.Width <= 0 || t.FontSize <= 0 {
			return fmt.Errorf("object %d: bad text geometry", o.ID)
		}
		if !utf8.ValidString(t.Content) {
			return fmt.Errorf("object %d: content is not UTF-8", o.ID)
		}
	case KindStroke:
		s := o.Stroke
		if s == nil {
			return fmt.Errorf("object %d: stroke payload missing", o.ID)
		}
		if len(s.Points) == 0 {
			return fmt.Errorf("object %d: empty stroke", o.ID)
		}
		if !finite(s.Width) || s.Width <= 0 {
			return fmt.Errorf("object %d: bad stroke width", o.ID)
		}
		for _, p := range s.Points {
			if !finite(p.X, p.Y) {
				return fmt.Errorf("object %d: bad stroke point", o.ID)
			}
		}
	case KindShape:
		s := o.Shape
		if s == nil {
			return fmt.Errorf("object %d: shape payload missing", o.ID)
		}
		if !finite(s.Position.X, s.Position.Y, s.Size.W, s.Size.H) || s.Size.W <= 0 || s.Size.H <= 0 {
			return fmt.Errorf("object %d: bad shape geometry", o.ID)
		}
		if s.Style != ShapeRect && s.Style != ShapeRedaction {
			return fmt.Errorf("object %d: unknown shape style %q", o.ID, s.Style)
		}
	case KindImage:
		i := o.Image
		if i == nil {
			return fmt.Errorf("object %d: image payload missing", o.ID)
		}
		if !finite(i.Position.X, i.Position.Y, i.Scale) || i.Scale <= 0 {
			return fmt.Errorf("object %d: bad image geometry", o.ID)
		}
		if i.Asset == "" || i.PixelWidth <= 0 || i.PixelHeight <= 0 {
			return fmt.Errorf("object %d: bad image asset", o.ID)
		}
	default:
		return fmt.Errorf("object %d: unknown kind %d", o.ID, int(o.Kind))
	}
	return nil
}

// textLineHeight matches the line spacing used by the renderer.
const textLineHeight = 1.2

// Bounds returns the document-space bounding box used for hit testing.
func (o Object) Bounds() Rect {
	switch o.Kind {
	case KindText:
		lines := strings.Count(o.Text.Content, "\n") + 1
		return Rect{o.Text.Position.X, o.Text.Position.Y, o.Text.Width, float64(lines) * o.Text.FontSize * textLineHeight}
	case KindStroke:
		s := o.Stroke
		minX, minY := s.Points[0].X, s.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range s.Points[1:] {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		h := s.Width / 2
		return Rect{minX - h, minY - h, maxX - minX + s.Width, maxY - minY + s.Width}
	case KindShape:
		return Rect{o.Shape.Position.X, o.Shape.Position.Y, o.Shape.Size.W, o.Shape.Size.H}
	case KindImage:
		i := o.Image
		return Rect{i.Position.X, i.Position.Y, float64(i.PixelWidth) * i.Scale, float64(i.PixelHeight) * i.Scale}
	}
	return Rect{}
}

func (o *Object) translate(d Point) {
	switch o.Kind {
	case KindText:
		o.Text.Position = o.Text.Position.Add(d)
	case KindStroke:
		for i := range o.Stroke.Points {
			o.Stroke.Points[i] = o.Stroke.Points[i].Add(d)
		}
	case KindShape:
		o.Shape.Position = o.Shape.Position.Add(d)
	case KindImage:
		o.Image.Position = o.Image.Position.Add(d)
	}
}

// Patch changes selected fields of an object. Nil fields are left alone.
// Naming a field the object's kind does not have is an error.
type Patch struct {
	Position *Point
	Size     *Size
	Width    *float64
	FontSize *float64
	Color    *Color
	Content  *string
	Scale    *float64
	Points   []Point
}

var errPatchField = errors.New("field not supported by object kind")

func (p Patch) apply(o *Object) error {
	switch o.Kind {
	case KindText:
		if p.Size != nil || p.Scale != nil || p.Points != nil {
			return errPatchField
		}
		t := o.Text
		if p.Position != nil {
			t.Position = *p.Position
		}
		if p.Width != nil {
			t.Width = *p.Width
		}
		if p.FontSize != nil {
			t.FontSize = *p.FontSize
		}
		if p.Color != nil {
			t.Color = *p.Color
		}
		if p.Content != nil {
			t.Content = *p.Content
		}
	case KindStroke:
		if p.Position != nil || p.Size != nil || p.FontSize != nil || p.Content != nil || p.Scale != nil {
			return errPatchField
		}
		s := o.Stroke
		if p.Width != nil {
			s.Width = *p.Width
		}
		if p.Color != nil {
			s.Color = *p.Color
		}
		if p.Points != nil {
			s.Points = append([]Point(nil), p.Points...)
		}
	case KindShape:
		if p.Width != nil || p.FontSize != nil || p.Content != nil || p.Scale != nil || p.Points != nil {
			return errPatchField
		}
		s := o.Shape
		if p.Position != nil {
			s.Position = *p.Position
		}
		if p.Size != nil {
			s.Size = *p.Size
		}
		if p.Color != nil {
			s.Fill = *p.Color
		}
	case KindImage:
		if p.Size != nil || p.Width != nil || p.FontSize != nil || p.Color != nil || p.Content != nil || p.Points != nil {
			return errPatchField
		}
		if p.Position != nil {
			o.Image.Position = *p.Position
		}
		if p.Scale != nil {
			o.Image.Scale = *p.Scale
		}
	default:
		return fmt.Errorf("unknown kind %d", int(o.Kind))
	}
	return nil
}
