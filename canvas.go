package main

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"pdfink/overlay"
)

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
)

type cell struct {
	r  rune
	fg string // hex color, empty for the terminal default
}

// pageCells returns the size of the page at the current zoom in cells.
func (m *model) pageCells() (int, int) {
	size := m.session.Viewport().ScreenSize()
	return int(math.Ceil(size.W / charWidth)), int(math.Ceil(size.H / charHeight))
}

func (m *model) canvasHeight() int {
	h := m.height - 1 // status line
	if h < 1 {
		h = 1
	}
	return h
}

// screenPoint maps a terminal cell to page-relative screen pixels,
// taking the center of the cell.
func (m *model) screenPoint(x, y int) overlay.Point {
	panX, panY := m.getPanOffset()
	return overlay.Point{
		X: float64((x+panX)*charWidth) + charWidth/2,
		Y: float64((y+panY)*charHeight) + charHeight/2,
	}
}

// previewObjects returns the scene as it should look right now, with an
// in-flight drag or stroke applied.
func (m *model) previewObjects() []overlay.Object {
	c := m.session.Controller()
	if c == nil {
		return nil
	}
	objs := c.Scene().Objects()
	surf := c.Surface()
	if surf == nil {
		return objs
	}
	v := c.Viewport()
	if id, off := surf.DragOffset(); id != 0 {
		d := overlay.ToDoc(off, v)
		for i := range objs {
			if objs[i].ID == id {
				objs[i] = shifted(objs[i], d)
			}
		}
	}
	if pts := surf.PendingStroke(); len(pts) > 0 && surf.Drawing() {
		for i := range pts {
			pts[i] = overlay.ToDoc(pts[i], v)
		}
		b := surf.Brush()
		objs = append(objs, overlay.NewStroke(overlay.Stroke{
			Points: pts,
			Color:  b.Color,
			Width:  overlay.DocLength(b.Width, v),
		}))
	}
	return objs
}

func shifted(o overlay.Object, d overlay.Point) overlay.Object {
	o = o.Clone()
	switch o.Kind {
	case overlay.KindText:
		o.Text.Position = o.Text.Position.Add(d)
	case overlay.KindStroke:
		for i := range o.Stroke.Points {
			o.Stroke.Points[i] = o.Stroke.Points[i].Add(d)
		}
	case overlay.KindShape:
		o.Shape.Position = o.Shape.Position.Add(d)
	case overlay.KindImage:
		o.Image.Position = o.Image.Position.Add(d)
	}
	return o
}

// pageImage composites the annotations over the cached page raster at
// the current zoom.
func (m *model) pageImage() (image.Image, error) {
	page, ok := m.session.Page()
	if !ok {
		return nil, nil
	}
	zoom := m.session.Viewport().Zoom
	layer, err := overlay.RenderScene(m.previewObjects(), page, zoom, m.session.Assets())
	if err != nil {
		return nil, err
	}
	if base, ok := m.session.Raster(); ok {
		return overlay.Composite(base, layer), nil
	}
	return layer, nil
}

// renderPage draws the visible part of the page as character cells. Each
// cell shows how much ink covers its pixels.
func (m *model) renderPage(width, height int) []string {
	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}

	img, err := m.pageImage()
	if err != nil {
		m.log.Printf("render page: %v", err)
	}
	panX, panY := m.getPanOffset()
	cols, rows := m.pageCells()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cx, cy := x+panX, y+panY
			switch {
			case cx >= 0 && cx < cols && cy >= 0 && cy < rows:
				if img != nil {
					grid[y][x] = sampleCell(img, cx*charWidth, cy*charHeight)
				}
			case cx == cols && cy == rows:
				grid[y][x] = cell{r: '┘', fg: "border"}
			case cx == cols && cy >= 0 && cy < rows:
				grid[y][x] = cell{r: '│', fg: "border"}
			case cy == rows && cx >= 0 && cx < cols:
				grid[y][x] = cell{r: '─', fg: "border"}
			}
		}
	}
	m.drawActiveFrame(grid, panX, panY)

	lines := make([]string, height)
	for y, row := range grid {
		lines[y] = renderRow(row)
	}
	return lines
}

// sampleCell averages a 4x4 grid of samples over the cell at pixel
// (px, py). Transparent pixels count as white paper.
func sampleCell(img image.Image, px, py int) cell {
	b := img.Bounds()
	var ink, n float64
	var inkR, inkG, inkB, inkN float64
	for sy := 0; sy < 4; sy++ {
		for sx := 0; sx < 4; sx++ {
			x := b.Min.X + px + sx*charWidth/4 + 1
			y := b.Min.Y + py + sy*charHeight/4 + 2
			if x >= b.Max.X || y >= b.Max.Y {
				continue
			}
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			a := float64(c.A) / 255
			r := float64(c.R)/255*a + (1 - a)
			g := float64(c.G)/255*a + (1 - a)
			bl := float64(c.B)/255*a + (1 - a)
			dark := 1 - (0.299*r + 0.587*g + 0.114*bl)
			ink += dark
			n++
			if dark > 0.1 {
				inkR, inkG, inkB = inkR+r, inkG+g, inkB+bl
				inkN++
			}
		}
	}
	if n == 0 {
		return cell{r: ' '}
	}
	level := int(math.Round(ink / n * float64(len(shades)-1)))
	if level <= 0 {
		if inkN == 0 {
			return cell{r: ' '}
		}
		level = 1
	}
	if level >= len(shades) {
		level = len(shades) - 1
	}
	fg := colorful.Color{R: inkR / inkN, G: inkG / inkN, B: inkB / inkN}.Clamped().Hex()
	return cell{r: shades[level], fg: fg}
}

// drawActiveFrame outlines the focused object.
func (m *model) drawActiveFrame(grid [][]cell, panX, panY int) {
	obj, ok := m.session.Active()
	if !ok {
		return
	}
	v := m.session.Viewport()
	bounds := obj.Bounds()
	tl := overlay.ToScreen(overlay.Point{X: bounds.X, Y: bounds.Y}, v)
	br := overlay.ToScreen(overlay.Point{X: bounds.X + bounds.W, Y: bounds.Y + bounds.H}, v)
	x0 := int(math.Floor(tl.X/charWidth)) - 1 - panX
	y0 := int(math.Floor(tl.Y/charHeight)) - 1 - panY
	x1 := int(math.Ceil(br.X/charWidth)) - panX
	y1 := int(math.Ceil(br.Y/charHeight)) - panY

	set := func(x, y int, r rune) {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
			grid[y][x] = cell{r: r, fg: "active"}
		}
	}
	for x := x0 + 1; x < x1; x++ {
		set(x, y0, '┄')
		set(x, y1, '┄')
	}
	for y := y0 + 1; y < y1; y++ {
		set(x0, y, '┆')
		set(x1, y, '┆')
	}
	set(x0, y0, '┌')
	set(x1, y0, '┐')
	set(x0, y1, '└')
	set(x1, y1, '┘')
}

// renderRow styles runs of cells that share a color in one go.
func renderRow(row []cell) string {
	var b strings.Builder
	var run strings.Builder
	fg := ""
	flush := func() {
		if run.Len() == 0 {
			return
		}
		switch fg {
		case "":
			b.WriteString(run.String())
		case "border":
			b.WriteString(borderStyle.Render(run.String()))
		case "active":
			b.WriteString(activeStyle.Render(run.String()))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Render(run.String()))
		}
		run.Reset()
	}
	for _, c := range row {
		if c.fg != fg {
			flush()
			fg = c.fg
		}
		run.WriteRune(c.r)
	}
	flush()
	return b.String()
}
