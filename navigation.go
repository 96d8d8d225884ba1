package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) currentView() *pageView {
	idx := m.session.PageIndex()
	v, ok := m.views[idx]
	if !ok {
		v = &pageView{}
		m.views[idx] = v
	}
	return v
}

func (m *model) getPanOffset() (int, int) {
	v := m.currentView()
	return v.panX, v.panY
}

func (m *model) handlePan(key string, speed int) {
	v := m.currentView()
	switch key {
	case "h", "left", "H", "shift+left":
		v.panX -= speed
	case "l", "right", "L", "shift+right":
		v.panX += speed
	case "k", "up", "K", "shift+up":
		v.panY -= speed
	case "j", "down", "J", "shift+down":
		v.panY += speed
	}
	m.clampPan()
}

// clampPan keeps at least part of the page on screen.
func (m *model) clampPan() {
	v := m.currentView()
	cols, rows := m.pageCells()
	v.panX = clamp(v.panX, -m.width+1, cols)
	v.panY = clamp(v.panY, -m.canvasHeight()+1, rows)
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 4
	default:
		return 1
	}
}

func (m *model) zoom(in bool) tea.Cmd {
	if in {
		m.session.ZoomIn()
	} else {
		m.session.ZoomOut()
	}
	m.clampPan()
	return m.rasterCmd()
}

func (m *model) gotoPage(delta int) tea.Cmd {
	doc := m.session.Document()
	if doc == nil {
		return nil
	}
	next := m.session.PageIndex() + delta
	if next < 0 || next >= doc.NumPages() {
		return nil
	}
	if err := m.session.OpenPage(next); err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.mode = ModeNormal
	m.dragging = false
	return m.rasterCmd()
}

func (m *model) rasterCmd() tea.Cmd {
	job := m.session.RasterJob(m.ctx)
	if job == nil {
		return nil
	}
	return func() tea.Msg {
		return rasterMsg(job())
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
