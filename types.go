package main

import (
	"context"
	"log"

	"pdfink/overlay"
)

// pageView is the pan offset of one page, in character cells.
type pageView struct {
	panX int
	panY int
}

type model struct {
	width          int
	height         int
	ctx            context.Context
	session        *overlay.Session
	rasterizer     overlay.Rasterizer
	rendersPages   bool // false when rasterizer only draws blank paper
	config         *Config
	log            *log.Logger
	source         string
	views          map[int]*pageView
	mode           Mode
	help           bool
	helpScroll     int
	fileOp         FileOperation
	input          string
	confirmAction  ConfirmAction
	pendingPath    string
	dragging       bool
	exporting      bool
	errorMessage   string
	successMessage string
}

// rasterMsg carries a finished page raster back to the update loop.
type rasterMsg overlay.RasterResult

type exportMsg struct {
	path string
	res  *overlay.ExportResult
	err  error
}
