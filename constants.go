package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpExportPDF FileOperation = iota
	FileOpExportPNG
	FileOpInsertImage
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmDeleteObject
	ConfirmOverwriteFile
)

// Character cell dimensions in screen pixels.
const (
	charWidth  = 8
	charHeight = 16
)

// shades maps ink coverage of a cell to a glyph, lightest first.
var shades = []rune{' ', '·', '░', '▒', '▓', '█'}
