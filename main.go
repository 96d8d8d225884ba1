package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfink/overlay"
	"pdfink/pdfdoc"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: pdfink <file.pdf>")
		os.Exit(2)
	}
	source := os.Args[1]

	config := loadConfig()
	logger, closeLog, err := config.openLog()
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	data, err := os.ReadFile(source)
	if err != nil {
		log.Fatal(err)
	}
	if mime := sniff(data); mime != "application/pdf" {
		log.Fatalf("%s: unsupported file type %s", source, mime)
	}
	doc, err := pdfdoc.Load(data)
	if err != nil {
		log.Fatalf("%s: %v", source, err)
	}

	rasterizer, rendersPages, stopRasterizer := startRasterizer(logger)
	defer stopRasterizer()
	if config.requirePageContent(rendersPages) {
		logger.Printf("flatten=raster needs page rendering, keeping the original page content instead")
	}
	session, err := overlay.OpenSession(doc, overlay.Options{
		Tools:       config.ToolConfig(),
		Rasterizer:  rasterizer,
		NewEncoder:  pdfdoc.EncoderFor(config.PreserveContent()),
		ExportScale: config.ExportScale,
		Logger:      logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()
	logger.Printf("opened %s: %d pages", source, doc.NumPages())

	m := initialModel(session, rasterizer, config, logger, source)
	m.rendersPages = rendersPages
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

// startRasterizer starts PDFium for page rendering. When it cannot start,
// pages are shown as blank paper and the second result is false.
func startRasterizer(logger *log.Logger) (overlay.Rasterizer, bool, func()) {
	r, err := pdfdoc.NewPdfiumRasterizer(2)
	if err != nil {
		logger.Printf("page rendering unavailable, showing blank pages: %v", err)
		return pdfdoc.PaperRasterizer{Border: true}, false, func() {}
	}
	return r, true, func() {
		if err := r.Close(); err != nil {
			logger.Printf("stop pdfium: %v", err)
		}
	}
}

func initialModel(session *overlay.Session, rasterizer overlay.Rasterizer, config *Config, logger *log.Logger, source string) model {
	return model{
		ctx:        context.Background(),
		session:    session,
		rasterizer: rasterizer,
		config:     config,
		log:        logger,
		source:     source,
		views:      map[int]*pageView{},
		mode:       ModeNormal,
	}
}

func (m model) Init() tea.Cmd {
	return m.rasterCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampPan()
		return m, nil

	case rasterMsg:
		if _, err := m.session.AcceptRaster(overlay.RasterResult(msg)); err != nil {
			m.errorMessage = err.Error()
		}
		return m, nil

	case exportMsg:
		m.finishExport(msg)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help {
			return m.handleHelpKey(msg)
		}
		m.errorMessage = ""
		switch m.mode {
		case ModeEditing:
			return m.handleEditKey(msg)
		case ModeFileInput:
			return m.handleFileInputKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		default:
			return m.handleNormalKey(msg)
		}
	}
	return m, nil
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.successMessage = ""
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		if !m.config.Confirmations {
			return m, tea.Quit
		}
		m.mode = ModeConfirm
		m.confirmAction = ConfirmQuit
		return m, nil
	case "?":
		m.help = true
		return m, nil
	case "esc", "s":
		m.selectTool(overlay.ToolSelect)
		if c := m.session.Controller(); c != nil {
			c.Scene().ClearActive()
		}
		return m, nil
	case "t":
		m.selectTool(overlay.ToolTextInsert)
		m.syncEditMode()
		return m, nil
	case "p":
		m.selectTool(overlay.ToolFreehand)
		return m, nil
	case "e":
		m.selectTool(overlay.ToolErase)
		return m, nil
	case "b":
		m.selectTool(overlay.ToolRedact)
		return m, nil
	case "i":
		m.startFileInput(FileOpInsertImage, "")
		return m, nil
	case "w":
		m.startFileInput(FileOpExportPDF, m.defaultExportName(".pdf"))
		return m, nil
	case "P":
		m.startFileInput(FileOpExportPNG, m.defaultExportName(".png"))
		return m, nil
	case "u":
		m.undo()
		return m, nil
	case "U":
		m.redo()
		return m, nil
	case "d", "delete":
		if _, ok := m.session.Active(); !ok {
			return m, nil
		}
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDeleteObject
			return m, nil
		}
		m.deleteActive()
		return m, nil
	case "+", "=":
		cmd := m.zoom(true)
		return m, cmd
	case "-", "_":
		cmd := m.zoom(false)
		return m, cmd
	case "n":
		cmd := m.gotoPage(1)
		return m, cmd
	case "N":
		cmd := m.gotoPage(-1)
		return m, cmd
	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		m.handlePan(key, m.getMoveSpeed(key))
		return m, nil
	}
	return m, nil
}

// handleEditKey routes typing to the focused text object through the
// session's key router.
func (m model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.session.Keys()
	var err error
	switch msg.Type {
	case tea.KeyEsc:
		if c := m.session.Controller(); c != nil {
			c.Scene().ClearActive()
		}
		m.mode = ModeNormal
		return m, nil
	case tea.KeyCtrlC:
		m.mode = ModeNormal
		return m.handleNormalKey(msg)
	case tea.KeyCtrlZ:
		m.undo()
		return m, nil
	case tea.KeyCtrlY:
		m.redo()
		return m, nil
	case tea.KeyCtrlV:
		m.pasteClipboard()
	case tea.KeyBackspace:
		err = keys.Dispatch(overlay.KeyEvent{Type: overlay.KeyBackspace})
	case tea.KeyEnter:
		err = keys.Dispatch(overlay.KeyEvent{Type: overlay.KeyRune, Rune: '\n'})
	case tea.KeySpace:
		err = keys.Dispatch(overlay.KeyEvent{Type: overlay.KeyRune, Rune: ' '})
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if err = keys.Dispatch(overlay.KeyEvent{Type: overlay.KeyRune, Rune: r}); err != nil {
				break
			}
		}
	}
	if err != nil {
		m.errorMessage = err.Error()
	}
	m.syncEditMode()
	return m, nil
}

func (m *model) startFileInput(op FileOperation, suggestion string) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.input = suggestion
}

func (m model) handleFileInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input = ""
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyCtrlV:
		if text, err := readClipboardText(); err == nil {
			m.input += strings.TrimSpace(cleanClipboardText(text))
		}
		return m, nil
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	case tea.KeyEnter:
	default:
		return m, nil
	}

	name := strings.TrimSpace(m.input)
	m.input = ""
	m.mode = ModeNormal
	if name == "" {
		return m, nil
	}
	switch m.fileOp {
	case FileOpInsertImage:
		m.insertImage(expandPath(name, homeDir()))
		return m, nil
	case FileOpExportPNG:
		return m.confirmWrite(m.config.GetSavePath(withExt(name, ".png")))
	default:
		return m.confirmWrite(m.config.GetSavePath(withExt(name, ".pdf")))
	}
}

// confirmWrite asks before replacing an existing file.
func (m model) confirmWrite(path string) (tea.Model, tea.Cmd) {
	if _, err := os.Stat(path); err == nil && m.config.Confirmations {
		m.mode = ModeConfirm
		m.confirmAction = ConfirmOverwriteFile
		m.pendingPath = path
		return m, nil
	}
	cmd := m.write(path)
	return m, cmd
}

func (m *model) write(path string) tea.Cmd {
	if m.fileOp == FileOpExportPNG {
		if err := m.exportPagePNG(path); err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.successMessage = "Saved " + path
		return nil
	}
	if m.exporting {
		m.errorMessage = "an export is already running"
		return nil
	}
	return m.startExport(path)
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirmAction
	m.mode = ModeNormal
	switch msg.String() {
	case "y", "Y":
	default:
		m.pendingPath = ""
		return m, nil
	}
	switch action {
	case ConfirmQuit:
		return m, tea.Quit
	case ConfirmDeleteObject:
		m.deleteActive()
	case ConfirmOverwriteFile:
		path := m.pendingPath
		m.pendingPath = ""
		cmd := m.write(path)
		return m, cmd
	}
	return m, nil
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		maxScroll := len(helpLines) - (m.height - 1)
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.help || (m.mode != ModeNormal && m.mode != ModeEditing) || msg.Y >= m.canvasHeight() {
		return m, nil
	}
	p := m.screenPoint(msg.X, msg.Y)
	var err error
	switch msg.Type {
	case tea.MouseLeft:
		if m.dragging {
			err = m.session.PointerMove(p)
		} else {
			m.dragging = true
			err = m.session.PointerDown(p)
		}
	case tea.MouseMotion:
		if m.dragging {
			err = m.session.PointerMove(p)
		}
	case tea.MouseRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		err = m.session.PointerUp(p)
		m.syncEditMode()
	}
	if err != nil {
		m.errorMessage = err.Error()
	}
	return m, nil
}

func (m *model) selectTool(t overlay.Tool) {
	m.dragging = false
	if _, err := m.session.SelectTool(t); err != nil {
		m.errorMessage = err.Error()
	}
}

func (m *model) insertImage(path string) {
	data, err := readImageFile(path)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	if _, err := m.session.InsertImage(data); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "Inserted " + path
	m.syncEditMode()
}

func (m *model) deleteActive() {
	if err := m.session.RemoveActive(); err != nil {
		m.errorMessage = err.Error()
	}
	m.syncEditMode()
}

func homeDir() string {
	dir, _ := os.UserHomeDir()
	return dir
}

var (
	statusStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	width := m.width
	if width < 1 {
		width = 1
	}

	var result strings.Builder
	for _, line := range m.renderPage(width, m.canvasHeight()) {
		result.WriteString(line)
		result.WriteString("\n")
	}
	result.WriteString(m.statusLine(width))
	return result.String()
}

func (m model) statusLine(width int) string {
	var status string
	switch m.mode {
	case ModeFileInput:
		prompt := map[FileOperation]string{
			FileOpExportPDF:   "Export PDF as",
			FileOpExportPNG:   "Save page PNG as",
			FileOpInsertImage: "Insert image from",
		}[m.fileOp]
		status = fmt.Sprintf("%s: %s█ (Enter to confirm, Esc to cancel)", prompt, m.input)
	case ModeConfirm:
		switch m.confirmAction {
		case ConfirmQuit:
			status = "Quit pdfink? Unsaved annotations are lost. (y/n)"
		case ConfirmDeleteObject:
			status = "Delete the selected annotation? (y/n)"
		case ConfirmOverwriteFile:
			status = fmt.Sprintf("%s exists. Overwrite? (y/n)", m.pendingPath)
		}
	default:
		pages := 0
		if doc := m.session.Document(); doc != nil {
			pages = doc.NumPages()
		}
		status = fmt.Sprintf("Mode: %s | Tool: %s | Page %d/%d | Zoom %d%%",
			m.modeString(), m.session.Tool(), m.session.PageIndex()+1, pages,
			int(m.session.Viewport().Zoom*100+0.5))
		if c := m.session.Controller(); c != nil {
			undo, redo := c.History().Depth()
			status += fmt.Sprintf(" | History %d/%d", undo-1, redo)
		}
		if m.successMessage != "" {
			status += " | " + m.successMessage
		} else if m.errorMessage == "" {
			status += " | ? for help | q to quit"
		}
	}
	line := statusStyle.Width(width).Render(status)
	if m.errorMessage != "" {
		line = statusStyle.Render(status+" | ") + errorStyle.Render("ERROR: "+m.errorMessage)
	}
	return lipgloss.NewStyle().MaxWidth(width).MaxHeight(1).Render(line)
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeEditing:
		return "TEXT"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

var helpLines = []string{
	"pdfink Help",
	"===========",
	"",
	"Tools:",
	"------",
	"  t                Add a text box and start typing into it",
	"  p                Pencil: drag with the mouse to draw",
	"  e                Eraser: paints over with the page color",
	"  b                Redact: place a redaction box (or brush, see redactstyle)",
	"  i                Insert an image from a file",
	"  s/Esc            Select: click to pick an annotation, drag to move it",
	"  d                Delete the selected annotation",
	"",
	"Text Editing:",
	"-------------",
	"  typing           Edits the selected text, one undo step per key",
	"  Backspace        Delete the last character",
	"  Ctrl+V           Paste clipboard text",
	"  Ctrl+Z/Ctrl+Y    Undo/redo while typing",
	"  Esc              Stop editing",
	"",
	"View:",
	"-----",
	"  h/←/j/↓/k/↑/l/→  Pan around the page",
	"  Shift+h/j/k/l    Pan faster",
	"  +/-              Zoom in/out",
	"  n/N              Next/previous page",
	"",
	"Files:",
	"------",
	"  w                Export the annotated PDF",
	"  P                Save the current page as PNG",
	"",
	"General:",
	"  u                Undo",
	"  U                Redo",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
	"",
	"Settings live in ~/.pdfinkrc (savedirectory, confirmations, brushcolor,",
	"brushwidth, erasewidth, redactstyle, redactopacity, exportscale, flatten,",
	"logfile).",
}

func (m model) helpView() string {
	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	start := m.helpScroll
	if start > len(helpLines) {
		start = len(helpLines)
	}
	end := start + visible
	if end > len(helpLines) {
		end = len(helpLines)
	}
	return strings.Join(helpLines[start:end], "\n") + "\n" + statusStyle.Render("j/k to scroll, any other key to close")
}
