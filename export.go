package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fogleman/gg"

	"pdfink/overlay"
)

// defaultExportName suggests an output name next to the source document.
func (m *model) defaultExportName(ext string) string {
	base := strings.TrimSuffix(filepath.Base(m.source), filepath.Ext(m.source))
	if ext == ".png" {
		return fmt.Sprintf("%s-page%d%s", base, m.session.PageIndex()+1, ext)
	}
	return base + "-annotated" + ext
}

func withExt(name, ext string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

// startExport flattens the document in the background. The scenes are
// snapshotted now, so editing can go on while the file is written.
func (m *model) startExport(path string) tea.Cmd {
	job, err := m.session.ExportJob(m.ctx)
	if err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.exporting = true
	m.successMessage = "Exporting..."
	return func() tea.Msg {
		res, err := job()
		if err == nil {
			err = os.WriteFile(path, res.Bytes, 0644)
		}
		return exportMsg{path: path, res: res, err: err}
	}
}

func (m *model) finishExport(msg exportMsg) {
	m.exporting = false
	m.successMessage = ""
	if msg.err != nil {
		m.log.Printf("export %s: %v", msg.path, msg.err)
		m.errorMessage = msg.err.Error()
		return
	}
	for _, w := range msg.res.Warnings {
		m.log.Printf("export %s: %v", msg.path, w)
	}
	annotated := msg.res.Pages - len(msg.res.Warnings)
	m.successMessage = fmt.Sprintf("Exported %d pages (%d annotated) to %s", msg.res.Pages, annotated, msg.path)
}

// exportPagePNG writes the current page with its annotations as a PNG at
// the export scale.
func (m *model) exportPagePNG(filename string) error {
	if !m.rendersPages {
		return errors.New("page rendering is unavailable, the PNG would show a blank page")
	}
	page, ok := m.session.Page()
	if !ok {
		return fmt.Errorf("no page open")
	}
	scale := m.config.ExportScale
	layer, err := overlay.RenderScene(m.session.Controller().Scene().Objects(), page, scale, m.session.Assets())
	if err != nil {
		return err
	}
	base, err := m.rasterizer.RenderPage(m.ctx, m.session.Document().Bytes(), page.Index, scale)
	if err != nil {
		return fmt.Errorf("render page %d: %w", page.Index+1, err)
	}
	dc := gg.NewContextForImage(overlay.Composite(base, layer))
	return dc.SavePNG(filename)
}
