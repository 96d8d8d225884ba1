package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pdfink/overlay"
)

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".pdfinkrc")
	rc := `# pdfink settings
savedirectory = ~/exports
confirmations=false
brushcolor=#ff0000
brushwidth=3.5
erasewidth=-1
redactstyle=stroke
redactopacity=2
exportscale=3
flatten=RASTER
logfile=~/pdfink.log
unknown=value
not a setting
`
	if err := os.WriteFile(path, []byte(rc), 0644); err != nil {
		t.Fatal(err)
	}

	got := loadConfigFile(path, dir)
	want := defaultConfig()
	want.SaveDirectory = filepath.Join(dir, "exports")
	want.Confirmations = false
	want.BrushColor = overlay.Color{R: 255, A: 255}
	want.BrushWidth = 3.5
	want.RedactStyle = overlay.RedactStroke
	want.ExportScale = 3
	want.Flatten = "raster"
	want.LogFile = filepath.Join(dir, "pdfink.log")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if got.PreserveContent() {
		t.Error("raster flattening should not preserve content")
	}

	tools := got.ToolConfig()
	if tools.BrushColor != want.BrushColor || tools.BrushWidth != 3.5 || tools.RedactStyle != overlay.RedactStroke {
		t.Errorf("ToolConfig = %+v", tools)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	got := loadConfigFile(filepath.Join(t.TempDir(), "nope"), "")
	if diff := cmp.Diff(defaultConfig(), got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if !got.PreserveContent() {
		t.Error("defaults should preserve content")
	}
}

func TestGetSavePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	c := &Config{SaveDirectory: dir}
	if got := c.GetSavePath("a.pdf"); got != filepath.Join(dir, "a.pdf") {
		t.Errorf("GetSavePath = %q", got)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("save directory not created: %v", err)
	}
	if got := c.GetSavePath("/abs/a.pdf"); got != "/abs/a.pdf" {
		t.Errorf("absolute path rewritten to %q", got)
	}
	if got := (&Config{}).GetSavePath("a.pdf"); got != "a.pdf" {
		t.Errorf("GetSavePath without directory = %q", got)
	}
}

func TestOpenLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfink.log")
	c := &Config{LogFile: path}
	logger, closeLog, err := c.openLog()
	if err != nil {
		t.Fatal(err)
	}
	logger.Printf("hello")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestRequirePageContent(t *testing.T) {
	tests := []struct {
		name         string
		flatten      string
		rendersPages bool
		changed      bool
		want         string
	}{
		{"raster with renderer", "raster", true, false, "raster"},
		{"raster without renderer", "raster", false, true, "preserve"},
		{"preserve without renderer", "preserve", false, false, "preserve"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Flatten: tt.flatten}
			if got := c.requirePageContent(tt.rendersPages); got != tt.changed {
				t.Errorf("changed = %v, want %v", got, tt.changed)
			}
			if c.Flatten != tt.want {
				t.Errorf("flatten = %q, want %q", c.Flatten, tt.want)
			}
		})
	}
}
