package main

import (
	"bufio"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pdfink/overlay"
)

type Config struct {
	SaveDirectory string
	Confirmations bool
	BrushColor    overlay.Color
	BrushWidth    float64
	EraseWidth    float64
	RedactStyle   overlay.RedactStyle
	RedactOpacity float64
	ExportScale   float64
	Flatten       string // preserve or raster
	LogFile       string
}

func defaultConfig() *Config {
	tools := overlay.DefaultToolConfig()
	return &Config{
		SaveDirectory: "",
		Confirmations: true,
		BrushColor:    tools.BrushColor,
		BrushWidth:    tools.BrushWidth,
		EraseWidth:    tools.EraseWidth,
		RedactStyle:   tools.RedactStyle,
		RedactOpacity: tools.RedactOpacity,
		ExportScale:   overlay.DefaultExportScale,
		Flatten:       "preserve",
	}
}

func loadConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultConfig()
	}
	return loadConfigFile(filepath.Join(homeDir, ".pdfinkrc"), homeDir)
}

// loadConfigFile reads key=value lines. Unknown keys and bad values are
// ignored and keep their defaults.
func loadConfigFile(configPath, homeDir string) *Config {
	config := defaultConfig()

	file, err := os.Open(configPath)
	if err != nil {
		return config
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "savedirectory", "save_directory", "savedir":
			config.SaveDirectory = expandPath(value, homeDir)
		case "confirmations", "confirm":
			config.Confirmations = strings.ToLower(value) == "true"
		case "brushcolor", "brush_color":
			if c, err := overlay.ParseColor(value); err == nil {
				config.BrushColor = c
			}
		case "brushwidth", "brush_width":
			setPositive(&config.BrushWidth, value)
		case "erasewidth", "erase_width":
			setPositive(&config.EraseWidth, value)
		case "redactstyle", "redact_style":
			switch strings.ToLower(value) {
			case "shape":
				config.RedactStyle = overlay.RedactShape
			case "stroke":
				config.RedactStyle = overlay.RedactStroke
			}
		case "redactopacity", "redact_opacity":
			if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 && f <= 1 {
				config.RedactOpacity = f
			}
		case "exportscale", "export_scale":
			setPositive(&config.ExportScale, value)
		case "flatten":
			switch v := strings.ToLower(value); v {
			case "preserve", "raster":
				config.Flatten = v
			}
		case "logfile", "log_file":
			config.LogFile = expandPath(value, homeDir)
		}
	}

	return config
}

func setPositive(dst *float64, value string) {
	if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
		*dst = f
	}
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

func (c *Config) ToolConfig() overlay.ToolConfig {
	tools := overlay.DefaultToolConfig()
	tools.BrushColor = c.BrushColor
	tools.BrushWidth = c.BrushWidth
	tools.EraseWidth = c.EraseWidth
	tools.RedactStyle = c.RedactStyle
	tools.RedactOpacity = c.RedactOpacity
	return tools
}

// PreserveContent reports whether exports keep the original page content
// beneath the annotations instead of flattening to an image.
func (c *Config) PreserveContent() bool { return c.Flatten != "raster" }

// requirePageContent switches raster flattening back to preserving the
// page content when pages cannot be rendered, since raster export would
// replace every annotated page with blank paper. It reports whether the
// setting changed.
func (c *Config) requirePageContent(rendersPages bool) bool {
	if rendersPages || c.PreserveContent() {
		return false
	}
	c.Flatten = "preserve"
	return true
}

// openLog returns the logger named by the config. The TUI owns the
// terminal, so without a log file nothing is logged.
func (c *Config) openLog() (*log.Logger, func() error, error) {
	if c.LogFile == "" {
		return log.New(io.Discard, "", 0), func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "pdfink ", log.LstdFlags), f.Close, nil
}
