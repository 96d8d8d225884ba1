package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"pdfink/overlay"
)

// sniff returns the MIME type of data.
func sniff(data []byte) string {
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return mime
}

// readImageFile loads an asset for insertion. Anything that is clearly
// not an image is refused here; undetected types go to the decoder.
func readImageFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch mime := sniff(data); {
	case strings.HasPrefix(mime, "image/"), mime == "application/octet-stream":
		return data, nil
	default:
		return nil, fmt.Errorf("%s: unsupported file type %s", path, mime)
	}
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// pasteClipboard appends the clipboard text to the focused text object.
func (m *model) pasteClipboard() {
	text, err := readClipboardText()
	if err != nil {
		m.errorMessage = "clipboard: " + err.Error()
		return
	}
	text = cleanClipboardText(text)
	if text == "" {
		return
	}
	if err := m.session.Keys().Dispatch(overlay.KeyEvent{Type: overlay.KeyPaste, Text: text}); err != nil {
		m.errorMessage = err.Error()
	}
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div"))
}

// extractTextFromRTF keeps the plain text of an RTF document. Paragraph
// and line controls become newlines, hex escapes are decoded.
func extractTextFromRTF(rtf string) string {
	var result strings.Builder
	result.Grow(len(rtf))
	for i := 0; i < len(rtf); i++ {
		b := rtf[i]
		switch {
		case b == '{' || b == '}':
			continue
		case b == '\\' && i+1 < len(rtf):
			next := rtf[i+1]
			switch {
			case next == '\'' && i+3 < len(rtf):
				if val, err := strconv.ParseUint(rtf[i+2:i+4], 16, 8); err == nil {
					result.WriteByte(byte(val))
				}
				i += 3
			case next == '\\' || next == '{' || next == '}':
				result.WriteByte(next)
				i++
			case isLetter(next):
				j := i + 1
				for j < len(rtf) && isLetter(rtf[j]) {
					j++
				}
				word := rtf[i+1 : j]
				for j < len(rtf) && (rtf[j] == '-' || (rtf[j] >= '0' && rtf[j] <= '9')) {
					j++
				}
				if j < len(rtf) && rtf[j] == ' ' {
					j++
				}
				switch word {
				case "par", "line":
					result.WriteByte('\n')
				case "tab":
					result.WriteByte('\t')
				}
				i = j - 1
			default:
				i++
			}
		case b == '\\':
			continue
		case b >= 32 || b == '\n' || b == '\t':
			result.WriteByte(b)
		}
	}
	return result.String()
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func extractTextFromHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}
	return strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(result.String())
}

// cleanClipboardText reduces rich clipboard content to plain text with
// \n line endings and no control characters.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	switch {
	case isRTF(text):
		text = extractTextFromRTF(text)
	case isHTML(text):
		text = extractTextFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return result.String()
}
