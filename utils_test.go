package main

import "testing"

func TestCleanClipboardText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"control", "a\x00b\x07c", "abc"},
		{"rtf", `{\rtf1\ansi{\fonttbl\f0 Helvetica;}\f0\fs24 Hello\par World \'41\}}`, "Helvetica;Hello\nWorld A}"},
		{"html", "<html><body><div>a &amp; b&nbsp;&lt;c&gt;</div></body></html>", "a & b <c>"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanClipboardText(tt.in); got != tt.want {
				t.Errorf("cleanClipboardText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithExt(t *testing.T) {
	tests := []struct{ name, ext, want string }{
		{"out", ".pdf", "out.pdf"},
		{"out.PDF", ".pdf", "out.PDF"},
		{"out.pdf", ".png", "out.pdf.png"},
	}
	for _, tt := range tests {
		if got := withExt(tt.name, tt.ext); got != tt.want {
			t.Errorf("withExt(%q, %q) = %q, want %q", tt.name, tt.ext, got, tt.want)
		}
	}
}

func TestSniff(t *testing.T) {
	if got := sniff([]byte("%PDF-1.4\n")); got != "application/pdf" {
		t.Errorf("sniff pdf = %q", got)
	}
	if got := sniff([]byte("hello")); got != "text/plain" {
		t.Errorf("sniff text = %q", got)
	}
}
