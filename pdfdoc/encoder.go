package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"pdfink/overlay"
)

// Encoder writes the output PDF with gofpdf. Each original page is
// imported as a form template, and the page's annotation layer is drawn
// over the full page box as a PNG image.
//
// In raster mode an annotated page's layer is the complete flattened page
// and replaces the original; pages without a layer are still imported.
type Encoder struct {
	src      []byte
	preserve bool
}

func NewEncoder(src []byte, preserve bool) *Encoder {
	return &Encoder{src: src, preserve: preserve}
}

// EncoderFor returns an overlay.EncoderFunc bound to a flatten mode.
func EncoderFor(preserve bool) overlay.EncoderFunc {
	return func(doc *overlay.Document) (overlay.Encoder, error) {
		return NewEncoder(doc.Bytes(), preserve), nil
	}
}

func (e *Encoder) PreservesContent() bool { return e.preserve }

// ComposePage encodes the layer. A nil layer re-emits the page as is.
func (e *Encoder) ComposePage(p overlay.Page, layer image.Image) (overlay.PagePart, error) {
	part := overlay.PagePart{Page: p}
	if layer == nil {
		return part, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, layer); err != nil {
		return part, fmt.Errorf("encode layer: %w", err)
	}
	part.Layer = buf.Bytes()
	return part, nil
}

// Assemble writes the parts in order into a new document. Each output
// page has the size of its source page.
func (e *Encoder) Assemble(parts []overlay.PagePart) (out []byte, err error) {
	if len(parts) == 0 {
		return nil, errors.New("no pages to write")
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("import original page: %v", r)
		}
	}()

	first := parts[0].Page
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	imp := gofpdi.NewImporter()
	// gofpdi keys its readers by the stream pointer, so every page must
	// come through the same one.
	rs := io.ReadSeeker(bytes.NewReader(e.src))

	for i, part := range parts {
		w, h := part.Page.Width, part.Page.Height
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		if e.preserve || part.Layer == nil {
			tpl := imp.ImportPageFromStream(pdf, &rs, part.Page.Index+1, pageBox)
			imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
		}
		if part.Layer != nil {
			name := fmt.Sprintf("layer-%d", i)
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(part.Layer))
			pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("page %d: %w", part.Page.Index+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
