// Package pdfdoc adapts PDF files to the overlay engine: reading page
// geometry, writing the annotated output and standing in for a page
// rasterizer.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdi"

	"pdfink/overlay"
)

// pageBox is the box that defines the page rectangle everywhere in pdfink.
const pageBox = "/MediaBox"

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts like a PDF file. Some writers put
// garbage before the header, so the first kilobyte is searched.
func IsPDF(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, pdfMagic)
}

// Load reads the page count and the intrinsic size of every page.
func Load(data []byte) (*overlay.Document, error) {
	if !IsPDF(data) {
		return nil, &overlay.InputError{Op: "load pdf", Err: errors.New("not a PDF file")}
	}
	pages, err := readPages(data)
	if err != nil {
		return nil, &overlay.DecodeError{Op: "load pdf", Err: err}
	}
	return overlay.NewDocument(data, pages)
}

// readPages asks gofpdi for the page boxes. gofpdi panics on malformed
// input, so panics are turned into errors here.
func readPages(data []byte) (pages []overlay.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%v", r)
		}
	}()

	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))
	imp.SetSourceStream(&rs)

	n := imp.GetNumPages()
	if n <= 0 {
		return nil, errors.New("document has no pages")
	}
	sizes := imp.GetPageSizes()
	pages = make([]overlay.Page, n)
	for i := range pages {
		box, ok := sizes[i+1][pageBox]
		if !ok {
			return nil, fmt.Errorf("page %d has no %s", i+1, pageBox)
		}
		pages[i] = overlay.Page{Index: i, Width: box["w"], Height: box["h"]}
	}
	return pages, nil
}
