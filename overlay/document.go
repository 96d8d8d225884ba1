package overlay

import "errors"

// Page is one page of the source document in document units (points).
type Page struct {
	Index  int
	Width  float64
	Height float64
}

// Document is a handle to the host's source bytes. The core never
// modifies the bytes.
type Document struct {
	data  []byte
	pages []Page
}

func NewDocument(data []byte, pages []Page) (*Document, error) {
	if len(data) == 0 {
		return nil, &InputError{Op: "open document", Err: errors.New("empty document")}
	}
	if len(pages) == 0 {
		return nil, &InputError{Op: "open document", Err: errors.New("document has no pages")}
	}
	ps := make([]Page, len(pages))
	for i, p := range pages {
		if p.Width <= 0 || p.Height <= 0 {
			return nil, inputErr("open document", "page %d has size %gx%g", i+1, p.Width, p.Height)
		}
		p.Index = i
		ps[i] = p
	}
	return &Document{data: data, pages: ps}, nil
}

func (d *Document) Bytes() []byte { return d.data }
func (d *Document) NumPages() int { return len(d.pages) }
func (d *Document) Pages() []Page { return append([]Page(nil), d.pages...) }

func (d *Document) Page(i int) (Page, bool) {
	if i < 0 || i >= len(d.pages) {
		return Page{}, false
	}
	return d.pages[i], true
}
