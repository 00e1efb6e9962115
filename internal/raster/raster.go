// Package raster renders PDF pages to PNG images using MuPDF through go-fitz.
package raster

import (
	"fmt"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// Document renders pages of an open PDF. Page numbers are 1-based.
type Document interface {
	PagePNG(page int, dpi int) ([]byte, error)
	Close() error
}

// Rasterizer opens PDFs for rendering.
type Rasterizer struct{}

// NewRasterizer returns a MuPDF-backed Rasterizer.
func NewRasterizer() *Rasterizer { return &Rasterizer{} }

// Open opens the PDF at path for rendering.
func (r *Rasterizer) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for rendering: %w", path, err)
	}
	return &fitzDocument{doc: doc}, nil
}

// fitzDocument serializes access because a MuPDF context is not safe for
// concurrent rendering.
type fitzDocument struct {
	mu  sync.Mutex
	doc *fitz.Document
}

func (d *fitzDocument) PagePNG(page int, dpi int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if page < 1 || page > d.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, d.doc.NumPage())
	}
	img, err := d.doc.ImagePNG(page-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d at %d dpi: %w", page, dpi, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Close()
}
