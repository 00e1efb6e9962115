// Package layout extracts positioned text blocks from a PDF's text layer.
package layout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/ledongthuc/pdf"
)

// Default page size in points, used when no MediaBox can be found.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Block kinds.
const (
	KindText   = "text"
	KindFigure = "figure"
)

// Font is a font name and size pair.
type Font struct {
	Name string
	Size float64
}

// Block is a text or figure element of a page. Coordinates are PDF user space
// (bottom-left origin). Figures only carry their XObject name.
type Block struct {
	Kind           string
	Text           string
	Name           string
	X0, Y0, X1, Y1 float64
	Fonts          []Font
}

// Page is the layout of one page. Top is the upper edge of the MediaBox and is
// the reference for converting to a top-left origin.
type Page struct {
	Number int
	Width  float64
	Top    float64
	Blocks []Block
}

// Extractor reads the text layer of a PDF using ledongthuc/pdf.
type Extractor struct {
	layout    models.Layout
	gapFactor float64
}

// NewExtractor returns an Extractor that reads rows for horizontal documents and
// right-to-left columns for vertical ones.
func NewExtractor(layout models.Layout) *Extractor {
	return &Extractor{layout: layout, gapFactor: 0.5}
}

// Extract returns the layout of every page in the PDF at path, in page order.
func (e *Extractor) Extract(ctx context.Context, path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := e.extractPage(r.Page(i), i)
		if err != nil {
			return nil, err
		}
		slog.Debug("Extracted page layout.", "page", i, "blockCount", len(page.Blocks))
		pages = append(pages, page)
	}
	return pages, nil
}

func (e *Extractor) extractPage(p pdf.Page, number int) (page Page, err error) {
	page = Page{Number: number, Width: defaultPageWidth, Top: defaultPageHeight}
	if p.V.IsNull() {
		return page, nil
	}
	// ledongthuc/pdf reports malformed content streams by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read page %d: %v", number, r)
		}
	}()

	page.Width, page.Top = mediaBox(p.V)

	content := p.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{text: t.S, font: t.Font, size: t.FontSize, x: t.X, y: t.Y, w: t.W})
	}

	var lines []line
	if e.layout == models.LayoutVertical {
		lines = groupColumns(glyphs)
	} else {
		lines = groupRows(glyphs)
	}
	page.Blocks = groupBlocks(lines, e.layout == models.LayoutVertical, e.gapFactor)
	page.Blocks = append(page.Blocks, figures(p)...)
	return page, nil
}

// mediaBox returns the page width and the top edge of its MediaBox, following
// the Parent chain for inherited boxes.
func mediaBox(v pdf.Value) (width, top float64) {
	for depth := 0; !v.IsNull() && depth < 32; depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			llx, lly := box.Index(0).Float64(), box.Index(1).Float64()
			urx, ury := box.Index(2).Float64(), box.Index(3).Float64()
			if urx > llx && ury > lly {
				return urx - llx, ury
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}

func figures(p pdf.Page) []Block {
	xobjects := p.Resources().Key("XObject")
	var blocks []Block
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			blocks = append(blocks, Block{Kind: KindFigure, Name: name})
		}
	}
	return blocks
}
