package models

import (
	"encoding/json"
	"math"
	"time"
)

// Block types emitted in a page report.
const (
	BlockTypeText   = "text"
	BlockTypeFigure = "figure"
	BlockTypeOCR    = "ocr_text"
)

// Report is the full result of a hybrid parse, serialized as the JSON report.
type Report struct {
	Metadata Metadata     `json:"metadata"`
	Pages    []PageResult `json:"pages"`
}

// Metadata describes the parsed file and the run that produced the report.
type Metadata struct {
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	FileHash     string    `json:"file_hash"`
	PageCount    int       `json:"page_count"`
	OCRPageCount int       `json:"ocr_page_count"`
	Layout       string    `json:"layout"`
	OCREngine    string    `json:"ocr_engine"`
	DPI          int       `json:"dpi"`
	RunID        string    `json:"run_id"`
	ParsedAt     time.Time `json:"parsed_at"`
}

// PageResult holds the layout blocks and OCR output of a single page.
// Both slices are always non-nil so they serialize as arrays.
type PageResult struct {
	Page       int         `json:"page"`
	TextBlocks []TextBlock `json:"text_blocks"`
	OCRContent []OCRBlock  `json:"ocr_content"`
}

// HasTextContent reports whether any text block carries non-empty content.
func (p PageResult) HasTextContent() bool {
	for _, b := range p.TextBlocks {
		if b.Type == BlockTypeText && b.Content != "" {
			return true
		}
	}
	return false
}

// BBox is x0, y0, x1, y1 with the origin in the top-left corner of the page.
type BBox [4]float64

// NewBBox converts PDF user-space coordinates (bottom-left origin) into a
// top-left origin box rounded to two decimals.
func NewBBox(x0, y0, x1, y1, pageHeight float64) *BBox {
	return &BBox{
		round2(x0),
		round2(pageHeight - y1),
		round2(x1),
		round2(pageHeight - y0),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FontSpec is a font name and size pair seen inside a text block.
type FontSpec struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// TextBlock is a layout element extracted from the PDF text layer.
// Text blocks always serialize their content, even when cleaning left it
// empty; figures only carry their name.
type TextBlock struct {
	Type    string     `json:"type"`
	Content string     `json:"content"`
	Name    string     `json:"name,omitempty"`
	BBox    *BBox      `json:"bbox,omitempty"`
	Fonts   []FontSpec `json:"fonts,omitempty"`
}

type figureJSON struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	BBox *BBox  `json:"bbox,omitempty"`
}

func (b TextBlock) MarshalJSON() ([]byte, error) {
	if b.Type == BlockTypeFigure {
		return json.Marshal(figureJSON{Type: b.Type, Name: b.Name, BBox: b.BBox})
	}
	type plain TextBlock
	return json.Marshal(plain(b))
}

// OCRBlock holds the paragraphs recovered by OCR for a page.
type OCRBlock struct {
	Type       string   `json:"type"`
	Content    []string `json:"content"`
	Confidence float64  `json:"confidence"`
}
