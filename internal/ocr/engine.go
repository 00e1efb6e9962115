// Package ocr defines the contract between the parsing pipeline and OCR providers.
package ocr

import (
	"context"

	"github.com/Lllllllleong/chinesepdfparser/internal/models"
)

// Input is a single rendered page submitted for recognition.
type Input struct {
	// Page is the 1-based PDF page number the image was rendered from.
	Page int
	// PNG is the encoded page image.
	PNG []byte
	// DPI is the resolution the page was rendered at.
	DPI int
	// Languages are Tesseract trained-data names, e.g. "chi_tra".
	Languages []string
	// PageSegMode is the Tesseract page segmentation mode. Zero leaves the engine default.
	PageSegMode int
	// Variables are engine-specific settings passed through unchanged.
	Variables map[string]string
	// Layout tells prompt-driven engines which reading direction to expect.
	Layout models.Layout
}

// Result is the recognized text of one Input.
type Result struct {
	Text string
	// Confidence is the mean recognition confidence on a 0-100 scale, or 0 when unknown.
	Confidence float64
}

// Engine recognizes text in page images.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

// Settings are the fixed recognition parameters for a layout.
type Settings struct {
	Languages   []string
	PageSegMode int
	Variables   map[string]string
}

// SettingsFor returns the recognition parameters used for a layout: a single
// uniform block of Traditional Chinese and English for horizontal pages, and a
// single vertical block with the vertical Traditional Chinese model otherwise.
func SettingsFor(layout models.Layout) Settings {
	if layout == models.LayoutVertical {
		return Settings{
			Languages:   []string{"chi_tra_vert"},
			PageSegMode: 5,
		}
	}
	return Settings{
		Languages:   []string{"chi_tra", "eng"},
		PageSegMode: 6,
		Variables:   map[string]string{"preserve_interword_spaces": "1"},
	}
}
