// Package pdfinfo validates PDF structure and reports basic document facts using pdfcpu.
package pdfinfo

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info holds the facts pdfcpu reports about a document.
type Info struct {
	PageCount int
}

// Inspector validates PDFs in relaxed mode, which tolerates the minor
// structural defects common in scanned documents.
type Inspector struct {
	conf *model.Configuration
}

// NewInspector returns an Inspector using pdfcpu's default configuration in relaxed validation mode.
func NewInspector() *Inspector {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return &Inspector{conf: cfg}
}

// Inspect validates the file at path and returns its page count.
func (i *Inspector) Inspect(path string) (Info, error) {
	if err := api.ValidateFile(path, i.conf); err != nil {
		return Info{}, fmt.Errorf("pdfcpu validation failed: %w", err)
	}
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to get page count: %w", err)
	}
	return Info{PageCount: pageCount}, nil
}
