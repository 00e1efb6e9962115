// Package app wires the concrete PDF, raster and OCR back ends into services.Parser.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/chinesepdfparser/internal/gcp"
	"github.com/Lllllllleong/chinesepdfparser/internal/layout"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/Lllllllleong/chinesepdfparser/internal/ocr"
	"github.com/Lllllllleong/chinesepdfparser/internal/ocr/gemini"
	"github.com/Lllllllleong/chinesepdfparser/internal/ocr/tesseract"
	"github.com/Lllllllleong/chinesepdfparser/internal/pdfinfo"
	"github.com/Lllllllleong/chinesepdfparser/internal/raster"
	"github.com/Lllllllleong/chinesepdfparser/internal/services"
)

// Builder creates Parsers that share one OCR engine.
type Builder struct {
	config services.ParserConfig
	engine ocr.Engine
	vertex *gcp.VertexClient
}

// NewBuilder creates the OCR engine named by config.OCREngine.
func NewBuilder(ctx context.Context, config services.ParserConfig) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b := &Builder{config: config}
	switch config.OCREngine {
	case "gemini":
		vertex, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion, config.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
		}
		b.vertex = vertex
		b.engine = gemini.New(vertex.OCRModel)
	default:
		if config.TessdataPrefix == "" {
			slog.Warn("TESSDATA_PREFIX is not set; Tesseract will look for trained data in its default location.")
		}
		b.engine = tesseract.New(config.TessdataPrefix)
	}
	slog.Info("OCR engine ready.", "engine", b.engine.Name(), "dpi", config.DPI, "workers", config.Workers)
	return b, nil
}

// Parser returns a Parser for the given layout.
func (b *Builder) Parser(l models.Layout) (*services.Parser, error) {
	config := b.config
	config.Layout = l
	return services.NewParser(config, services.ParserDeps{
		Inspector:  pdfinfo.NewInspector(),
		Extractor:  layout.NewExtractor(l),
		Rasterizer: raster.NewRasterizer(),
		Engine:     b.engine,
	})
}

// Close releases the Vertex AI client, if one was created.
func (b *Builder) Close() error {
	if b.vertex != nil {
		return b.vertex.Close()
	}
	return nil
}
