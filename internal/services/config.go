package services

import (
	"fmt"

	"github.com/Lllllllleong/chinesepdfparser/internal/gcp"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
)

// Defaults for ParserConfig.
const (
	DefaultDPI         = 400
	DefaultWorkers     = 4
	DefaultOCREngine   = "tesseract"
	DefaultReportTitle = "《東坡黃州詞》"
)

// ParserConfig holds all configuration for the hybrid parser.
type ParserConfig struct {
	Layout         models.Layout
	DPI            int
	Workers        int
	OCREngine      string
	TessdataPrefix string
	ReportTitle    string

	// Used only by the gemini OCR engine.
	ProjectID      string
	VertexAIRegion string
	GeminiModel    string
}

// LoadParserConfig loads and validates the parser configuration from the environment.
func LoadParserConfig() (*ParserConfig, error) {
	config, err := ParserConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ParserConfigFromEnv reads the parser configuration from the environment
// without validating it, so callers can apply overrides before Validate.
// Only malformed values are reported.
func ParserConfigFromEnv() (*ParserConfig, error) {
	layout, err := models.ParseLayout(gcp.GetEnv("PDF_LAYOUT", string(models.LayoutHorizontal)))
	if err != nil {
		return nil, fmt.Errorf("PDF_LAYOUT: %w", err)
	}
	dpi, err := gcp.GetEnvInt("OCR_DPI", DefaultDPI)
	if err != nil {
		return nil, err
	}
	workers, err := gcp.GetEnvInt("OCR_WORKERS", DefaultWorkers)
	if err != nil {
		return nil, err
	}

	config := &ParserConfig{
		Layout:         layout,
		DPI:            dpi,
		Workers:        workers,
		OCREngine:      gcp.GetEnv("OCR_ENGINE", DefaultOCREngine),
		TessdataPrefix: gcp.GetEnv("TESSDATA_PREFIX", ""),
		ReportTitle:    gcp.GetEnv("REPORT_TITLE", DefaultReportTitle),
		ProjectID:      gcp.GetEnv("PROJECT_ID", ""),
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:    gcp.GetEnv("GEMINI_MODEL", gcp.DefaultOCRModel),
	}
	return config, nil
}

// Validate checks the configuration for values the parser cannot work with.
func (c *ParserConfig) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	switch c.OCREngine {
	case "tesseract":
	case "gemini":
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the gemini OCR engine")
		}
	default:
		return fmt.Errorf("unknown OCR engine %q: want tesseract or gemini", c.OCREngine)
	}
	return nil
}
