package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lllllllleong/chinesepdfparser/internal/layout"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/Lllllllleong/chinesepdfparser/internal/ocr"
	"github.com/Lllllllleong/chinesepdfparser/internal/pdfinfo"
	"github.com/Lllllllleong/chinesepdfparser/internal/raster"
	"github.com/Lllllllleong/chinesepdfparser/internal/textclean"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LayoutExtractor reads the text layer of a PDF.
type LayoutExtractor interface {
	Extract(ctx context.Context, path string) ([]layout.Page, error)
}

// DocumentInspector validates a PDF's structure.
type DocumentInspector interface {
	Inspect(path string) (pdfinfo.Info, error)
}

// PageRasterizer renders PDF pages to images.
type PageRasterizer interface {
	Open(path string) (raster.Document, error)
}

// ParserDeps are the collaborators a Parser drives.
type ParserDeps struct {
	Inspector  DocumentInspector
	Extractor  LayoutExtractor
	Rasterizer PageRasterizer
	Engine     ocr.Engine
}

// Parser runs the hybrid pipeline: layout extraction first, OCR for pages
// without a usable text layer.
type Parser struct {
	config   ParserConfig
	deps     ParserDeps
	cleaner  *textclean.Cleaner
	settings ocr.Settings

	now      func() time.Time
	newRunID func() string
}

func NewParser(config ParserConfig, deps ParserDeps) (*Parser, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser config: %w", err)
	}
	if deps.Inspector == nil || deps.Extractor == nil || deps.Rasterizer == nil || deps.Engine == nil {
		return nil, errors.New("parser requires an inspector, extractor, rasterizer and OCR engine")
	}
	return &Parser{
		config:   config,
		deps:     deps,
		cleaner:  textclean.NewCleaner(config.Layout),
		settings: ocr.SettingsFor(config.Layout),
		now:      time.Now,
		newRunID: uuid.NewString,
	}, nil
}

// Cleaner returns the text cleaner for the parser's layout.
func (p *Parser) Cleaner() *textclean.Cleaner { return p.cleaner }

// Config returns the parser's configuration.
func (p *Parser) Config() ParserConfig { return p.config }

// Validate checks that path exists, is a regular file and has a .pdf extension.
func (p *Parser) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	return nil
}

// HybridParse parses the PDF at path into a report.
func (p *Parser) HybridParse(ctx context.Context, path string) (*models.Report, error) {
	runID := p.newRunID()
	logCtx := slog.With("file", path, "runId", runID, "layout", p.config.Layout)
	logCtx.Info("Starting hybrid parse.")

	if err := p.Validate(path); err != nil {
		logCtx.Error("Input validation failed", "error", err)
		return nil, err
	}
	info, err := p.deps.Inspector.Inspect(path)
	if err != nil {
		logCtx.Error("PDF structure validation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	fileHash, err := calculateFileHash(path)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	pages, err := p.deps.Extractor.Extract(ctx, path)
	if err != nil {
		logCtx.Error("Layout extraction failed", "error", err)
		return nil, fmt.Errorf("layout extraction failed: %w", err)
	}
	if len(pages) != info.PageCount {
		logCtx.Warn("Page count mismatch between validator and layout extractor.", "validator", info.PageCount, "extractor", len(pages))
	}

	results := make([]models.PageResult, len(pages))
	var needsOCR []int
	for i, page := range pages {
		results[i] = p.convertPage(page)
		if !results[i].HasTextContent() {
			needsOCR = append(needsOCR, i)
		}
	}
	logCtx.Info("Layout extraction complete.", "pageCount", len(pages), "ocrPages", len(needsOCR))

	if len(needsOCR) > 0 {
		numbers := make([]int, len(needsOCR))
		for j, idx := range needsOCR {
			numbers[j] = results[idx].Page
		}
		recognized, err := p.runOCR(ctx, logCtx, path, numbers)
		if err != nil {
			return nil, err
		}
		for j, idx := range needsOCR {
			results[idx].OCRContent = p.ocrBlocks(recognized[j])
		}
	}

	report := &models.Report{
		Metadata: models.Metadata{
			FileName:     filepath.Base(path),
			FileSize:     stat.Size(),
			FileHash:     fileHash,
			PageCount:    info.PageCount,
			OCRPageCount: len(needsOCR),
			Layout:       string(p.config.Layout),
			OCREngine:    p.deps.Engine.Name(),
			DPI:          p.config.DPI,
			RunID:        runID,
			ParsedAt:     p.now().UTC(),
		},
		Pages: results,
	}
	logCtx.Info("Hybrid parse complete.", "pageCount", report.Metadata.PageCount, "ocrPageCount", report.Metadata.OCRPageCount)
	return report, nil
}

// convertPage cleans the text blocks of a layout page. Blocks whose raw text is
// blank are dropped; figures are kept as named references.
func (p *Parser) convertPage(page layout.Page) models.PageResult {
	result := models.PageResult{
		Page:       page.Number,
		TextBlocks: []models.TextBlock{},
		OCRContent: []models.OCRBlock{},
	}
	for _, b := range page.Blocks {
		switch b.Kind {
		case layout.KindFigure:
			result.TextBlocks = append(result.TextBlocks, models.TextBlock{
				Type: models.BlockTypeFigure,
				Name: b.Name,
			})
		case layout.KindText:
			if strings.TrimSpace(b.Text) == "" {
				continue
			}
			block := models.TextBlock{
				Type:    models.BlockTypeText,
				Content: p.cleaner.CleanText(b.Text),
				BBox:    models.NewBBox(b.X0, b.Y0, b.X1, b.Y1, page.Top),
			}
			for _, f := range b.Fonts {
				block.Fonts = append(block.Fonts, models.FontSpec{
					Name: f.Name,
					Size: math.Round(f.Size*100) / 100,
				})
			}
			result.TextBlocks = append(result.TextBlocks, block)
		}
	}
	return result
}

func (p *Parser) ocrBlocks(res ocr.Result) []models.OCRBlock {
	paragraphs := p.cleaner.OrganizeContent(res.Text)
	if len(paragraphs) == 0 {
		return []models.OCRBlock{}
	}
	return []models.OCRBlock{{
		Type:       models.BlockTypeOCR,
		Content:    paragraphs,
		Confidence: math.Round(res.Confidence*100) / 100,
	}}
}

// runOCR rasterizes the given pages in order and recognizes them on a bounded
// pool. results[i] belongs to pageNumbers[i].
func (p *Parser) runOCR(ctx context.Context, logCtx *slog.Logger, path string, pageNumbers []int) ([]ocr.Result, error) {
	doc, err := p.deps.Rasterizer.Open(path)
	if err != nil {
		logCtx.Error("Failed to open PDF for rasterization", "error", err)
		return nil, fmt.Errorf("failed to open PDF for rasterization: %w", err)
	}
	defer doc.Close()

	logCtx.Info("Starting OCR.", "pages", len(pageNumbers), "workers", p.config.Workers, "engine", p.deps.Engine.Name())
	results := make([]ocr.Result, len(pageNumbers))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.config.Workers)

	for i, pageNumber := range pageNumbers {
		if gctx.Err() != nil {
			break
		}
		img, err := doc.PagePNG(pageNumber, p.config.DPI)
		if err != nil {
			_ = eg.Wait()
			logCtx.Error("Failed to rasterize page", "page", pageNumber, "error", err)
			return nil, fmt.Errorf("failed to rasterize page %d: %w", pageNumber, err)
		}
		eg.Go(func() error {
			res, err := p.recognize(gctx, logCtx, pageNumber, img)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logCtx.Info("OCR complete.", "pages", len(pageNumbers))
	return results, nil
}

// recognize runs the OCR engine on one page. Engine failures yield an empty
// result; only cancellation is returned as an error.
func (p *Parser) recognize(ctx context.Context, logCtx *slog.Logger, pageNumber int, img []byte) (ocr.Result, error) {
	res, err := p.deps.Engine.Recognize(ctx, ocr.Input{
		Page:        pageNumber,
		PNG:         img,
		DPI:         p.config.DPI,
		Languages:   p.settings.Languages,
		PageSegMode: p.settings.PageSegMode,
		Variables:   p.settings.Variables,
		Layout:      p.config.Layout,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ocr.Result{}, ctxErr
		}
		logCtx.Error("OCR failed for page", "page", pageNumber, "error", err)
		return ocr.Result{}, nil
	}
	res.Text = p.cleaner.CleanOCR(res.Text)
	return res, nil
}
