package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lllllllleong/chinesepdfparser/internal/layout"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/Lllllllleong/chinesepdfparser/internal/ocr"
	"github.com/Lllllllleong/chinesepdfparser/internal/pdfinfo"
	"github.com/Lllllllleong/chinesepdfparser/internal/raster"
)

type fakeInspector struct {
	info pdfinfo.Info
	err  error
}

func (f *fakeInspector) Inspect(string) (pdfinfo.Info, error) { return f.info, f.err }

type fakeExtractor struct {
	pages []layout.Page
	err   error
}

func (f *fakeExtractor) Extract(context.Context, string) ([]layout.Page, error) {
	return f.pages, f.err
}

type fakeDocument struct {
	mu       sync.Mutex
	failPage int
	rendered []int
	closed   bool
}

func (d *fakeDocument) PagePNG(page, dpi int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if page == d.failPage {
		return nil, errors.New("render failed")
	}
	d.rendered = append(d.rendered, page)
	return []byte(fmt.Sprintf("png-%d@%d", page, dpi)), nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

type fakeRasterizer struct {
	doc *fakeDocument
	err error
}

func (f *fakeRasterizer) Open(string) (raster.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type fakeEngine struct {
	mu         sync.Mutex
	texts      map[int]string
	fail       map[int]bool
	confidence float64
	delay      time.Duration
	inputs     []ocr.Input

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		m := e.maxInFlight.Load()
		if n <= m || e.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if e.delay > 0 {
		time.Sleep(e.delay)
	}

	e.mu.Lock()
	e.inputs = append(e.inputs, in)
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	if e.fail[in.Page] {
		return ocr.Result{}, errors.New("tesseract crashed")
	}
	return ocr.Result{Text: e.texts[in.Page], Confidence: e.confidence}, nil
}

func testConfig() ParserConfig {
	return ParserConfig{
		Layout:      models.LayoutHorizontal,
		DPI:         DefaultDPI,
		Workers:     DefaultWorkers,
		OCREngine:   "tesseract",
		ReportTitle: DefaultReportTitle,
	}
}

func textBlock(text string) layout.Block {
	return layout.Block{
		Kind:  layout.KindText,
		Text:  text,
		X0:    72,
		Y0:    700,
		X1:    200,
		Y1:    732,
		Fonts: []layout.Font{{Name: "Helvetica", Size: 12.004}},
	}
}

// writeInput creates a placeholder .pdf file; the fakes never read its content.
func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 placeholder"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}
