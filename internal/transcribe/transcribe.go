// Package transcribe dumps the raw text layer of a PDF without any cleaning,
// for comparing how different extraction back ends read the same document.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Engine names a text extraction back end.
type Engine string

const (
	// EngineText reads each page's content stream in drawing order.
	EngineText Engine = "text"
	// EngineRows groups glyphs into rows by their baseline.
	EngineRows Engine = "rows"
	// EngineMuPDF uses MuPDF's structured text extraction.
	EngineMuPDF Engine = "mupdf"
)

// Engines lists every supported back end.
var Engines = []Engine{EngineText, EngineRows, EngineMuPDF}

// ParseEngine validates an engine name.
func ParseEngine(s string) (Engine, error) {
	for _, e := range Engines {
		if strings.EqualFold(strings.TrimSpace(s), string(e)) {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown transcription engine %q: want text, rows or mupdf", s)
}

// DefaultOutputPath is where a transcript is written when no path is given.
func (e Engine) DefaultOutputPath() string {
	return fmt.Sprintf("transcript_%s.txt", e)
}

// Transcribe returns the non-empty page texts of path joined by newlines.
func Transcribe(ctx context.Context, engine Engine, path string) (string, error) {
	var pages []string
	var err error
	switch engine {
	case EngineText, EngineRows:
		pages, err = ledongthucPages(ctx, engine, path)
	case EngineMuPDF:
		pages, err = mupdfPages(ctx, path)
	default:
		return "", fmt.Errorf("unknown transcription engine %q", engine)
	}
	if err != nil {
		return "", err
	}

	nonEmpty := pages[:0]
	for _, p := range pages {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	slog.Debug("Transcribed PDF.", "engine", engine, "pages", len(pages), "nonEmptyPages", len(nonEmpty))
	return strings.Join(nonEmpty, "\n"), nil
}

func ledongthucPages(ctx context.Context, engine Engine, path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		var text string
		if engine == EngineRows {
			text, err = rowText(p)
		} else {
			text, err = plainText(p)
		}
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// plainText decodes a page with its own font resources. Resource names such as
// F1 are scoped to a page, so the map must not be shared across pages.
func plainText(p pdf.Page) (string, error) {
	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}
	return p.GetPlainText(fonts)
}

func rowText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
		if line := sb.String(); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func mupdfPages(ctx context.Context, path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
