// Package testpdf writes small, structurally valid PDF files for tests.
package testpdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

// Write creates a PDF at path with one page per entry in pages. Each entry is
// a list of text lines drawn top-down in Helvetica. A nil or empty entry
// produces a page with no text layer, like a scanned page.
func Write(t testing.TB, path string, pages [][]string) {
	t.Helper()
	if err := os.WriteFile(path, Build(pages), 0o644); err != nil {
		t.Fatalf("write test pdf: %v", err)
	}
}

// Build returns the bytes of a PDF as described by Write.
func Build(pages [][]string) []byte {
	return BuildWithFonts(pages, nil)
}

// BuildWithFonts is Build with a per-page font dictionary bound to /F1.
// An empty or missing entry uses Helvetica with WinAnsiEncoding.
func BuildWithFonts(pages [][]string, fonts []string) []byte {
	var objects []string
	kids := make([]string, len(pages))
	// 1: catalog, 2: page tree, then a page, content and font object per page.
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+3*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", strings.Join(kids, " "), len(pages)),
	)
	for i, lines := range pages {
		content := contentStream(lines)
		font := fontObject()
		if i < len(fonts) && fonts[i] != "" {
			font = fonts[i]
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", 5+3*i, 4+3*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
			font,
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func fontObject() string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = "500"
	}
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " "))
}

func contentStream(lines []string) string {
	var sb strings.Builder
	y := 720
	for _, line := range lines {
		fmt.Fprintf(&sb, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", y, escape(line))
		y -= 14
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
