package layout

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/Lllllllleong/chinesepdfparser/internal/testpdf"
)

func TestExtractReadsTextLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	testpdf.Write(t, path, [][]string{{"Hello", "World"}, nil})

	pages, err := NewExtractor(models.LayoutHorizontal).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Number != 1 || pages[0].Top != 792 || pages[0].Width != 612 {
		t.Errorf("page 1 geometry = %+v", pages[0])
	}
	if len(pages[0].Blocks) != 1 {
		t.Fatalf("page 1 has %d blocks, want 1", len(pages[0].Blocks))
	}
	b := pages[0].Blocks[0]
	if b.Kind != KindText || !strings.Contains(b.Text, "Hello") || !strings.Contains(b.Text, "World") {
		t.Errorf("page 1 block = %+v", b)
	}
	if len(b.Fonts) == 0 {
		t.Error("page 1 block has no fonts")
	}
	if len(pages[1].Blocks) != 0 {
		t.Errorf("page 2 blocks = %+v, want none", pages[1].Blocks)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := NewExtractor(models.LayoutHorizontal).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	testpdf.Write(t, path, [][]string{{"Hello"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewExtractor(models.LayoutHorizontal).Extract(ctx, path); err == nil {
		t.Fatal("expected context error")
	}
}
