package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lllllllleong/chinesepdfparser/internal/testpdf"
)

func TestTranscribeEngines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	testpdf.Write(t, path, [][]string{{"Hello", "World"}, nil, {"Again"}})

	for _, engine := range Engines {
		t.Run(string(engine), func(t *testing.T) {
			got, err := Transcribe(context.Background(), engine, path)
			if err != nil {
				t.Fatalf("Transcribe: %v", err)
			}
			for _, want := range []string{"Hello", "World", "Again"} {
				if !strings.Contains(got, want) {
					t.Errorf("transcript %q missing %q", got, want)
				}
			}
			if strings.Index(got, "World") > strings.Index(got, "Again") {
				t.Errorf("transcript %q out of page order", got)
			}
		})
	}
}

func TestTranscribeRowsSplitsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	testpdf.Write(t, path, [][]string{{"Hello", "World"}})

	got, err := Transcribe(context.Background(), EngineRows, path)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 2 || !strings.Contains(got, "Hello") || !strings.Contains(got, "World") {
		t.Errorf("Transcribe() = %q, want Hello and World on separate rows", got)
	}
}

func TestTranscribeTextDecodesEachPageWithItsOwnFonts(t *testing.T) {
	// Both pages bind /F1, but page 2 remaps code 65 to the glyph Z.
	remapped := "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica " +
		"/Encoding << /Type /Encoding /BaseEncoding /WinAnsiEncoding /Differences [65 /Z] >> >>"
	path := filepath.Join(t.TempDir(), "doc.pdf")
	data := testpdf.BuildWithFonts([][]string{{"ABC"}, {"ABC"}}, []string{"", remapped})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Transcribe(context.Background(), EngineText, path)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !strings.Contains(got, "ABC") || !strings.Contains(got, "ZBC") {
		t.Errorf("Transcribe() = %q, want page 1 ABC and page 2 ZBC", got)
	}
}

func TestTranscribeCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	testpdf.Write(t, path, [][]string{{"Hello"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Transcribe(ctx, EngineText, path); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{"text", EngineText, false},
		{" ROWS ", EngineRows, false},
		{"mupdf", EngineMuPDF, false},
		{"pypdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEngine(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseEngine(%q) = %q, %v", tt.in, got, err)
		}
	}
	if got := EngineMuPDF.DefaultOutputPath(); got != "transcript_mupdf.txt" {
		t.Errorf("DefaultOutputPath() = %q", got)
	}
}
