package main

import (
	"os"
	"testing"

	"github.com/Lllllllleong/chinesepdfparser/internal/models"
)

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseArgsFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t, "PROJECT_ID", "OCR_DPI", "OCR_WORKERS", "REPORT_TITLE")
	t.Setenv("OCR_ENGINE", "gemini")
	t.Setenv("PDF_LAYOUT", "horizontal")

	config, input, output, err := parseArgs([]string{"-ocr-engine", "tesseract", "-layout", "v", "-dpi", "300", "-o", "out/poem.json", "poem.pdf"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if config.OCREngine != "tesseract" || config.Layout != models.LayoutVertical || config.DPI != 300 {
		t.Errorf("config = %+v", config)
	}
	if input != "poem.pdf" || output != "out/poem.json" {
		t.Errorf("input, output = %q, %q", input, output)
	}
}

func TestParseArgsRejectsInvalidInvocations(t *testing.T) {
	clearEnv(t, "PROJECT_ID", "OCR_DPI", "OCR_WORKERS", "PDF_LAYOUT")
	t.Setenv("OCR_ENGINE", "gemini")

	tests := []struct {
		name string
		args []string
	}{
		{"gemini without project", []string{"poem.pdf"}},
		{"no input", []string{"-ocr-engine", "tesseract"}},
		{"bad layout", []string{"-ocr-engine", "tesseract", "-layout", "diagonal", "poem.pdf"}},
		{"zero workers", []string{"-ocr-engine", "tesseract", "-workers", "0", "poem.pdf"}},
		{"txt output", []string{"-ocr-engine", "tesseract", "-o", "poem.txt", "poem.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := parseArgs(tt.args); err == nil {
				t.Errorf("parseArgs(%q) succeeded, want error", tt.args)
			}
		})
	}
}
