package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/Lllllllleong/chinesepdfparser/internal/textclean"
)

// TranscriptPath returns the path of the plain-text transcript written next to
// a JSON report.
func TranscriptPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".txt"
}

// ExportReport writes the report as indented JSON to outputPath and a
// plain-text transcript next to it. It returns the transcript path.
func ExportReport(report *models.Report, outputPath, title string, cleaner *textclean.Cleaner) (string, error) {
	logCtx := slog.With("output", outputPath)

	txtPath := TranscriptPath(outputPath)
	if filepath.Clean(txtPath) == filepath.Clean(outputPath) {
		return "", fmt.Errorf("output path %s has a .txt extension and would be overwritten by the transcript", outputPath)
	}

	data, err := MarshalReport(report)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON report: %w", err)
	}

	transcript := RenderTranscript(report, title, cleaner)
	if err := os.WriteFile(txtPath, []byte(transcript), 0o644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	logCtx.Info("Report exported.", "transcript", txtPath, "bytes", len(data))
	return txtPath, nil
}

// MarshalReport encodes the report with CJK left unescaped and checks the result
// against the report schema.
func MarshalReport(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := models.ValidateReportJSON(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("report failed schema validation: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTranscript builds the text transcript: the title, then every page's
// text and OCR content re-organized into paragraphs.
func RenderTranscript(report *models.Report, title string, cleaner *textclean.Cleaner) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")

	sep := cleaner.ParagraphSeparator()
	for _, page := range report.Pages {
		var parts []string
		for _, b := range page.TextBlocks {
			if b.Type == models.BlockTypeText && b.Content != "" {
				parts = append(parts, b.Content)
			}
		}
		for _, o := range page.OCRContent {
			parts = append(parts, o.Content...)
		}
		if len(parts) == 0 {
			continue
		}
		for _, para := range cleaner.OrganizeContent(strings.Join(parts, cleaner.Joiner())) {
			if strings.TrimSpace(para) == "" {
				continue
			}
			sb.WriteString(para)
			sb.WriteString(sep)
		}
	}
	return sb.String()
}
