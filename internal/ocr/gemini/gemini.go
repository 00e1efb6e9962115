// Package gemini implements ocr.Engine on top of a Vertex AI Gemini model.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/chinesepdfparser/internal/gcp"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/Lllllllleong/chinesepdfparser/internal/ocr"
)

// Generator is the part of *genai.GenerativeModel the engine depends on.
type Generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// Engine sends page images to Gemini with a transcription prompt. Gemini does
// not report a confidence, so results carry 0.
type Engine struct {
	model Generator
}

// New returns an engine backed by the given model, usually gcp.VertexClient.OCRModel.
func New(model Generator) *Engine {
	return &Engine{model: model}
}

func (e *Engine) Name() string { return "gemini" }

// Recognize transcribes one page image.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	prompt := gcp.OCRHorizontalPrompt
	if in.Layout == models.LayoutVertical {
		prompt = gcp.OCRVerticalPrompt
	}

	resp, err := e.model.GenerateContent(ctx, genai.ImageData("png", in.PNG), genai.Text(prompt))
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to generate transcription from gemini for page %d: %w", in.Page, err)
	}

	text := extractText(resp)
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return ocr.Result{}, fmt.Errorf("gemini response indicates refusal for page %d", in.Page)
		}
	}
	return ocr.Result{Text: text}, nil
}

// extractText concatenates the text parts of the first candidate and strips code fences.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	contentStr := strings.TrimSpace(sb.String())
	contentStr = strings.TrimPrefix(contentStr, "```text")
	contentStr = strings.TrimPrefix(contentStr, "```")
	contentStr = strings.TrimSuffix(contentStr, "```")
	return strings.TrimSpace(contentStr)
}
