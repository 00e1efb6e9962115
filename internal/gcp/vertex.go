package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// DefaultOCRModel is the Gemini model used when none is configured.
const DefaultOCRModel = "gemini-1.5-pro"

// --- OCR Model Prompts ---
const OCRSystemPrompt = "You are an OCR engine for scanned Traditional Chinese books. Your task is to transcribe the text printed on a page image exactly as written. Accuracy and faithfulness to the original characters are of utmost importance."

const OCRHorizontalPrompt = `You will be provided with an image of a single book page. The text runs in horizontal lines, read left to right and top to bottom.

Follow these instructions:
1.  Transcribe every line of body text in reading order, one output line per printed line.
2.  Keep the original Traditional Chinese characters. Do not convert them to Simplified Chinese and do not translate.
3.  Keep Chinese punctuation such as ，。！？：；、「」《》 exactly where it appears.
4.  Ignore page numbers, running headers and footers, and decorative elements.

Return ONLY the transcribed text. Do not include any preamble or surround the output with backtick fences.`

const OCRVerticalPrompt = `You will be provided with an image of a single book page. The text is typeset vertically: read each column top to bottom, and read the columns from right to left.

Follow these instructions:
1.  Transcribe every column of body text in reading order, one output line per printed column.
2.  Keep the original Traditional Chinese characters. Do not convert them to Simplified Chinese and do not translate.
3.  Keep Chinese punctuation such as ，。！？：；、「」『』《》 exactly where it appears.
4.  Ignore page numbers, running headers and footers, and decorative elements.

Return ONLY the transcribed text. Do not include any preamble or surround the output with backtick fences.`

// VertexClient holds the pre-configured generative models for our app.
type VertexClient struct {
	OCRModel   *genai.GenerativeModel
	baseClient *genai.Client
}

// NewVertexClient creates a new client holding the OCR model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultOCRModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	// --- Configure the OCR model ---
	ocrModel := baseClient.GenerativeModel(modelName)
	ocrModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(OCRSystemPrompt)},
	}
	ocrModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0), // Transcription must be deterministic.
	}
	ocrModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		OCRModel:   ocrModel,
		baseClient: baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
