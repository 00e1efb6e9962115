package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleReport() Report {
	return Report{
		Metadata: Metadata{
			FileName:  "sample.pdf",
			FileSize:  1024,
			FileHash:  strings.Repeat("ab", 32),
			PageCount: 2,
			Layout:    "horizontal",
			OCREngine: "tesseract",
			DPI:       400,
			RunID:     "run-1",
			ParsedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Pages: []PageResult{
			{
				Page: 1,
				TextBlocks: []TextBlock{
					{Type: BlockTypeText, Content: "明月幾時有", BBox: NewBBox(10, 700, 200, 712, 792), Fonts: []FontSpec{{Name: "MingLiU", Size: 12}}},
					{Type: BlockTypeFigure, Name: "Im0"},
				},
				OCRContent: []OCRBlock{},
			},
			{
				Page:       2,
				TextBlocks: []TextBlock{},
				OCRContent: []OCRBlock{{Type: BlockTypeOCR, Content: []string{"大江東去，浪淘盡。"}, Confidence: 88.5}},
			},
		},
	}
}

func TestNewBBoxNormalizesToTopLeft(t *testing.T) {
	got := NewBBox(10.123, 100.456, 50.789, 120.001, 792)
	want := BBox{10.12, 672, 50.79, 691.54}
	if *got != want {
		t.Fatalf("NewBBox = %v, want %v", *got, want)
	}
}

func TestHasTextContent(t *testing.T) {
	tests := []struct {
		name   string
		blocks []TextBlock
		want   bool
	}{
		{"no blocks", nil, false},
		{"figure only", []TextBlock{{Type: BlockTypeFigure}}, false},
		{"empty text", []TextBlock{{Type: BlockTypeText, Content: ""}}, false},
		{"text", []TextBlock{{Type: BlockTypeFigure}, {Type: BlockTypeText, Content: "詞"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PageResult{TextBlocks: tt.blocks}
			if got := p.HasTextContent(); got != tt.want {
				t.Errorf("HasTextContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateReportJSON(t *testing.T) {
	data, err := json.Marshal(sampleReport())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ValidateReportJSON(data); err != nil {
		t.Fatalf("valid report rejected: %v", err)
	}
}

func TestValidateReportJSONRejectsBadReports(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Report)
	}{
		{"bad hash", func(r *Report) { r.Metadata.FileHash = "xyz" }},
		{"page zero", func(r *Report) { r.Pages[0].Page = 0 }},
		{"nil blocks", func(r *Report) { r.Pages[1].TextBlocks = nil }},
		{"confidence out of range", func(r *Report) { r.Pages[1].OCRContent[0].Confidence = 150 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleReport()
			tt.mutate(&r)
			data, err := json.Marshal(r)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if err := ValidateReportJSON(data); err == nil {
				t.Fatal("expected schema error, got nil")
			}
		})
	}
}

func TestTextBlockJSONShape(t *testing.T) {
	tests := []struct {
		name  string
		block TextBlock
		want  string
	}{
		{"empty text keeps content", TextBlock{Type: BlockTypeText, Content: ""}, `{"type":"text","content":""}`},
		{"text", TextBlock{Type: BlockTypeText, Content: "詞", Fonts: []FontSpec{{Name: "F1", Size: 12}}}, `{"type":"text","content":"詞","fonts":[{"name":"F1","size":12}]}`},
		{"figure has no content", TextBlock{Type: BlockTypeFigure, Name: "Im0"}, `{"type":"figure","name":"Im0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.block)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("json = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateReportJSONRequiresTextContent(t *testing.T) {
	doc := `{
		"metadata": {"file_size": 1, "file_hash": "` + strings.Repeat("ab", 32) + `", "page_count": 1},
		"pages": [{"page": 1, "text_blocks": [{"type": "text"}], "ocr_content": []}]
	}`
	if err := ValidateReportJSON([]byte(doc)); err == nil {
		t.Error("text block without content accepted")
	}
	figure := strings.Replace(doc, `{"type": "text"}`, `{"type": "figure", "name": "Im0"}`, 1)
	if err := ValidateReportJSON([]byte(figure)); err != nil {
		t.Errorf("figure without content rejected: %v", err)
	}
}
