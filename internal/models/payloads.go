package models

// These structs define the JSON payloads for the HTTP parse function.

// ParseRequest is the input for the HandleParsePDF function.
type ParseRequest struct {
	GCSUri      string `json:"gcsUri"`
	Layout      string `json:"layout,omitempty"`
	ExecutionID string `json:"executionId"`
}

// ParseResponse is the output of the HandleParsePDF function.
type ParseResponse struct {
	Status         string `json:"status"`
	DocumentID     string `json:"documentId,omitempty"`
	ReportGCSUri   string `json:"reportGcsUri"`
	TextGCSUri     string `json:"textGcsUri"`
	PageCount      int    `json:"pageCount"`
	OCRPageCount   int    `json:"ocrPageCount"`
	DuplicateOfDoc string `json:"duplicateOf,omitempty"`
}
