package models

import "time"

// Parse job statuses stored on a Document.
const (
	StatusParsing   = "PARSING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Document represents the main record for a PDF parsing job in Firestore.
// It tracks the overall status and metadata of the file.
type Document struct {
	FileHash            string    `firestore:"fileHash,omitempty"`
	OriginalFilename    string    `firestore:"originalFilename,omitempty"`
	Status              string    `firestore:"status,omitempty"`
	ErrorDetails        string    `firestore:"errorDetails,omitempty"`
	PageCount           int       `firestore:"pageCount,omitempty"`
	OCRPageCount        int       `firestore:"ocrPageCount,omitempty"`
	Layout              string    `firestore:"layout,omitempty"`
	ReportGCSUri        string    `firestore:"reportGcsUri,omitempty"`
	WorkflowExecutionID string    `firestore:"workflowExecutionId,omitempty"` // For traceability
	CreatedAt           time.Time `firestore:"createdAt,omitempty"`
}
