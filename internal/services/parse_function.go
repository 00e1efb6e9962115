package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/chinesepdfparser/internal/gcp"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"golang.org/x/sync/errgroup"
)

// GCSEvent is the payload of a Cloud Storage object-finalized event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ParserFactory builds a Parser for the requested layout.
type ParserFactory func(layout models.Layout) (*Parser, error)

// DocumentRepository persists parse-job Documents.
type DocumentRepository interface {
	FindByHash(ctx context.Context, fileHash string) (string, bool, error)
	Create(ctx context.Context, doc models.Document) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

var _ DocumentRepository = (*gcp.DocumentStore)(nil)

// ObjectStore moves files between Cloud Storage and local disk.
type ObjectStore interface {
	Download(ctx context.Context, bucket, object, destPath string) error
	// Upload writes a local file to the reports bucket and returns its gs:// URI.
	Upload(ctx context.Context, localPath, object string) (string, error)
}

type ParseFunctionConfig struct {
	ProjectID      string
	ReportsBucket  string
	CollectionName string
	DefaultLayout  models.Layout
}

// ParseFunction runs the hybrid parser on PDFs stored in Cloud Storage and
// publishes the reports back to Cloud Storage.
type ParseFunction struct {
	documents DocumentRepository
	objects   ObjectStore
	newParser ParserFactory
	config    ParseFunctionConfig
}

// NewParseFunction creates the Cloud clients from the environment.
func NewParseFunction(ctx context.Context, newParser ParserFactory) (*ParseFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	layout, err := models.ParseLayout(gcp.GetEnv("PDF_LAYOUT", string(models.LayoutHorizontal)))
	if err != nil {
		return nil, fmt.Errorf("PDF_LAYOUT: %w", err)
	}
	config := ParseFunctionConfig{
		ProjectID:      projectID,
		ReportsBucket:  gcp.GetEnv("REPORTS_BUCKET", ""),
		CollectionName: gcp.GetEnv("FIRESTORE_COLLECTION", "parsed_documents"),
		DefaultLayout:  layout,
	}
	if config.ReportsBucket == "" {
		return nil, fmt.Errorf("REPORTS_BUCKET environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	f := newParseFunction(
		config,
		gcp.NewDocumentStore(firestoreClient, config.CollectionName),
		&gcsObjectStore{client: storageClient, reportsBucket: config.ReportsBucket},
		newParser,
	)
	slog.Info("PDF parse function initialized.", "reportsBucket", config.ReportsBucket, "layout", config.DefaultLayout)
	return f, nil
}

func newParseFunction(config ParseFunctionConfig, documents DocumentRepository, objects ObjectStore, newParser ParserFactory) *ParseFunction {
	return &ParseFunction{
		documents: documents,
		objects:   objects,
		newParser: newParser,
		config:    config,
	}
}

// Process handles an object-finalized event. Objects that are not PDFs and
// files that were already parsed are skipped without error.
func (f *ParseFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if !strings.EqualFold(path.Ext(e.Name), ".pdf") {
		logCtx.Info("Object is not a PDF. Skipping.")
		return nil
	}
	_, err := f.run(ctx, logCtx, e.Bucket, e.Name, f.config.DefaultLayout, "")
	return err
}

// ProcessURI parses the PDF named by req.GCSUri and reports where the results were written.
func (f *ParseFunction) ProcessURI(ctx context.Context, req *models.ParseRequest) (*models.ParseResponse, error) {
	logCtx := slog.With("gcsUri", req.GCSUri, "executionId", req.ExecutionID)
	bucket, object, err := gcp.ParseGCSUri(req.GCSUri)
	if err != nil {
		logCtx.Error("Invalid request", "error", err)
		return nil, err
	}
	if !strings.EqualFold(path.Ext(object), ".pdf") {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, req.GCSUri)
	}
	layout := f.config.DefaultLayout
	if req.Layout != "" {
		if layout, err = models.ParseLayout(req.Layout); err != nil {
			return nil, err
		}
	}
	return f.run(ctx, logCtx, bucket, object, layout, req.ExecutionID)
}

func (f *ParseFunction) run(ctx context.Context, logCtx *slog.Logger, bucket, object string, layout models.Layout, executionID string) (*models.ParseResponse, error) {
	logCtx.Info("Processing PDF.", "layout", layout)

	tempDir, err := os.MkdirTemp("", "pdf-parser-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, "source.pdf")
	if err := f.objects.Download(ctx, bucket, object, sourcePath); err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return nil, err
	}

	fileHash, err := calculateFileHash(sourcePath)
	if err != nil {
		logCtx.Error("Failed to calculate file hash", "error", err)
		return nil, fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	existingID, isDuplicate, err := f.documents.FindByHash(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return nil, err
	}
	if isDuplicate {
		logCtx.Info("Duplicate file detected. Skipping.", "existingDocId", existingID)
		return &models.ParseResponse{Status: "DUPLICATE", DuplicateOfDoc: existingID}, nil
	}

	docID, err := f.documents.Create(ctx, models.Document{
		FileHash:            fileHash,
		OriginalFilename:    object,
		Status:              models.StatusParsing,
		Layout:              string(layout),
		WorkflowExecutionID: executionID,
		CreatedAt:           time.Now(),
	})
	if err != nil {
		logCtx.Error("Failed to create initial Firestore document", "error", err)
		return nil, err
	}
	logCtx = logCtx.With("documentId", docID)
	logCtx.Info("Created master document in Firestore.")

	parser, err := f.newParser(layout)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, docID, "failed to build parser", err)
	}
	report, err := parser.HybridParse(ctx, sourcePath)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, docID, "failed to parse PDF", err)
	}
	report.Metadata.FileName = path.Base(object)

	jsonPath := filepath.Join(tempDir, "report.json")
	txtPath, err := ExportReport(report, jsonPath, parser.Config().ReportTitle, parser.Cleaner())
	if err != nil {
		return nil, f.handleError(ctx, logCtx, docID, "failed to export report", err)
	}

	res := &models.ParseResponse{
		Status:       models.StatusCompleted,
		DocumentID:   docID,
		PageCount:    report.Metadata.PageCount,
		OCRPageCount: report.Metadata.OCRPageCount,
	}
	if err := f.uploadReports(ctx, logCtx, docID, jsonPath, txtPath, res); err != nil {
		return nil, f.handleError(ctx, logCtx, docID, "failed to upload reports", err)
	}

	err = f.documents.Update(ctx, docID, map[string]any{
		"status":       models.StatusCompleted,
		"pageCount":    res.PageCount,
		"ocrPageCount": res.OCRPageCount,
		"reportGcsUri": res.ReportGCSUri,
	})
	if err != nil {
		return nil, f.handleError(ctx, logCtx, docID, "failed to update status to COMPLETED", err)
	}
	logCtx.Info("PDF parsed and reports published.", "pageCount", res.PageCount, "ocrPageCount", res.OCRPageCount)
	return res, nil
}

func (f *ParseFunction) uploadReports(ctx context.Context, logCtx *slog.Logger, docID, jsonPath, txtPath string, res *models.ParseResponse) error {
	logCtx.Info("Uploading reports.")
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(2)

	eg.Go(func() error {
		uri, err := f.objects.Upload(gctx, jsonPath, docID+"/report.json")
		res.ReportGCSUri = uri
		return err
	})
	eg.Go(func() error {
		uri, err := f.objects.Upload(gctx, txtPath, docID+"/report.txt")
		res.TextGCSUri = uri
		return err
	})
	return eg.Wait()
}

func (f *ParseFunction) handleError(ctx context.Context, logCtx *slog.Logger, docID, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	updates := map[string]any{"status": models.StatusFailed, "errorDetails": fullError}
	if err := f.documents.Update(ctx, docID, updates); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}

type gcsObjectStore struct {
	client        *storage.Client
	reportsBucket string
}

func (s *gcsObjectStore) Download(ctx context.Context, bucket, object, destPath string) error {
	return gcp.StreamObjectToFile(ctx, s.client, bucket, object, destPath)
}

func (s *gcsObjectStore) Upload(ctx context.Context, localPath, object string) (string, error) {
	if err := gcp.UploadFile(ctx, s.client.Bucket(s.reportsBucket), localPath, object); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", s.reportsBucket, object), nil
}
