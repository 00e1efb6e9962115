package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt reads an integer environment variable, returning fallback when it is unset.
func GetEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// ParseGCSUri splits gs://bucket/object into its bucket and object name.
func ParseGCSUri(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("invalid GCS URI %q: missing gs:// prefix", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS URI %q: want gs://bucket/object", uri)
	}
	return bucket, object, nil
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// It's a shared utility for all services.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName string, content io.Reader) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, content); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists. Skipping.", "object", objectName)
			return nil // Not a failure in an idempotent workflow.
		}
		slog.Error("Failed to copy content to GCS object", "object", objectName, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Object already exists. Skipping.", "object", objectName)
			return nil
		}
		slog.Error("Failed to close GCS writer", "object", objectName, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// StreamObjectToFile copies a GCS object into a local file.
func StreamObjectToFile(ctx context.Context, client *storage.Client, bucket, object, destPath string) error {
	gcsReader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer gcsReader.Close()
	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()
	if _, err := io.Copy(localFile, gcsReader); err != nil {
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return nil
}

// RetryPolicy bounds how often and how patiently an operation is retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// DefaultRetryPolicy is four attempts starting with a one second backoff that doubles each time.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 4, InitialBackoff: time.Second}

// Retry runs op until it succeeds, the attempts run out, or ctx is done.
func Retry(ctx context.Context, policy RetryPolicy, name string, op func(ctx context.Context) error) error {
	backoff := policy.InitialBackoff
	var lastErr error

	for i := 0; i < policy.MaxAttempts; i++ {
		err := op(ctx)
		if err == nil {
			return nil // Success!
		}

		lastErr = err
		slog.Warn(
			"Operation failed, will retry.",
			"operation", name,
			"attempt", i+1,
			"maxRetries", policy.MaxAttempts,
			"backoff", backoff.String(),
			"error", err,
		)
		if i == policy.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			slog.Error("Context cancelled during backoff. Aborting retries.", "operation", name, "error", ctx.Err())
			return ctx.Err()
		}
	}
	slog.Error("Operation failed after all retries.", "operation", name, "error", lastErr)
	return fmt.Errorf("%s failed after all retries: %w", name, lastErr)
}

// UploadFile copies a local file into bucket/destObject, retrying with exponential backoff.
func UploadFile(ctx context.Context, bucket *storage.BucketHandle, localPath, destObject string) error {
	return Retry(ctx, DefaultRetryPolicy, "upload "+destObject, func(ctx context.Context) error {
		localFileReader, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("could not open local file %s: %w", localPath, err)
		}
		defer localFileReader.Close()

		writeCtx, cancel := context.WithTimeout(ctx, time.Second*50)
		defer cancel()

		return SaveToGCSAtomically(writeCtx, bucket, destObject, localFileReader)
	})
}
