package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/chinesepdfparser/internal/app"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/Lllllllleong/chinesepdfparser/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	parseFunctionInstance *services.ParseFunction
	once                  sync.Once
	initErr               error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("ParseUploadedPDF", parseUploadedPDF)
	functions.HTTP("HandleParsePDF", handleParsePDF)
}

// main is required by the Go Functions Framework.
func main() {}

func initialize() error {
	once.Do(func() {
		ctx := context.Background()
		config, err := services.LoadParserConfig()
		if err != nil {
			initErr = err
			return
		}
		builder, err := app.NewBuilder(ctx, *config)
		if err != nil {
			initErr = err
			return
		}
		parseFunctionInstance, initErr = services.NewParseFunction(ctx, builder.Parser)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
	}
	return initErr
}

// parseUploadedPDF is triggered when an object is finalized in the uploads bucket.
func parseUploadedPDF(ctx context.Context, e cloudevents.Event) error {
	if err := initialize(); err != nil {
		return err
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	// The error is already logged with context within Process.
	return parseFunctionInstance.Process(ctx, gcsEvent)
}

func handleParsePDF(w http.ResponseWriter, r *http.Request) {
	if err := initialize(); err != nil {
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	res, err := parseFunctionInstance.ProcessURI(r.Context(), &req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrNotPDF) || errors.Is(err, services.ErrInvalidPDF) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("%s: processing failed", http.StatusText(status)), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
