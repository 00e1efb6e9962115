package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func TestParseGCSUri(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		object  string
		wantErr bool
	}{
		{"gs://books/dongpo/huangzhou.pdf", "books", "dongpo/huangzhou.pdf", false},
		{"gs://books/a.pdf", "books", "a.pdf", false},
		{"s3://books/a.pdf", "", "", true},
		{"gs://books", "", "", true},
		{"gs:///a.pdf", "", "", true},
	}
	for _, tt := range tests {
		bucket, object, err := ParseGCSUri(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGCSUri(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			continue
		}
		if bucket != tt.bucket || object != tt.object {
			t.Errorf("ParseGCSUri(%q) = %q, %q", tt.uri, bucket, object)
		}
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("PARSER_TEST_VALUE", "vertical")
	if got := GetEnv("PARSER_TEST_VALUE", "horizontal"); got != "vertical" {
		t.Errorf("GetEnv = %q", got)
	}
	if got := GetEnv("PARSER_TEST_UNSET", "horizontal"); got != "horizontal" {
		t.Errorf("GetEnv fallback = %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("PARSER_TEST_DPI", "300")
	if got, err := GetEnvInt("PARSER_TEST_DPI", 400); err != nil || got != 300 {
		t.Errorf("GetEnvInt = %d, %v", got, err)
	}
	if got, err := GetEnvInt("PARSER_TEST_UNSET", 400); err != nil || got != 400 {
		t.Errorf("GetEnvInt fallback = %d, %v", got, err)
	}
	t.Setenv("PARSER_TEST_DPI", "high")
	if _, err := GetEnvInt("PARSER_TEST_DPI", 400); err == nil {
		t.Error("expected error for non-integer value")
	}
}

func TestIsPreconditionFailed(t *testing.T) {
	wrapped := fmt.Errorf("close: %w", &googleapi.Error{Code: http.StatusPreconditionFailed})
	if !isPreconditionFailed(wrapped) {
		t.Error("wrapped 412 not detected")
	}
	if isPreconditionFailed(&googleapi.Error{Code: http.StatusForbidden}) {
		t.Error("403 reported as precondition failure")
	}
	if isPreconditionFailed(errors.New("plain")) {
		t.Error("plain error reported as precondition failure")
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond}
	err := Retry(context.Background(), policy, "flaky", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	boom := errors.New("permanent")
	calls := 0
	policy := RetryPolicy{MaxAttempts: 2, InitialBackoff: time.Millisecond}
	err := Retry(context.Background(), policy, "doomed", func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Hour}
	err := Retry(ctx, policy, "cancelled", func(context.Context) error {
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
