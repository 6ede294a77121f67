package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	Init("debug", "json")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { Init("info", "json") })

	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestInfo_IncludesContextFields(t *testing.T) {
	buf := captureOutput(t)

	ctx := context.WithValue(context.Background(), LeadIDKey, int64(42))
	ctx = context.WithValue(ctx, CorrelationIDKey, "abc-123")

	Info(ctx, "Lead accepted", "action", "accept")

	entry := decodeLine(t, buf)
	if entry["lead_id"] != 42.0 {
		t.Errorf("Expected lead_id 42, got %v", entry["lead_id"])
	}
	if entry["correlation_id"] != "abc-123" {
		t.Errorf("Expected correlation_id abc-123, got %v", entry["correlation_id"])
	}
	if entry["action"] != "accept" {
		t.Errorf("Expected action field, got %v", entry["action"])
	}
	if entry["msg"] != "Lead accepted" {
		t.Errorf("Expected message, got %v", entry["msg"])
	}
}

func TestLogError_IncludesError(t *testing.T) {
	buf := captureOutput(t)

	LogError(context.Background(), "Something broke", context.DeadlineExceeded)

	entry := decodeLine(t, buf)
	if entry["error"] != context.DeadlineExceeded.Error() {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
	if entry["level"] != "error" {
		t.Errorf("Expected error level, got %v", entry["level"])
	}
}

func TestLogSlowOperation_OnlyLogsWhenSlow(t *testing.T) {
	buf := captureOutput(t)

	LogSlowOperation(context.Background(), "refresh", 500*time.Millisecond)
	if buf.Len() != 0 {
		t.Errorf("Expected no log for a fast operation, got %q", buf.String())
	}

	LogSlowOperation(context.Background(), "refresh", 2*time.Second)
	if buf.Len() == 0 {
		t.Error("Expected a warning for a slow operation")
	}
}

func TestInit_InvalidLevelFallsBack(t *testing.T) {
	Init("nonsense", "json")
	// must not panic and must keep logging
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	Info(context.Background(), "still works")
	if buf.Len() == 0 {
		t.Error("Expected logging to work after invalid level")
	}
}
