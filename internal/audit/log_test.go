package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"ihale.org/internal/auth"
	"ihale.org/internal/obs"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = auth.ContextWithIdentity(ctx, auth.Identity{UserID: "user-42", UserType: "individual"})

	if err := LogEvent(ctx, "bid_placed", map[string]any{"vehicle_id": "v1"}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	line := buf.String()
	if line == "" {
		t.Fatal("expected log output")
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["event"] != "bid_placed" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["user_id"] != "user-42" {
		t.Fatalf("unexpected user id: %v", entry["user_id"])
	}
	if entry["vehicle_id"] != "v1" {
		t.Fatalf("event fields not flattened: %v", entry["vehicle_id"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for blank event name")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-1")
	if got := RequestIDFromContext(ctx); got != "rid-1" {
		t.Fatalf("unexpected request id: %s", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %s", got)
	}
	if ctx := WithRequestID(context.Background(), "  "); RequestIDFromContext(ctx) != "" {
		t.Fatal("blank request id must not be stored")
	}
}
