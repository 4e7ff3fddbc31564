package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithUserID(ctx, "user-9")
	logg.Info(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("missing request id: %v", entry)
	}
	if entry["user_id"] != "user-9" {
		t.Fatalf("missing user id: %v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("missing service name: %v", entry)
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	logg.Error(context.Background(), "boom", errors.New("broken"))

	out := buf.String()
	if !strings.Contains(out, "broken") {
		t.Fatalf("error cause missing from output: %s", out)
	}
	if !strings.Contains(out, "stack") {
		t.Fatalf("stack missing from output: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("debug"); got != zerolog.DebugLevel {
		t.Fatalf("unexpected level: %v", got)
	}
	if got := ParseLevel(" "); got != zerolog.InfoLevel {
		t.Fatalf("blank should fall back to info: %v", got)
	}
	if got := ParseLevel("nonsense"); got != zerolog.InfoLevel {
		t.Fatalf("unknown should fall back to info: %v", got)
	}
}
