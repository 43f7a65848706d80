package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{
		Level:       level,
		Format:      format,
		Output:      NewOutput(&buf),
		ServiceName: "amply",
	}), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"default config", DefaultConfig()},
		{"development config", DevelopmentConfig()},
		{"production config", ProductionConfig()},
		{"custom config json", Config{Level: LevelDebug, Format: FormatJSON, Output: OutputStdout(), AddSource: true}},
		{"custom config text", Config{Level: LevelWarn, Format: FormatText, Output: OutputStderr()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			if logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if logger.zap == nil || logger.sugar == nil {
				t.Fatal("expected zap logger, got nil")
			}
			if logger.Config().Level != tt.config.Level {
				t.Errorf("expected level %v, got %v", tt.config.Level, logger.Config().Level)
			}
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %s", len(entries), buf.String())
	}
	if entries[0]["level"] != "WARN" || entries[1]["level"] != "ERROR" {
		t.Errorf("unexpected levels: %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

func TestJSONFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.Info("test message", "key1", "value1", "count", 3)

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	for _, key := range []string{"msg", "level", "time", "service", "key1", "count"} {
		if _, ok := e[key]; !ok {
			t.Errorf("missing key %q in %v", key, e)
		}
	}
	if e["msg"] != "test message" {
		t.Errorf("msg = %v", e["msg"])
	}
	if e["level"] != "INFO" {
		t.Errorf("level = %v", e["level"])
	}
	if e["service"] != "amply" {
		t.Errorf("service = %v", e["service"])
	}
}

func TestTextFormat(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)

	logger.Info("text message", "key1", "value1")

	out := buf.String()
	for _, want := range []string{"INFO", "text message", "key1", "value1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestWith(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	child := logger.With("component", "gateway")
	child.Info("child")
	logger.Info("parent")

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["component"] != "gateway" {
		t.Errorf("child missing component: %v", entries[0])
	}
	if _, ok := entries[1]["component"]; ok {
		t.Errorf("parent must not inherit child fields: %v", entries[1])
	}
}

func TestWithGroup(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.WithGroup("http").Info("request", "status", 200)

	entries := decodeLines(t, buf)
	group, ok := entries[0]["http"].(map[string]any)
	if !ok {
		t.Fatalf("expected http group, got %v", entries[0])
	}
	if group["status"] != float64(200) {
		t.Errorf("status = %v", group["status"])
	}
}

func TestWithError(t *testing.T) {
	t.Run("nil error returns same logger", func(t *testing.T) {
		logger, _ := newBufferLogger(LevelInfo, FormatJSON)
		if logger.WithError(nil) != logger {
			t.Error("expected same logger for nil error")
		}
	})

	t.Run("amply error adds code and suggestions", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatJSON)
		logger.WithError(amplyerrors.NewNotLoggedInError()).Error("failed")

		e := decodeLines(t, buf)[0]
		if e["error_code"] != "SESSION-003" {
			t.Errorf("error_code = %v", e["error_code"])
		}
		if _, ok := e["suggestions"]; !ok {
			t.Errorf("missing suggestions: %v", e)
		}
	})

	t.Run("wrapped amply error is unwrapped", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatJSON)
		err := fmt.Errorf("load ledger: %w", amplyerrors.NewFieldRequiredError("city"))
		logger.WithError(err).Error("failed")

		e := decodeLines(t, buf)[0]
		if e["field"] != "city" {
			t.Errorf("field = %v", e["field"])
		}
	})

	t.Run("plain error", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatJSON)
		logger.WithError(fmt.Errorf("boom")).Error("failed")

		e := decodeLines(t, buf)[0]
		if e["error"] != "boom" {
			t.Errorf("error = %v", e["error"])
		}
	})
}

func TestLogError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.LogError(nil)
	logger.LogError(amplyerrors.NewNotLoggedInError().WithDocs("https://docs.amply-impact.org/cli"))

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["msg"] != "operation failed" {
		t.Errorf("msg = %v", e["msg"])
	}
	if e["docs_url"] != "https://docs.amply-impact.org/cli" {
		t.Errorf("docs_url = %v", e["docs_url"])
	}
}

func TestContextRequestID(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	logger.InfoContext(ctx, "with id")
	logger.DebugContext(context.Background(), "without id")

	entries := decodeLines(t, buf)
	if entries[0]["request_id"] != "req-123" {
		t.Errorf("request_id = %v", entries[0]["request_id"])
	}
	if _, ok := entries[1]["request_id"]; ok {
		t.Errorf("unexpected request_id: %v", entries[1])
	}

	if _, ok := RequestIDFromContext(context.Background()); ok {
		t.Error("empty context should have no request id")
	}
}

func TestEnabled(t *testing.T) {
	logger, _ := newBufferLogger(LevelWarn, FormatJSON)
	ctx := context.Background()

	if logger.Enabled(ctx, LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Info("discarded", "k", "v")
	logger.LogError(fmt.Errorf("discarded"))
	if logger.Enabled(context.Background(), LevelError) {
		t.Error("nop logger should not be enabled")
	}
}
