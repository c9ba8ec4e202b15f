package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("header parsed", "elements", 2)

	output := buf.String()
	if !strings.Contains(output, "header parsed") {
		t.Fatalf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, `"elements":2`) {
		t.Fatalf("expected elements attr in JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"level":"INFO"`) {
		t.Fatalf("expected level INFO in output, got: %s", output)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")
	if buf.Len() > 0 {
		t.Fatalf("expected no output for info/debug at warn level, got: %s", buf.String())
	}

	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestNewForFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		format string
		want   string
		color  bool
	}{
		{"json", `"msg":"converted"`, false},
		{"text", "msg=converted", false},
		{"plain", "INFO  converted", false},
		{"pretty", "converted", true},
		{"whatever", "converted", true},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			NewForFormat(tc.format, slog.LevelInfo, &buf).Info("converted")
			output := buf.String()
			if !strings.Contains(output, tc.want) {
				t.Fatalf("expected %q in output, got: %s", tc.want, output)
			}
			if got := strings.Contains(output, "\033["); got != tc.color {
				t.Fatalf("color escapes present=%v, want %v: %q", got, tc.color, output)
			}
		})
	}
}

func TestPrettyDropsColorForFiles(t *testing.T) {
	t.Parallel()
	f, err := os.Create(filepath.Join(t.TempDir(), "plytool.log"))
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	Pretty(f, slog.LevelInfo).Info("converted", "file", "bunny.ply")
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "\033[") {
		t.Fatalf("unexpected color escapes in file output: %q", data)
	}
	if !strings.Contains(string(data), "file=bunny.ply") {
		t.Fatalf("missing attribute in file output: %q", data)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.Error("dropped")
	if log.Slog() == nil {
		t.Fatal("Slog() returned nil")
	}
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.With("file", "cube.ply").Info("child message")

	output := buf.String()
	if !strings.Contains(output, `"file":"cube.ply"`) {
		t.Fatalf("expected file attr in output, got: %s", output)
	}
}

func TestWithGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.WithGroup("body").Info("grouped message", "rows", 8)

	if !strings.Contains(buf.String(), `"body":{"rows":8}`) {
		t.Fatalf("expected grouped attr, got: %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))
	FromContext(ctx).Info("roundtrip test")
	if !strings.Contains(buf.String(), "roundtrip test") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext with no logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelInfo},
	}
	for _, tc := range tests {
		if result := ParseLevel(tc.input); result != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, result)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestPrettyHandlerAttrsAndGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	h.NoColor = true

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("service", "api")}).WithGroup("a").WithGroup("b"))
	logger.Info("nested", "key", "val")

	output := buf.String()
	if !strings.Contains(output, "service=api a.b.key=val") {
		t.Fatalf("expected attrs then nested group, got: %s", output)
	}
	if h.WithGroup("") != slog.Handler(h) {
		t.Fatal("WithGroup empty string should return same handler")
	}
}

func TestPrettySource(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true})
	h.NoColor = true
	slog.New(h).Info("with source")

	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected source location, got: %s", buf.String())
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	slog.New(h).Info("test", "msg", "hello world", "key", "simple")

	output := buf.String()
	if !strings.Contains(output, `msg="hello world"`) {
		t.Fatalf("expected quoted string with spaces, got: %s", output)
	}
	if !strings.Contains(output, "key=simple") {
		t.Fatalf("expected unquoted simple string, got: %s", output)
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected bool
	}{
		{"simple", false},
		{"has space", true},
		{"has\ttab", true},
		{`has"quote`, true},
		{"found 'x'", true},
		{"", false},
	}
	for _, tc := range tests {
		if result := needsQuoting(tc.input); result != tc.expected {
			t.Errorf("needsQuoting(%q): expected %v, got %v", tc.input, tc.expected, result)
		}
	}
}
