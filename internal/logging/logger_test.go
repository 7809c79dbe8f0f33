package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DEBUG},
		{"verbose", DEBUG},
		{"quiet", WARN},
		{"warn", WARN},
		{"error", ERROR},
		{"normal", INFO},
		{"", INFO},
		{"DEBUG", DEBUG},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer: &buf,
		Level:  WARN,
	})

	logger.Debug("not this")
	logger.Info("nor this")
	logger.Warn("but this")
	logger.Error("and this")

	out := buf.String()
	if strings.Contains(out, "not this") || strings.Contains(out, "nor this") {
		t.Errorf("low levels leaked: %q", out)
	}
	if !strings.Contains(out, "but this") || !strings.Contains(out, "and this") {
		t.Errorf("high levels missing: %q", out)
	}
}

func TestConsoleLoggerRedactsBearerToken(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer:          &buf,
		Level:           DEBUG,
		RedactSensitive: true,
	})

	logger.Info("request failed", F("header", "Bearer eyJhbGciOiJIUzI1NiJ9.payload.sig"))
	logger.Info("url", F("u", "https://host/file?tempauth=abc123def&x=1"))

	out := buf.String()
	if strings.Contains(out, "eyJhbGciOiJIUzI1NiJ9") || strings.Contains(out, "abc123def") {
		t.Fatalf("credential leaked into log output: %q", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("expected redaction marker: %q", out)
	}
}

func TestConsoleLoggerTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(ConsoleLoggerConfig{Writer: &buf, Level: INFO})

	traced := logger.WithTraceID("0123456789abcdef")
	traced.Info("tagged line")

	if !strings.Contains(buf.String(), "[01234567]") {
		t.Errorf("expected shortened trace ID: %q", buf.String())
	}
}

func TestContextTraceID(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "trace-1")
	if got := TraceIDFromContext(ctx); got != "trace-1" {
		t.Errorf("got %q", got)
	}
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context must yield empty trace ID, got %q", got)
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	multi := NewMultiLogger(
		NewConsoleLogger(ConsoleLoggerConfig{Writer: &a, Level: INFO}),
		NewConsoleLogger(ConsoleLoggerConfig{Writer: &b, Level: INFO}),
	)

	multi.Info("everywhere")
	if !strings.Contains(a.String(), "everywhere") || !strings.Contains(b.String(), "everywhere") {
		t.Error("message must reach every sink")
	}
}
