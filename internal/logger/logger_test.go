package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tirasundara/bpo-reconciliation/internal/logger"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewWithWriter(buf)

	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", buf.String())
	}
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		expected  zerolog.Level
		expectErr bool
	}{
		{"defaults", "", "", zerolog.InfoLevel, false},
		{"debug json", "debug", "json", zerolog.DebugLevel, false},
		{"upper case level", "WARN", "console", zerolog.WarnLevel, false},
		{"bad level", "loud", "json", zerolog.NoLevel, true},
		{"bad format", "info", "xml", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.Configure(&bytes.Buffer{}, tt.level, tt.format)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if log.GetLevel() != tt.expected {
				t.Errorf("Expected level %s, got %s", tt.expected, log.GetLevel())
			}
		})
	}
}

func TestConfigure_JSONFiltersBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := logger.Configure(buf, "warn", "json")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info line to be filtered, got: %s", out)
	}
	if !strings.Contains(out, `"message":"shown"`) {
		t.Errorf("Expected JSON warn line, got: %s", out)
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))

	log := logger.FromContext(ctx)
	log.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.WithFields(logger.NewWithWriter(buf), map[string]any{
		"company_id": "acme",
		"rows":       3,
	})

	log.Info().Msg("imported")

	out := buf.String()
	if !strings.Contains(out, `"company_id":"acme"`) || !strings.Contains(out, `"rows":3`) {
		t.Errorf("Expected fields in output, got: %s", out)
	}
}
