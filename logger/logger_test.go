package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(zapcore.AddSync(&buf), zap.InfoLevel).Sugar()

	l.Debugw("hidden")
	l.Infow("Merged snapshot", zap.Int64("to", 200))
	_ = l.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered, got %q", out)
	}
	if !strings.Contains(out, "INFO  Merged snapshot") {
		t.Errorf("expected level and message, got %q", out)
	}
	if !strings.Contains(out, `"to": 200`) {
		t.Errorf("expected structured field, got %q", out)
	}
}

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	InitLogger(path)
	t.Cleanup(func() {
		Log = zap.NewNop().Sugar()
		ZapLogger = zap.NewNop()
	})

	Log.Info("hello")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Logger initialized") || !strings.Contains(string(data), "hello") {
		t.Errorf("unexpected log file contents %q", data)
	}
}
