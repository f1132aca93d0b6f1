package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"paintlayer/internal/config"
	"paintlayer/pkg/paint"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "test"}, zapcore.AddSync(&buf))
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello", zap.String("scene", "cards"))
	_ = logger.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["logger"] != "test" || entry["scene"] != "cards" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggerConfig{Level: "warn", Format: "console"}, zapcore.AddSync(&buf))
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Errorf("expected only the warning, got %q", buf.String())
	}

	if _, err := NewLogger(config.LoggerConfig{Level: "chatty"}, zapcore.AddSync(&buf)); err == nil {
		t.Error("expected an invalid level to fail")
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "l14.log")
	cfg := config.LoggerConfig{Level: "info", Format: "console", LogFile: file, MaxSize: 1}
	logger, err := NewLogger(cfg, zapcore.AddSync(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("to disk")
	_ = logger.Sync()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"to disk"`) {
		t.Errorf("expected a JSON line in the file, got %q", data)
	}
}

func TestInitializeInstallsPaintLogger(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "l14"}, zapcore.AddSync(&buf))
	paint.Logger().Debug("from paint")
	Sync()
	if !strings.Contains(buf.String(), `"logger":"l14.paint"`) {
		t.Errorf("expected the paint logger to be installed, got %q", buf.String())
	}

	// A second Initialize is ignored.
	Initialize(config.LoggerConfig{Level: "error", Format: "json"}, zapcore.AddSync(&bytes.Buffer{}))
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected the first configuration to stick")
	}
}

func TestInitializeFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "loud", Format: "json"}, zapcore.AddSync(&buf))
	if !strings.Contains(buf.String(), "invalid log level") {
		t.Errorf("expected a warning about the level, got %q", buf.String())
	}
	if GetLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected info level")
	}
}
