package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel, "WARN": zapcore.WarnLevel, "warning": zapcore.WarnLevel,
		"error": zapcore.ErrorLevel, "": zapcore.InfoLevel, "bogus": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Errorf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestBuild_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := build(zapcore.AddSync(&buf), zapcore.InfoLevel)
	log.Debug("hidden")
	log.Info("repayment approved", zap.String("repayment_id", "r1"))
	_ = log.Sync()

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("not a single JSON line: %q (%v)", buf.String(), err)
	}
	if entry["msg"] != "repayment approved" || entry["repayment_id"] != "r1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNew_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chama.log")
	log, err := New(Config{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hello")
	_ = log.Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected link %s: %v", path, err)
	}
}

func TestNew_Dev(t *testing.T) {
	log, err := New(Config{Dev: true, Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be enabled")
	}
}
