// ABOUTME: Tests for logger construction.
// ABOUTME: Checks formats, level selection and rejection of unknown formats.
package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		format    string
		wantDebug bool
	}{
		{"json default", false, "", false},
		{"json verbose", true, "json", true},
		{"console", false, "console", false},
		{"console verbose", true, "Console", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.verbose, tt.format)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if !logger.Core().Enabled(zapcore.InfoLevel) {
				t.Error("Expected info level to be enabled")
			}
		})
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New(false, "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
	if ValidFormat("xml") {
		t.Error("ValidFormat accepted xml")
	}
	if !ValidFormat("json") || !ValidFormat("") {
		t.Error("ValidFormat rejected json")
	}
}
