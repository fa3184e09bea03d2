package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetDefault(t *testing.T) {
	mu.Lock()
	log = nil
	mu.Unlock()

	if got := Get().GetLevel(); got != logrus.WarnLevel {
		t.Errorf("default level = %v, want warn", got)
	}
	if Get() != Get() {
		t.Error("Get returned different loggers")
	}
}

func TestInitLevels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		if err := Init(tt.level, "", false); err != nil {
			t.Fatalf("Init(%q) failed: %v", tt.level, err)
		}
		if got := Get().GetLevel(); got != tt.want {
			t.Errorf("Init(%q): level = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestInitLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bitgrid.log")
	if err := Init("debug", path, false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	WithComponent("bitarray").Debug("allocated bit array")
	Infof("launch of %d threads", 64)
	Debugf("hidden? %v", false)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{"component=bitarray", "allocated bit array", "launch of 64 threads"} {
		if !strings.Contains(out, want) {
			t.Errorf("log file missing %q:\n%s", want, out)
		}
	}
}

func TestInitLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitgrid.log")
	if err := Init("error", path, false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	Warnf("should be filtered")
	Errorf("device lost")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "should be filtered") {
		t.Error("warn message written at error level")
	}
	if !strings.Contains(string(data), "device lost") {
		t.Error("error message missing")
	}
}
