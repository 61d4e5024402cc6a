package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes key values", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "job", "j1")
		logger.Info("polled", "status", "running")

		out := buf.String()
		if !strings.Contains(out, "job=j1") || !strings.Contains(out, "status=running") {
			t.Errorf("unexpected log output: %q", out)
		}
	})

	t.Run("NewFileLogger creates parents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger: %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}
	})
}

func TestClamp(t *testing.T) {
	tt := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-2, -1, 1, -1},
		{3, 0, 1, 1},
		{1, 0, 1, 1},
	}
	for _, tc := range tt {
		if got := Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b || len(a) != 36 {
		t.Errorf("unexpected ids %q %q", a, b)
	}
}

func TestOpenURL(t *testing.T) {
	var gotName string
	var gotArgs []string
	origCmd, origRT := openCommand, getRuntime
	defer func() { openCommand, getRuntime = origCmd, origRT }()
	openCommand = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	getRuntime = func() string { return "linux" }

	if err := OpenURL("http://localhost:8000/files/master.wav"); err != nil {
		t.Fatalf("OpenURL: %v", err)
	}
	if gotName != "xdg-open" || len(gotArgs) != 1 {
		t.Errorf("unexpected command %s %v", gotName, gotArgs)
	}

	if err := OpenURL("javascript:alert(1)"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}
