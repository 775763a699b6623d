package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNew_WritesJSONAtLevel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(dir, "warn", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Infow("dropped")
	log.Warnw("template reload failed", "template", "greet")
	_ = log.Sync()

	raw, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if strings.Contains(out, `"dropped"`) {
		t.Errorf("info line written at warn level:\n%s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"template":"greet"`) {
		t.Errorf("warn line missing:\n%s", out)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(t.TempDir(), "loud", false); err == nil {
		t.Fatalf("unknown level accepted")
	}
}
