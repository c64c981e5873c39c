package monitor

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

type stubProber struct{ alive bool }

func (s *stubProber) Alive(_ context.Context, _ string) bool { return s.alive }

func TestProbeAlwaysAliveWhenUnconfigured(t *testing.T) {
	if !Probe(context.Background(), &stubProber{alive: false}, "") {
		t.Fatal("expected liveness to be true when no alive-URL is configured")
	}
}

func TestProbeDelegatesToClientWhenConfigured(t *testing.T) {
	if Probe(context.Background(), &stubProber{alive: false}, "http://target/alive") {
		t.Fatal("expected probe to report dead")
	}
	if !Probe(context.Background(), &stubProber{alive: true}, "http://target/alive") {
		t.Fatal("expected probe to report alive")
	}
}

func TestSaveCrashWritesFileWithExpectedNamePattern(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 5, 9, 30, 12, 0, time.UTC)

	path, err := SaveCrash(dir, "esp", "injection", 1, []byte("payload"), at)
	if err != nil {
		t.Fatalf("SaveCrash: %v", err)
	}

	name := filepath.Base(path)
	pattern := regexp.MustCompile(`^esp_injection_1_at_\d\d_\d\d_\d\d_\d\d_\d\d_\d\d\d\d$`)
	if !pattern.MatchString(name) {
		t.Fatalf("crash file name %q does not match expected pattern", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading crash file: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("expected crash file contents to match request bytes, got %q", data)
	}
}

func TestSaveCrashCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "crash_dir")
	if _, err := os.Stat(dir); err == nil {
		t.Fatal("expected directory to not yet exist")
	}

	if _, err := SaveCrash(dir, "ssdp", "overflow", 2, []byte("x"), time.Now()); err != nil {
		t.Fatalf("SaveCrash: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected crash directory to be created: %v", err)
	}
}

func TestRestartIgnoresNonZeroExit(t *testing.T) {
	Restart(context.Background(), "exit 1")
}

func TestRestartIsNoOpWhenUnconfigured(t *testing.T) {
	Restart(context.Background(), "")
}
