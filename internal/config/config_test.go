package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolveAppliesDefaults(t *testing.T) {
	o := Options{Mode: ModeSSDP, Target: "10.0.0.1:1900", Action: ActionRaw}
	if err := o.Resolve(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.CrashDir != DefaultCrashDir {
		t.Errorf("expected default crash dir, got %q", o.CrashDir)
	}
	if o.RestartDelay != DefaultRestartDelay {
		t.Errorf("expected default restart delay, got %v", o.RestartDelay)
	}
	if o.NetworkTimeout != DefaultNetworkTimeout {
		t.Errorf("expected default network timeout, got %v", o.NetworkTimeout)
	}
}

func TestResolveRequiresModeAndTarget(t *testing.T) {
	o := Options{Action: ActionRaw}
	if err := o.Resolve(); err == nil {
		t.Fatal("expected error for missing mode/target")
	}
}

func TestResolveRejectsListOutsideSOAP(t *testing.T) {
	o := Options{Mode: ModeSSDP, Target: "10.0.0.1:1900", Action: ActionList}
	if err := o.Resolve(); err == nil {
		t.Fatal("expected error: --list is only valid with --soap")
	}
}

func TestResolveRejectsUnknownStrategy(t *testing.T) {
	o := Options{Mode: ModeSOAP, Target: "http://10.0.0.1/d.xml", Action: ActionFuzz, Strategy: "bogus"}
	if err := o.Resolve(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestResolveSkipsValidationForDiscover(t *testing.T) {
	o := Options{Action: ActionDiscover}
	if err := o.Resolve(); err != nil {
		t.Fatalf("discover mode should never fail validation: %v", err)
	}
}

func TestLoadOverlayExplicitFlagWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("alive_url: http://should-not-apply\nrestart_delay: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := Options{
		Mode: ModeSSDP, Target: "10.0.0.1:1900", Action: ActionRaw,
		ConfigFile: path, AliveURL: "http://explicit",
		// main.go's cobra flags always populate RestartDelay with their
		// own default before Resolve runs; mirror that here so the
		// overlay's "only fill in values left at default" check fires.
		RestartDelay: DefaultRestartDelay,
	}
	if err := o.Resolve(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.AliveURL != "http://explicit" {
		t.Errorf("expected explicit flag to win, got %q", o.AliveURL)
	}
	if o.RestartDelay != 99*time.Second {
		t.Errorf("expected overlay restart delay to apply, got %v", o.RestartDelay)
	}
}
