// Package monitor implements the liveness probe, crash persistence,
// and target restart steps of the fuzz loop.
package monitor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"upnpfuzz/internal/flog"
)

// Prober is the HTTP dependency the liveness probe needs. Satisfied by
// *upnpclient.Client.
type Prober interface {
	Alive(ctx context.Context, url string) bool
}

// Probe reports whether the target is alive. When aliveURL is empty,
// liveness is unconfigured and always reports true.
func Probe(ctx context.Context, client Prober, aliveURL string) bool {
	if aliveURL == "" {
		return true
	}
	return client.Alive(ctx, aliveURL)
}

// State tracks the monitor's own mutable data: the crash counter and
// the configuration used to save crashes and restart the target.
// Owned exclusively by the fuzz loop; never accessed concurrently.
type State struct {
	CrashDir     string
	RestartCmd   string
	RestartDelay time.Duration

	CrashCount int
}

// NewState builds monitor state from the resolved configuration.
func NewState(crashDir, restartCmd string, restartDelay time.Duration) *State {
	return &State{CrashDir: crashDir, RestartCmd: restartCmd, RestartDelay: restartDelay}
}

// SaveCrash writes request to
// <crash_dir>/<generator>_<strategy>_<ordinal>_at_<HH_MM_SS_DD_MM_YYYY>,
// creating the directory if missing, and returns the path written.
// Errors are returned, never swallowed, per the crash-file-write
// contract.
func SaveCrash(dir, generator, strategy string, ordinal int, request []byte, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("monitor: creating crash directory %s: %w", dir, err)
	}

	name := fmt.Sprintf("%s_%s_%d_at_%s", generator, strategy, ordinal, at.Format("15_04_05_02_01_2006"))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, request, 0o644); err != nil {
		return "", fmt.Errorf("monitor: writing crash file %s: %w", path, err)
	}
	return path, nil
}

// Restart runs the configured restart command and waits for it to
// complete. A non-zero exit is logged and ignored: the liveness-probe
// retry loop, not the restart command's exit code, gates progress.
func Restart(ctx context.Context, cmd string) {
	if cmd == "" {
		return
	}

	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	if err := c.Run(); err != nil {
		flog.Warnf("restart command %q exited with error: %v", cmd, err)
	}
}
