// Package radamsa adapts an external byte-mutation engine (normally
// the radamsa binary) as a child process: write the input to its
// stdin, read its stdout to completion, discard stderr.
package radamsa

import (
	"bytes"
	"context"
	"os/exec"

	"upnpfuzz/internal/flog"
)

const defaultBinary = "radamsa"

// Mutator invokes an external command-line byte mutator. When the
// binary can't be resolved on PATH it degrades to an identity
// function for the session instead of failing fuzzing outright.
type Mutator struct {
	binary  string
	enabled bool
}

// New resolves path (or the default "radamsa" binary) on PATH. If it
// can't be found, the mutator is disabled and Fuzz becomes a no-op.
func New(path string) *Mutator {
	bin := defaultBinary
	if path != "" {
		bin = path
	}

	if _, err := exec.LookPath(bin); err != nil {
		flog.Warnf("radamsa binary %q not found on PATH: %v", bin, err)
		return &Mutator{binary: bin, enabled: false}
	}

	return &Mutator{binary: bin, enabled: true}
}

// Enabled reports whether the external mutator could be resolved.
func (m *Mutator) Enabled() bool { return m.enabled }

// Fuzz pipes input through the external mutator and returns its
// output. When the mutator is disabled, input is returned unchanged.
// The child's stderr is discarded; there is no timeout on the child
// (§9 notes this as an open question — ctx lets a caller impose one).
func (m *Mutator) Fuzz(ctx context.Context, input []byte) []byte {
	if !m.enabled {
		return input
	}

	cmd := exec.CommandContext(ctx, m.binary)
	cmd.Stdin = bytes.NewReader(input)

	out, err := cmd.Output()
	if err != nil {
		flog.Warnf("radamsa invocation failed: %v", err)
		return input
	}

	return out
}
