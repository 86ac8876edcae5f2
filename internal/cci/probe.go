package cci

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// lookPath is a package-level var to allow test injection.
var lookPath = exec.LookPath

// versionTimeout bounds the `cci version` call. The probe must stay
// cheap — it runs ahead of every operation.
const versionTimeout = 30 * time.Second

// Probe determines whether the cci binary and its devenv are usable.
// It is a pure query against the host: it never creates or modifies
// anything, only reports what remediation would.
//
// The last verdict is cached for the process lifetime; Refresh bypasses
// the cache. The cache is a snapshot replaced wholesale under the lock,
// so concurrent readers never observe a partial update.
type Probe struct {
	runner    Runner
	bin       string
	devenvDir string

	mu   sync.RWMutex
	last *EnvironmentState
}

// NewProbe creates a Probe. devenvDir is the directory of the named
// virtual environment cci is expected to run inside; empty disables
// the devenv check.
func NewProbe(runner Runner, bin, devenvDir string) *Probe {
	return &Probe{runner: runner, bin: bin, devenvDir: devenvDir}
}

// Check returns the cached readiness snapshot, computing it on first use.
// "Not ready" is a normal outcome; the error return is reserved for
// *ProbeError — the subprocess mechanism itself being unusable.
func (p *Probe) Check(ctx context.Context) (EnvironmentState, error) {
	p.mu.RLock()
	cached := p.last
	p.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}
	return p.Refresh(ctx)
}

// Refresh recomputes readiness, bypassing and replacing the cache.
func (p *Probe) Refresh(ctx context.Context) (EnvironmentState, error) {
	state, err := p.probe(ctx)
	if err != nil {
		return EnvironmentState{}, err
	}

	p.mu.Lock()
	p.last = &state
	p.mu.Unlock()
	return state, nil
}

// probe performs the actual inspection. Remediation composition is
// deterministic: the same failure class always yields the same ordered
// command sequence, so repeated checks compare equal.
func (p *Probe) probe(ctx context.Context) (EnvironmentState, error) {
	state := EnvironmentState{CheckedAt: time.Now()}

	binMissing := false
	if _, err := lookPath(p.bin); err != nil {
		binMissing = true
	}

	devenvMissing := false
	if p.devenvDir != "" {
		if info, err := os.Stat(p.devenvDir); err != nil || !info.IsDir() {
			devenvMissing = true
		}
	}

	if !binMissing {
		res, err := p.runner.Run(ctx, versionTimeout, "version")
		if err != nil {
			// The binary resolved but could not be spawned: the probe
			// mechanism itself is broken, which is the one hard failure.
			return EnvironmentState{}, &ProbeError{Err: err}
		}
		if res.Succeeded {
			state.ToolVersion = parseVersion(res.Stdout)
		} else {
			// Installed but not runnable (broken install, wrong venv).
			binMissing = true
		}
	}

	if !binMissing && !devenvMissing {
		state.Ready = true
		return state, nil
	}

	state.Remediation = remediation(binMissing, devenvMissing, p.devenvDir)
	return state, nil
}

// remediation composes the ordered shell commands that take the host
// from the observed failure class to a ready state: create the runtime,
// install the tool with its Azure DevOps extension, verify.
func remediation(binMissing, devenvMissing bool, devenvDir string) []string {
	var cmds []string
	if devenvMissing && devenvDir != "" {
		cmds = append(cmds, "python3 -m venv "+devenvDir)
	}
	if binMissing {
		cmds = append(cmds,
			"pipx install cumulusci-plus-azure-devops --include-deps --force",
		)
	}
	cmds = append(cmds, "cci version")
	return cmds
}

// parseVersion extracts the version token from `cci version` output.
// The output is semi-structured text ("CumulusCI version: 3.90.0 ...");
// anything unrecognized yields the first trimmed line as-is.
func parseVersion(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	line = strings.TrimSpace(line)
	if _, after, found := strings.Cut(line, ":"); found {
		fields := strings.Fields(after)
		if len(fields) > 0 {
			return fields[0]
		}
	}
	return line
}
