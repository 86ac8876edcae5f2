package cci

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"syscall"
	"time"
)

// TimedOutExitCode is the sentinel exit code reported when a run is
// killed for exceeding its wall-clock budget.
const TimedOutExitCode = -1

// Runner executes one cci subcommand and returns its captured result.
// An error is returned only when the subprocess machinery itself fails
// (binary unresolvable, fork/exec impossible) — a non-zero exit or a
// timeout is a normal ExecutionResult, not an error.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, args ...string) (ExecutionResult, error)
}

// Executor runs the cci binary as a subprocess. It holds no state about
// what a run mutated; remote side effects are the whole point of the tool.
type Executor struct {
	bin string
}

// NewExecutor creates an Executor for the given cci binary name or path.
func NewExecutor(bin string) *Executor {
	return &Executor{bin: bin}
}

// Run invokes `<bin> <args...>` with no interactive stdin, capturing
// stdout and stderr separately under the given wall-clock budget.
//
// On timeout the whole process group is killed and the result carries
// TimedOutExitCode with Succeeded=false. The group kill matters: cci
// flows spawn child processes (sfdx, node) that must be reaped with
// their parent, not orphaned.
func (e *Executor) Run(ctx context.Context, timeout time.Duration, args ...string) (ExecutionResult, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.Command(e.bin, args...)
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return ExecutionResult{}, fmt.Errorf("starting %s: %w", e.bin, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	timedOut := false
	select {
	case <-runCtx.Done():
		// Kill the process group (negative pid) and wait for the
		// process to actually exit so nothing is orphaned.
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
		timedOut = true
	case waitErr = <-done:
	}

	res := ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if timedOut {
		res.ExitCode = TimedOutExitCode
		return res, nil
	}

	if waitErr != nil {
		exitErr, ok := waitErr.(*exec.ExitError)
		if !ok {
			return ExecutionResult{}, fmt.Errorf("running %s: %w", e.bin, waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	res.Succeeded = res.ExitCode == 0
	return res, nil
}

// TaskArgs builds the argument vector for `cci task run`. Parameters
// become discrete `--name value` pairs — never a shell-interpolated
// string, so values cannot inject further commands.
//
// Descriptor-declared parameters come first in declaration order;
// undeclared extras follow sorted by name so the vector is stable.
func TaskArgs(desc *TaskDescriptor, params map[string]string, org string) []string {
	args := []string{"task", "run", desc.Name}
	if org != "" {
		args = append(args, "--org", org)
	}

	seen := make(map[string]bool, len(params))
	for _, spec := range desc.Parameters {
		if v, ok := params[spec.Name]; ok {
			args = append(args, "--"+spec.Name, v)
			seen[spec.Name] = true
		}
	}

	var extras []string
	for name := range params {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		args = append(args, "--"+name, params[name])
	}
	return args
}
