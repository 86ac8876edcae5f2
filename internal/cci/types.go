// Package cci wraps the CumulusCI command-line tool.
//
// It covers four concerns: probing whether cci and its devenv are usable,
// discovering tasks and their parameter contracts through cci's own
// introspection subcommands, resolving caller-supplied parameters against
// those contracts, and executing the resulting command under a bounded
// timeout. The Broker orchestrates all four for tasks that have no
// dedicated MCP tool.
package cci

import (
	"errors"
	"fmt"
	"time"
)

// ErrTaskNotFound is returned by DescribeTask when the named task does
// not exist in the catalog. It is a sentinel — callers match it with
// errors.Is and must never treat it as a hard failure.
var ErrTaskNotFound = errors.New("cci task not found")

// ProbeError reports that the probe mechanism itself could not run —
// the hosting shell cannot spawn subprocesses at all. This is the only
// condition in the package that aborts a request instead of producing
// a normal outcome.
type ProbeError struct {
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("environment probe unavailable: %v", e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// EnvironmentState is an immutable snapshot of CCI runtime readiness.
// Remediation is populated exactly when Ready is false.
type EnvironmentState struct {
	CheckedAt   time.Time
	Ready       bool
	ToolVersion string
	Remediation []string
}

// ParameterSpec describes one declared option of a CCI task.
// An empty Default means the task declares no default for the option.
type ParameterSpec struct {
	Name        string
	Required    bool
	Default     string
	Description string
}

// TaskDescriptor is the parameter contract of a single task, fetched
// per invocation from `cci task info` and never persisted.
type TaskDescriptor struct {
	Name        string
	Description string
	Parameters  []ParameterSpec
}

// Spec returns the ParameterSpec with the given name, or nil.
func (d *TaskDescriptor) Spec(name string) *ParameterSpec {
	for i := range d.Parameters {
		if d.Parameters[i].Name == name {
			return &d.Parameters[i]
		}
	}
	return nil
}

// InvocationRequest is the caller's intent for the generic task path.
// It is immutable once constructed; the broker never mutates it.
type InvocationRequest struct {
	TaskName   string
	Parameters map[string]string
	Org        string
}

// ExecutionResult captures one subprocess run. Succeeded is derived
// strictly from ExitCode == 0; the two never disagree.
type ExecutionResult struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
	Succeeded bool
}

// MissingParameterPrompt lists the required parameters a caller must
// supply before a task can run, in descriptor order. It is terminal
// for the current turn: resolution is stateless and re-derived from
// the full supplied set on every attempt.
type MissingParameterPrompt struct {
	TaskName string
	Missing  []ParameterSpec
}
