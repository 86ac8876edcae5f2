package cci

import (
	"context"
	"errors"
	"strings"
	"time"
)

// OutcomeKind identifies the terminal state a broker run reached.
type OutcomeKind int

const (
	// OutcomeDone — the task executed and exited zero.
	OutcomeDone OutcomeKind = iota
	// OutcomeEnvNotReady — the environment probe failed readiness;
	// nothing was executed.
	OutcomeEnvNotReady
	// OutcomeTaskNotFound — the task is absent from the catalog.
	OutcomeTaskNotFound
	// OutcomeParametersIncomplete — required parameters are missing;
	// terminal for this turn.
	OutcomeParametersIncomplete
	// OutcomeExecutionFailed — the task ran and exited non-zero or
	// timed out.
	OutcomeExecutionFailed
)

// Outcome is the single structured result of a broker run. Exactly the
// fields relevant to Kind are populated; nothing here is ever an
// unstructured failure.
type Outcome struct {
	Kind OutcomeKind

	// Env is set for OutcomeEnvNotReady and carries the remediation.
	Env *EnvironmentState

	// Suggestions is set for OutcomeTaskNotFound: case-insensitive
	// substring matches of the requested name against the catalog, or
	// the full catalog when nothing matches.
	Suggestions []string

	// Prompt is set for OutcomeParametersIncomplete.
	Prompt *MissingParameterPrompt

	// Result is set for OutcomeDone and OutcomeExecutionFailed.
	Result *ExecutionResult
}

// EnvironmentChecker is the slice of Probe the broker depends on.
type EnvironmentChecker interface {
	Check(ctx context.Context) (EnvironmentState, error)
}

// Recorder receives a record of every completed execution. It is
// optional; a nil Recorder disables history.
type Recorder interface {
	RecordRun(ctx context.Context, taskName, org string, res ExecutionResult)
}

// Broker orchestrates the generic task path:
// probe → catalog lookup → describe → resolve → execute.
//
// Each step short-circuits to a terminal outcome on failure, and no
// step is ever retried — a repeated cci invocation may duplicate remote
// side effects, so retries belong to the caller. A Broker holds no
// per-request state and is safe for concurrent use.
type Broker struct {
	env      EnvironmentChecker
	catalog  Catalog
	runner   Runner
	recorder Recorder
	timeout  time.Duration
}

// NewBroker wires a broker from its collaborators. recorder may be nil.
func NewBroker(env EnvironmentChecker, catalog Catalog, runner Runner, recorder Recorder, timeout time.Duration) *Broker {
	return &Broker{
		env:      env,
		catalog:  catalog,
		runner:   runner,
		recorder: recorder,
		timeout:  timeout,
	}
}

// Run drives one invocation request to a terminal outcome. The error
// return is reserved for *ProbeError and for introspection subcommands
// that could not be spawned at all; everything else is an Outcome.
func (b *Broker) Run(ctx context.Context, req InvocationRequest) (Outcome, error) {
	// PROBING — cheap and cached; no subprocess for the task itself is
	// spawned unless the environment is ready.
	env, err := b.env.Check(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !env.Ready {
		return Outcome{Kind: OutcomeEnvNotReady, Env: &env}, nil
	}

	// CATALOG_LOOKUP
	names, err := b.catalog.ListTasks(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !contains(names, req.TaskName) {
		return Outcome{
			Kind:        OutcomeTaskNotFound,
			Suggestions: Suggest(req.TaskName, names),
		}, nil
	}

	// DESCRIBING — NotFound here (a race with the listing) is the same
	// terminal state as a failed lookup.
	desc, err := b.catalog.DescribeTask(ctx, req.TaskName)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return Outcome{
				Kind:        OutcomeTaskNotFound,
				Suggestions: Suggest(req.TaskName, names),
			}, nil
		}
		return Outcome{}, err
	}

	// RESOLVING
	resolved, prompt := Resolve(desc, req.Parameters)
	if prompt != nil {
		return Outcome{Kind: OutcomeParametersIncomplete, Prompt: prompt}, nil
	}

	// EXECUTING
	res, err := b.runner.Run(ctx, b.timeout, TaskArgs(desc, resolved, req.Org)...)
	if err != nil {
		return Outcome{}, err
	}
	if b.recorder != nil {
		b.recorder.RecordRun(ctx, req.TaskName, req.Org, res)
	}
	if !res.Succeeded {
		return Outcome{Kind: OutcomeExecutionFailed, Result: &res}, nil
	}
	return Outcome{Kind: OutcomeDone, Result: &res}, nil
}

// Suggest picks near-miss candidates for an unknown task name: every
// catalog entry that contains the request (or vice versa) as a
// case-insensitive substring, in catalog order. When nothing matches,
// the full catalog is returned so the caller can see what exists.
func Suggest(name string, catalog []string) []string {
	needle := strings.ToLower(name)
	var matches []string
	for _, candidate := range catalog {
		c := strings.ToLower(candidate)
		if strings.Contains(c, needle) || strings.Contains(needle, c) {
			matches = append(matches, candidate)
		}
	}
	if len(matches) == 0 {
		return catalog
	}
	return matches
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
