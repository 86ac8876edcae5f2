package cci

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Catalog discovers CCI tasks and their parameter contracts.
//
// DescribeTask on an unknown name returns ErrTaskNotFound — it never
// guesses or fuzzy-matches. Both operations are read-only against the
// external tool.
type Catalog interface {
	ListTasks(ctx context.Context) ([]string, error)
	DescribeTask(ctx context.Context, name string) (*TaskDescriptor, error)
}

// catalogTimeout bounds the introspection subcommands. Listing and
// describing tasks is local metadata work for cci, not an org call.
const catalogTimeout = 2 * time.Minute

// CLICatalog implements Catalog by invoking cci's own introspection
// subcommands (`cci task list`, `cci task info`) and parsing their
// textual output. The output grammar is an external contract treated
// as semi-structured text: unrecognized lines are skipped, so additive
// format changes don't break parsing.
type CLICatalog struct {
	runner Runner
}

// NewCLICatalog creates a catalog backed by the given runner.
func NewCLICatalog(runner Runner) *CLICatalog {
	return &CLICatalog{runner: runner}
}

// taskNameRe matches a CCI task identifier: lowercase snake_case,
// optionally namespaced ("npsp:deploy").
var taskNameRe = regexp.MustCompile(`^[a-z0-9_]+(:[a-z0-9_]+)?$`)

// ListTasks returns the known task names in catalog order.
func (c *CLICatalog) ListTasks(ctx context.Context) ([]string, error) {
	res, err := c.runner.Run(ctx, catalogTimeout, "task", "list")
	if err != nil {
		return nil, fmt.Errorf("cci task list: %w", err)
	}
	if !res.Succeeded {
		return nil, fmt.Errorf("cci task list exited %d: %s", res.ExitCode, firstLine(res.Stderr))
	}
	return ParseTaskList(res.Stdout), nil
}

// DescribeTask fetches the parameter contract for one task.
func (c *CLICatalog) DescribeTask(ctx context.Context, name string) (*TaskDescriptor, error) {
	res, err := c.runner.Run(ctx, catalogTimeout, "task", "info", name)
	if err != nil {
		return nil, fmt.Errorf("cci task info %s: %w", name, err)
	}
	if !res.Succeeded {
		// cci exits non-zero for unknown tasks; anything it cannot
		// describe is absent from the catalog as far as we're concerned.
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	desc := ParseTaskInfo(name, res.Stdout)
	return desc, nil
}

// ParseTaskList extracts task names from `cci task list` output.
//
// The real output is a set of grouped tables; a task row starts with a
// snake_case identifier followed by its summary. Headings, rules, and
// anything else that doesn't look like a task row are ignored.
func ParseTaskList(out string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(stripTableRunes(line))
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if !taskNameRe.MatchString(name) || seen[name] {
			continue
		}
		// A lone identifier is a group heading in some cci versions;
		// require a summary column to count it as a task row.
		if len(fields) < 2 {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ParseTaskInfo builds a TaskDescriptor from `cci task info` output.
//
// Option blocks look like:
//
//	--path PATH
//	  Required
//	  The path to the metadata source to be deployed.
//	--check_only CHECKONLY
//	  Optional
//	  Default: False
//
// Everything before the first option block that isn't recognized is
// folded into the task description; unrecognized lines inside a block
// extend the option's description.
func ParseTaskInfo(name, out string) *TaskDescriptor {
	desc := &TaskDescriptor{Name: name}
	var current *ParameterSpec
	var descLines []string

	flush := func() {
		if current != nil {
			current.Description = strings.TrimSpace(current.Description)
			desc.Parameters = append(desc.Parameters, *current)
			current = nil
		}
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(stripTableRunes(raw))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "--") {
			flush()
			optName := strings.TrimPrefix(line, "--")
			if i := strings.IndexAny(optName, " \t"); i >= 0 {
				optName = optName[:i]
			}
			current = &ParameterSpec{Name: optName}
			continue
		}

		if current != nil {
			switch {
			case strings.EqualFold(line, "Required"):
				current.Required = true
			case strings.EqualFold(line, "Optional"):
				current.Required = false
			case strings.HasPrefix(line, "Default:"):
				current.Default = strings.TrimSpace(strings.TrimPrefix(line, "Default:"))
			default:
				if current.Description != "" {
					current.Description += " "
				}
				current.Description += line
			}
			continue
		}

		switch {
		case line == name,
			strings.HasPrefix(line, "Class:"),
			strings.HasPrefix(line, "Command Syntax"),
			strings.HasPrefix(line, "$"),
			strings.HasPrefix(line, "Options"):
			// Structural lines — tolerated, not meaningful.
		case strings.HasPrefix(line, "Description:"):
			descLines = append(descLines, strings.TrimSpace(strings.TrimPrefix(line, "Description:")))
		default:
			descLines = append(descLines, line)
		}
	}
	flush()

	desc.Description = strings.Join(descLines, " ")
	return desc
}

// stripTableRunes removes the box-drawing characters cci uses for its
// rich tables so field splitting sees only content.
func stripTableRunes(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '│', '┃', '─', '━', '┌', '┐', '└', '┘', '├', '┤', '┏', '┓', '┗', '┛', '┣', '┫', '╷', '╵', '═', '║':
			return ' '
		}
		return r
	}, s)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
