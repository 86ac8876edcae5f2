package cci

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeRunner scripts subprocess results by leading arguments.
type fakeRunner struct {
	results map[string]ExecutionResult
	err     error
	calls   [][]string
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (ExecutionResult, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return ExecutionResult{}, f.err
	}
	key := strings.Join(args, " ")
	if res, ok := f.results[key]; ok {
		return res, nil
	}
	return ExecutionResult{ExitCode: 1, Stderr: "no scripted result for: " + key}, nil
}

func ok(stdout string) ExecutionResult {
	return ExecutionResult{ExitCode: 0, Stdout: stdout, Succeeded: true}
}

const sampleTaskList = `
Project Tasks
┌──────────────────────┬────────────────────────────────────────────┐
│ deploy               │ Deploys the metadata source to an org      │
│ retrieve_changes     │ Retrieve changed components from an org    │
│ run_all_tests_locally│ Run every unit test and static scan        │
└──────────────────────┴────────────────────────────────────────────┘

Release Operations
│ github_release       │ Create a GitHub release tag                │

Use "cci task info <name>" for more details.
`

func TestParseTaskList(t *testing.T) {
	got := ParseTaskList(sampleTaskList)
	want := []string{"deploy", "retrieve_changes", "run_all_tests_locally", "github_release"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTaskList = %v, want %v", got, want)
	}
}

func TestParseTaskListIgnoresUnknownLines(t *testing.T) {
	// Additive format changes must not break the parser.
	got := ParseTaskList("NEW BANNER LINE\n!!experimental!!\n│ deploy │ Deploys things │\n")
	if !reflect.DeepEqual(got, []string{"deploy"}) {
		t.Errorf("ParseTaskList = %v, want [deploy]", got)
	}
}

const sampleTaskInfo = `
deploy

Description: Deploys the post-install metadata source to the target org.
Class: cumulusci.tasks.salesforce.Deploy

Command Syntax

    $ cci task run deploy

Options

    --path PATH
      Required
      The path to the metadata source to be deployed.
    --check_only CHECKONLY
      Optional
      Default: False
      If True, performs a validation deploy only.
    --test_level TESTLEVEL
      Optional
      Specifies which tests are run as part of the deployment.
`

func TestParseTaskInfo(t *testing.T) {
	desc := ParseTaskInfo("deploy", sampleTaskInfo)

	if desc.Name != "deploy" {
		t.Errorf("Name = %q", desc.Name)
	}
	if !strings.Contains(desc.Description, "post-install metadata") {
		t.Errorf("Description = %q", desc.Description)
	}

	want := []ParameterSpec{
		{Name: "path", Required: true, Description: "The path to the metadata source to be deployed."},
		{Name: "check_only", Default: "False", Description: "If True, performs a validation deploy only."},
		{Name: "test_level", Description: "Specifies which tests are run as part of the deployment."},
	}
	if !reflect.DeepEqual(desc.Parameters, want) {
		t.Errorf("Parameters = %+v\nwant %+v", desc.Parameters, want)
	}
}

func TestCLICatalogListTasks(t *testing.T) {
	runner := &fakeRunner{results: map[string]ExecutionResult{
		"task list": ok(sampleTaskList),
	}}
	catalog := NewCLICatalog(runner)

	names, err := catalog.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(names) != 4 || names[0] != "deploy" {
		t.Errorf("names = %v", names)
	}
}

func TestCLICatalogDescribeUnknownTask(t *testing.T) {
	runner := &fakeRunner{results: map[string]ExecutionResult{}}
	catalog := NewCLICatalog(runner)

	_, err := catalog.DescribeTask(context.Background(), "no_such_task")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestCLICatalogDescribeTask(t *testing.T) {
	runner := &fakeRunner{results: map[string]ExecutionResult{
		"task info deploy": ok(sampleTaskInfo),
	}}
	catalog := NewCLICatalog(runner)

	desc, err := catalog.DescribeTask(context.Background(), "deploy")
	if err != nil {
		t.Fatalf("DescribeTask: %v", err)
	}
	if spec := desc.Spec("path"); spec == nil || !spec.Required {
		t.Errorf("path spec = %+v", spec)
	}
}
