package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sfcore/th-dev/internal/cci"
)

// --- Test helpers ---

// fakeProbe is a canned Prober.
type fakeProbe struct {
	state    cci.EnvironmentState
	err      error
	checks   int
	refreshs int
}

func (f *fakeProbe) Check(ctx context.Context) (cci.EnvironmentState, error) {
	f.checks++
	return f.state, f.err
}

func (f *fakeProbe) Refresh(ctx context.Context) (cci.EnvironmentState, error) {
	f.refreshs++
	return f.state, f.err
}

// fakeRunner scripts subprocess results by joined arguments.
type fakeRunner struct {
	results map[string]cci.ExecutionResult
	calls   [][]string
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (cci.ExecutionResult, error) {
	f.calls = append(f.calls, args)
	if res, ok := f.results[strings.Join(args, " ")]; ok {
		return res, nil
	}
	return cci.ExecutionResult{ExitCode: 0, Succeeded: true, Stdout: "ok\n"}, nil
}

func readyProbe() *fakeProbe {
	return &fakeProbe{state: cci.EnvironmentState{Ready: true, ToolVersion: "3.90.0"}}
}

func notReadyProbe() *fakeProbe {
	return &fakeProbe{state: cci.EnvironmentState{
		Remediation: []string{
			"python3 -m venv /home/u/.cci-devenv",
			"pipx install cumulusci-plus-azure-devops --include-deps --force",
			"cci version",
		},
	}}
}

func testDeps(probe Prober, runner cci.Runner) Deps {
	return Deps{Probe: probe, Runner: runner, Timeout: time.Minute}
}

// resultText extracts the text payload of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// --- check_cci_installation ---

func TestCheckInstallationReady(t *testing.T) {
	tool := NewCheckInstallationTool(readyProbe())
	res, err := tool.Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "3.90.0") || !strings.Contains(text, "Ready") {
		t.Errorf("text = %q", text)
	}
}

func TestCheckInstallationNotReadyListsRemediation(t *testing.T) {
	tool := NewCheckInstallationTool(notReadyProbe())
	res, err := tool.Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "1. `python3 -m venv") {
		t.Errorf("remediation missing or unordered: %q", text)
	}
	if !strings.Contains(text, "pipx install cumulusci-plus-azure-devops") {
		t.Errorf("install step missing: %q", text)
	}
}

func TestCheckInstallationRefreshBypassesCache(t *testing.T) {
	probe := readyProbe()
	tool := NewCheckInstallationTool(probe)
	if _, err := tool.Handle(context.Background(), callReq(map[string]any{"refresh": true})); err != nil {
		t.Fatal(err)
	}
	if probe.refreshs != 1 || probe.checks != 0 {
		t.Errorf("refreshs=%d checks=%d", probe.refreshs, probe.checks)
	}
}

// --- environment gate ---

func TestGateBlocksExecutionWhenNotReady(t *testing.T) {
	runner := &fakeRunner{}
	tool := NewRunTestsTool(testDeps(notReadyProbe(), runner))

	res, err := tool.Handle(context.Background(), callReq(map[string]any{"org_name": "dev"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), "Not Ready") {
		t.Errorf("text = %q", resultText(t, res))
	}
	if len(runner.calls) != 0 {
		t.Errorf("no subprocess may be spawned when not ready, got %v", runner.calls)
	}
}

// --- run_tests / deploy argument templates ---

func TestRunTestsTemplate(t *testing.T) {
	runner := &fakeRunner{}
	tool := NewRunTestsTool(testDeps(readyProbe(), runner))

	if _, err := tool.Handle(context.Background(), callReq(map[string]any{"org_name": "qa"})); err != nil {
		t.Fatal(err)
	}
	want := "task run run_all_tests_locally --org qa"
	if len(runner.calls) != 1 || strings.Join(runner.calls[0], " ") != want {
		t.Errorf("calls = %v, want [%s]", runner.calls, want)
	}
}

func TestDeployTemplate(t *testing.T) {
	runner := &fakeRunner{}
	tool := NewDeployTool(testDeps(readyProbe(), runner))

	_, err := tool.Handle(context.Background(), callReq(map[string]any{
		"org_name":   "dev",
		"path":       "force-app",
		"check_only": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := "task run deploy --org dev --check_only true --path force-app"
	if strings.Join(runner.calls[0], " ") != want {
		t.Errorf("args = %v, want %s", runner.calls[0], want)
	}
}

func TestDeployRequiresOrg(t *testing.T) {
	tool := NewDeployTool(testDeps(readyProbe(), &fakeRunner{}))
	res, err := tool.Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("missing org_name must be a tool error")
	}
}

func TestOrgNameValidation(t *testing.T) {
	tool := NewOpenOrgTool(testDeps(readyProbe(), &fakeRunner{}))
	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"org_name": "dev; rm -rf /",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("hostile org_name must be rejected")
	}
}

// --- scratch org guard ---

const orgListWithDev = `
│ dev      │ Connected │ 2026-09-01 │
│ qa       │ Connected │ 2026-09-03 │
`

func TestScratchOrgExistingAsksForConfirmation(t *testing.T) {
	runner := &fakeRunner{results: map[string]cci.ExecutionResult{
		"org list": {ExitCode: 0, Succeeded: true, Stdout: orgListWithDev},
	}}
	tool := NewDevScratchOrgTool(testDeps(readyProbe(), runner))

	res, err := tool.Handle(context.Background(), callReq(map[string]any{"org_name": "dev"}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Already Exists") || !strings.Contains(text, "replace=true") {
		t.Errorf("text = %q", text)
	}
	// Only org list ran; no remove, no flow.
	if len(runner.calls) != 1 {
		t.Errorf("calls = %v", runner.calls)
	}
}

func TestScratchOrgReplaceRemovesThenCreates(t *testing.T) {
	runner := &fakeRunner{results: map[string]cci.ExecutionResult{
		"org list": {ExitCode: 0, Succeeded: true, Stdout: orgListWithDev},
	}}
	tool := NewDevScratchOrgTool(testDeps(readyProbe(), runner))

	if _, err := tool.Handle(context.Background(), callReq(map[string]any{
		"org_name": "dev",
		"replace":  true,
	})); err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, call := range runner.calls {
		got = append(got, strings.Join(call, " "))
	}
	want := []string{
		"org list",
		"org remove --org dev",
		"flow run dev_org --org dev",
	}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScratchOrgFreshNameCreatesDirectly(t *testing.T) {
	runner := &fakeRunner{results: map[string]cci.ExecutionResult{
		"org list": {ExitCode: 0, Succeeded: true, Stdout: orgListWithDev},
	}}
	tool := NewBetaScratchOrgTool(testDeps(readyProbe(), runner))

	if _, err := tool.Handle(context.Background(), callReq(nil)); err != nil {
		t.Fatal(err)
	}
	last := strings.Join(runner.calls[len(runner.calls)-1], " ")
	if last != "flow run regression_org --org beta" {
		t.Errorf("last call = %q", last)
	}
}

func TestOrgListedExactAliasOnly(t *testing.T) {
	out := "│ devhub │ Connected │\n│ dev │ Connected │\n"
	if !orgListed(out, "dev") {
		t.Error("dev should be listed")
	}
	if orgListed(out, "de") {
		t.Error("prefix must not match")
	}
	if orgListed("│ devhub │\n", "dev") {
		t.Error("dev must not match devhub")
	}
}
