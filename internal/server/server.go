// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"errors"
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sfcore/th-dev/internal/cci"
	"github.com/sfcore/th-dev/internal/config"
	"github.com/sfcore/th-dev/internal/history"
	"github.com/sfcore/th-dev/internal/prompts"
	"github.com/sfcore/th-dev/internal/resources"
	"github.com/sfcore/th-dev/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

var errHistoryDisabled = errors.New("no history path configured")

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the run-history database and
// must be called on shutdown (typically via defer). It is always
// non-nil and safe to call even if history init failed.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	runner := cci.NewExecutor(cfg.CCIBin)
	probe := cci.NewProbe(runner, cfg.CCIBin, cfg.DevenvDir)
	catalog := cci.NewCLICatalog(runner)

	// Run history is an independent subsystem: when it fails to
	// initialize, task execution continues without archiving. We log
	// a warning and skip the history tool — every other tool still
	// works.
	cleanup := noop
	var recorder cci.Recorder
	var store *history.Store
	histErr := errHistoryDisabled
	if cfg.HistoryPath != "" {
		store, histErr = history.Open(cfg.HistoryPath)
	}
	if histErr != nil {
		log.Printf("WARNING: run history disabled: %v", histErr)
	} else {
		recorder = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Printf("WARNING: history store close: %v", err)
			}
		}
	}

	broker := cci.NewBroker(probe, catalog, runner, recorder, cfg.TaskTimeout)

	// Tasks declared in the working directory's cumulusci.yml are
	// surfaced in not-found suggestions. A missing or unreadable
	// project file is not an error here — the server can run outside
	// a project checkout.
	var projectTasks []string
	project, projErr := config.LoadProject(".")
	if projErr != nil {
		log.Printf("WARNING: cumulusci.yml not loaded: %v", projErr)
	} else {
		projectTasks = project.TaskNames()
	}

	deps := tools.Deps{
		Probe:    probe,
		Runner:   runner,
		Recorder: recorder,
		Timeout:  cfg.TaskTimeout,
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"sfcore-th-dev",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register environment tools ---

	checkTool := tools.NewCheckInstallationTool(probe)
	s.AddTool(checkTool.Definition(), checkTool.Handle)

	// --- Register org tools ---

	devOrgTool := tools.NewDevScratchOrgTool(deps)
	s.AddTool(devOrgTool.Definition(), devOrgTool.Handle)

	featureOrgTool := tools.NewFeatureScratchOrgTool(deps)
	s.AddTool(featureOrgTool.Definition(), featureOrgTool.Handle)

	betaOrgTool := tools.NewBetaScratchOrgTool(deps)
	s.AddTool(betaOrgTool.Definition(), betaOrgTool.Handle)

	listOrgsTool := tools.NewListOrgsTool(deps)
	s.AddTool(listOrgsTool.Definition(), listOrgsTool.Handle)

	openOrgTool := tools.NewOpenOrgTool(deps)
	s.AddTool(openOrgTool.Definition(), openOrgTool.Handle)

	// --- Register metadata tools ---

	runTestsTool := tools.NewRunTestsTool(deps)
	s.AddTool(runTestsTool.Definition(), runTestsTool.Handle)

	retrieveTool := tools.NewRetrieveChangesTool(deps)
	s.AddTool(retrieveTool.Definition(), retrieveTool.Handle)

	deployTool := tools.NewDeployTool(deps)
	s.AddTool(deployTool.Definition(), deployTool.Handle)

	// --- Register the generic task tool ---

	genericTool := tools.NewGenericTaskTool(broker, projectTasks)
	s.AddTool(genericTool.Definition(), genericTool.Handle)

	if histErr == nil {
		historyTool := tools.NewRunHistoryTool(store)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register prompts ---

	setupPrompt := prompts.NewSetupPrompt()
	s.AddPrompt(setupPrompt.Definition(), setupPrompt.Handle)

	statusPrompt := prompts.NewOrgStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	docs := resources.NewHandler()
	for _, res := range docs.Definitions() {
		s.AddResource(res, docs.Handle)
	}

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when history
// is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the server effectively.
func serverInstructions() string {
	return `You have access to sfcore-th-dev, an MCP server that drives CumulusCI
(the cci CLI) for Salesforce development.

## FIRST STEP — ALWAYS

Before any other tool, call check_cci_installation. Every tool refuses to run
commands while the environment is not ready, and the check result tells you
exactly what to ask the user to fix. If the user reports they installed cci
mid-session, call check_cci_installation with refresh=true to re-probe.

## ORG LIFECYCLE

- create_dev_scratch_org / create_feature_scratch_org / create_beta_scratch_org
  create scratch orgs with the matching CumulusCI flow. If an org with the
  requested name already exists, the tool asks for confirmation first — call
  it again with replace=true only after the user agrees.
- list_orgs shows every org cci knows about and which are connected.
- open_org opens an org in the browser for the user.

Org creation runs a full flow and can take many minutes — tell the user it is
a long operation before you start it.

## DEVELOPMENT TASKS

- run_tests runs all Apex tests locally in the chosen org.
- retrieve_changes pulls metadata changes from the org into the repo.
- deploy pushes local metadata to the org; use check_only=true for a
  validation-only deploy and path to deploy a subtree.

## EVERYTHING ELSE — run_generic_cci_task

For any cci task without a dedicated tool, use run_generic_cci_task:

1. Call it with just task_name. If the task exists and all required options
   have values (supplied or defaulted), it runs.
2. If the task is unknown, the response lists similar task names and tasks
   declared in the project's cumulusci.yml — pick one and retry.
3. If required options are missing, the response names each one with its
   description. Ask the user for values, then call again with the parameters
   argument as a JSON object, e.g. {"path": "force-app", "timeout": 120}.

Never invent option values — ask the user.

## OUTPUT HANDLING

Tool results include the command that ran, the exit code, and the tool's
stdout/stderr verbatim. When a command fails, show the user the stderr rather
than paraphrasing it, and do NOT retry automatically — failed commands often
have side effects in the org.

## RESOURCES

framework:// resources document the in-repo framework conventions
(trigger handlers, logging, platform cache). Read them before writing or
reviewing code that touches those areas.`
}
