// sfcore-th-dev: CumulusCI MCP Server
//
// An MCP server that lets AI coding tools drive Salesforce development
// through CumulusCI — scratch org lifecycle, test runs, deploys, and
// any other cci task via a generic dispatcher.
//
// Usage:
//
//	sfcore-th-dev serve    # Start MCP server (stdio or SSE per TRANSPORT)
//	sfcore-th-dev update   # Update to the latest version
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sfcore/th-dev/internal/config"
	ccisrv "github.com/sfcore/th-dev/internal/server"
	"github.com/sfcore/th-dev/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("sfcore-th-dev v%s\n", ccisrv.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	s, cleanup, err := ccisrv.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	if cfg.Transport == config.TransportSSE {
		addr := net.JoinHostPort(cfg.Host, cfg.Port)
		fmt.Fprintf(os.Stderr, "Serving MCP over SSE on %s\n", addr)
		return server.NewSSEServer(s).Start(addr)
	}
	return server.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort — network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(ccisrv.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s → v%s\n"+
				"  Run: sfcore-th-dev update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	result := updater.CheckVersion(ccisrv.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s → v%s, downloading...\n",
		result.CurrentVersion, result.LatestVersion)

	if err := updater.SelfUpdate(ccisrv.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "You can download manually from:\n  %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s. Restart sfcore-th-dev to use the new version.\n", result.LatestVersion)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sfcore-th-dev v%s — CumulusCI MCP Server

Usage:
  sfcore-th-dev serve    Start the MCP server
  sfcore-th-dev update   Update to the latest version

Environment:
  TRANSPORT            stdio (default) or sse
  HOST, PORT           SSE listen address (default 0.0.0.0:8050)
  CCI_BIN              cci executable to use (default "cci")
  CCI_TIMEOUT_MINUTES  per-command timeout (default 25)
  CCI_HISTORY_PATH     run-history database location

MCP configuration:

  {
    "mcpServers": {
      "sfcore-th-dev": {
        "command": "sfcore-th-dev",
        "args": ["serve"]
      }
    }
  }
`, ccisrv.Version)
}
