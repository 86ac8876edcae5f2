// Package config loads runtime configuration from environment variables.
// All fields have safe defaults so the binary runs locally without any
// env setup. The server owns no persisted configuration of its own —
// everything here describes where to find cci and how to talk to callers.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Transport values accepted by the TRANSPORT env var.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config holds runtime configuration for the sfcore-th-dev server.
type Config struct {
	// CCIBin is the cci executable name or path. CCI_BIN — default "cci".
	CCIBin string
	// DevenvDir is the directory of the isolated runtime cci must run
	// inside. CCI_DEVENV_DIR — default "~/.cci-devenv".
	DevenvDir string
	// TaskTimeout bounds every task/flow execution.
	// CCI_TIMEOUT_MINUTES — default 25 (scratch org creation is slow).
	TaskTimeout time.Duration
	// Transport selects the MCP transport. TRANSPORT — "stdio" (default)
	// or "sse".
	Transport string
	// Host and Port are used by the SSE transport only.
	// HOST — default "0.0.0.0"; PORT — default "8050".
	Host string
	Port string
	// HistoryPath is the SQLite file for the run history subsystem.
	// CCI_HISTORY_PATH — default "~/.sfcore-th-dev/history.db".
	// Empty disables history.
	HistoryPath string
}

const (
	envKeyBin         = "CCI_BIN"
	envKeyDevenvDir   = "CCI_DEVENV_DIR"
	envKeyTimeoutMin  = "CCI_TIMEOUT_MINUTES"
	envKeyTransport   = "TRANSPORT"
	envKeyHost        = "HOST"
	envKeyPort        = "PORT"
	envKeyHistoryPath = "CCI_HISTORY_PATH"
)

// defaultTimeoutMinutes matches the budget for the longest supported
// operation, scratch org creation.
const defaultTimeoutMinutes = 25

// Load reads configuration from environment variables, applying
// defaults for missing values.
func Load() Config {
	home, _ := os.UserHomeDir()

	timeoutMin := defaultTimeoutMinutes
	if v := os.Getenv(envKeyTimeoutMin); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutMin = n
		}
	}

	transport := envOr(envKeyTransport, TransportStdio)
	if transport != TransportSSE {
		transport = TransportStdio
	}

	return Config{
		CCIBin:      envOr(envKeyBin, "cci"),
		DevenvDir:   envOr(envKeyDevenvDir, filepath.Join(home, ".cci-devenv")),
		TaskTimeout: time.Duration(timeoutMin) * time.Minute,
		Transport:   transport,
		Host:        envOr(envKeyHost, "0.0.0.0"),
		Port:        envOr(envKeyPort, "8050"),
		HistoryPath: envOr(envKeyHistoryPath, filepath.Join(home, ".sfcore-th-dev", "history.db")),
	}
}

// envOr returns the value of the environment variable key, or fallback
// if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
