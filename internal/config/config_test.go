package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{envKeyBin, envKeyDevenvDir, envKeyTimeoutMin, envKeyTransport, envKeyHost, envKeyPort, envKeyHistoryPath} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.CCIBin != "cci" {
		t.Errorf("CCIBin = %q, want cci", cfg.CCIBin)
	}
	if cfg.TaskTimeout != 25*time.Minute {
		t.Errorf("TaskTimeout = %v, want 25m", cfg.TaskTimeout)
	}
	if cfg.Transport != TransportStdio {
		t.Errorf("Transport = %q, want stdio", cfg.Transport)
	}
	if cfg.Host != "0.0.0.0" || cfg.Port != "8050" {
		t.Errorf("Host:Port = %s:%s", cfg.Host, cfg.Port)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(envKeyBin, "/opt/venv/bin/cci")
	t.Setenv(envKeyDevenvDir, "/opt/venv")
	t.Setenv(envKeyTimeoutMin, "5")
	t.Setenv(envKeyTransport, "sse")
	t.Setenv(envKeyPort, "9000")

	cfg := Load()
	if cfg.CCIBin != "/opt/venv/bin/cci" {
		t.Errorf("CCIBin = %q", cfg.CCIBin)
	}
	if cfg.DevenvDir != "/opt/venv" {
		t.Errorf("DevenvDir = %q", cfg.DevenvDir)
	}
	if cfg.TaskTimeout != 5*time.Minute {
		t.Errorf("TaskTimeout = %v", cfg.TaskTimeout)
	}
	if cfg.Transport != TransportSSE || cfg.Port != "9000" {
		t.Errorf("Transport=%q Port=%q", cfg.Transport, cfg.Port)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv(envKeyTimeoutMin, "not-a-number")
	t.Setenv(envKeyTransport, "carrier-pigeon")

	cfg := Load()
	if cfg.TaskTimeout != 25*time.Minute {
		t.Errorf("bad timeout must fall back to default, got %v", cfg.TaskTimeout)
	}
	if cfg.Transport != TransportStdio {
		t.Errorf("unknown transport must fall back to stdio, got %q", cfg.Transport)
	}
}

const sampleProjectYAML = `
project:
    name: NPSP
    package:
        name: Nonprofit Success Pack
tasks:
    deploy_qa_config:
        description: Deploys configuration for QA orgs
        class_path: cumulusci.tasks.salesforce.Deploy
    robot:
        description: Runs a Robot Framework test suite
flows:
    qa_org:
        steps:
            1:
                task: deploy_qa_config
`

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(sampleProjectYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Name != "NPSP" {
		t.Errorf("Name = %q, want NPSP", p.Name)
	}
	if got := p.TaskNames(); !reflect.DeepEqual(got, []string{"deploy_qa_config", "robot"}) {
		t.Errorf("TaskNames = %v", got)
	}
}

func TestLoadProjectMissingFile(t *testing.T) {
	p, err := LoadProject(t.TempDir())
	if err != nil {
		t.Fatalf("missing cumulusci.yml must not be an error: %v", err)
	}
	if p != nil {
		t.Errorf("p = %+v, want nil", p)
	}
	if names := p.TaskNames(); names != nil {
		t.Errorf("nil project TaskNames = %v, want nil", names)
	}
}

func TestLoadProjectMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(dir); err == nil {
		t.Error("malformed YAML must surface an error")
	}
}
