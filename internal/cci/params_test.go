package cci

import (
	"reflect"
	"testing"
)

func deployDescriptor() *TaskDescriptor {
	return &TaskDescriptor{
		Name: "deploy",
		Parameters: []ParameterSpec{
			{Name: "path", Required: true, Description: "The path to the metadata source to be deployed."},
			{Name: "org_name", Required: true, Description: "Target org alias."},
			{Name: "check_only", Required: false, Default: "False", Description: "Validate only."},
			{Name: "test_level", Required: false, Description: "Apex test level."},
		},
	}
}

func TestResolveAllRequiredSupplied(t *testing.T) {
	resolved, prompt := Resolve(deployDescriptor(), map[string]string{
		"path":     "force-app",
		"org_name": "dev",
	})
	if prompt != nil {
		t.Fatalf("unexpected prompt: %+v", prompt)
	}
	want := ResolvedParams{
		"path":       "force-app",
		"org_name":   "dev",
		"check_only": "False", // default applied
	}
	if !reflect.DeepEqual(resolved, want) {
		t.Errorf("resolved = %v, want %v", resolved, want)
	}
}

func TestResolveMissingKeepDescriptorOrder(t *testing.T) {
	tests := []struct {
		name     string
		supplied map[string]string
		missing  []string
	}{
		{"nothing supplied", map[string]string{}, []string{"path", "org_name"}},
		{"first supplied", map[string]string{"path": "src"}, []string{"org_name"}},
		{"second supplied", map[string]string{"org_name": "dev"}, []string{"path"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, prompt := Resolve(deployDescriptor(), tt.supplied)
			if resolved != nil {
				t.Fatalf("expected no resolution, got %v", resolved)
			}
			if prompt == nil {
				t.Fatal("expected a MissingParameterPrompt")
			}
			if prompt.TaskName != "deploy" {
				t.Errorf("prompt.TaskName = %q, want deploy", prompt.TaskName)
			}
			var got []string
			for _, spec := range prompt.Missing {
				got = append(got, spec.Name)
			}
			if !reflect.DeepEqual(got, tt.missing) {
				t.Errorf("missing = %v, want %v", got, tt.missing)
			}
		})
	}
}

func TestResolveUnknownExtrasPassThrough(t *testing.T) {
	resolved, prompt := Resolve(deployDescriptor(), map[string]string{
		"path":        "force-app",
		"org_name":    "dev",
		"ignore_warn": "true", // not declared by the descriptor
	})
	if prompt != nil {
		t.Fatalf("extras must never cause a prompt, got %+v", prompt)
	}
	if resolved["ignore_warn"] != "true" {
		t.Errorf("undeclared parameter dropped: %v", resolved)
	}
}

func TestResolveRequiredWithDefaultNotMissing(t *testing.T) {
	desc := &TaskDescriptor{
		Name: "run_tests",
		Parameters: []ParameterSpec{
			{Name: "test_level", Required: true, Default: "RunLocalTests"},
		},
	}
	resolved, prompt := Resolve(desc, map[string]string{})
	if prompt != nil {
		t.Fatalf("required-with-default must not prompt, got %+v", prompt)
	}
	if resolved["test_level"] != "RunLocalTests" {
		t.Errorf("default not applied: %v", resolved)
	}
}

func TestResolveIsStateless(t *testing.T) {
	desc := deployDescriptor()
	// First attempt misses everything; second supplies the full set.
	// No state carries over — the second attempt stands on its own.
	if _, prompt := Resolve(desc, nil); prompt == nil {
		t.Fatal("first attempt should prompt")
	}
	resolved, prompt := Resolve(desc, map[string]string{"path": "src", "org_name": "qa"})
	if prompt != nil {
		t.Fatalf("second attempt should resolve, got %+v", prompt)
	}
	if resolved["path"] != "src" || resolved["org_name"] != "qa" {
		t.Errorf("resolved = %v", resolved)
	}
}
