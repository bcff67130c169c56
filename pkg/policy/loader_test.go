package policy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openfroyo/lzconfig/pkg/config"
	"github.com/rs/zerolog"
)

func writePolicy(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestLoadFromFile_Rego(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	policyFile := filepath.Join(t.TempDir(), "org-trail.rego")
	regoContent := `# Require an organization trail.
# severity: error
# tags: logging, cloudtrail
package custom.org_trail

import rego.v1

deny contains "organization trail is disabled" if {
	not input.config.logging.cloudtrail.organizationTrail
}
`
	writePolicy(t, policyFile, regoContent)

	loaded, err := loader.loadFromFile(policyFile)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Expected 1 policy, got %d", len(loaded))
	}

	policy := loaded[0]
	if policy.Name != "org-trail" {
		t.Errorf("Expected name 'org-trail', got '%s'", policy.Name)
	}
	if policy.Description != "Require an organization trail." {
		t.Errorf("Description = %q", policy.Description)
	}
	if policy.Severity != SeverityError {
		t.Errorf("Severity = %s", policy.Severity)
	}
	if len(policy.Tags) != 2 || policy.Tags[0] != "logging" || policy.Tags[1] != "cloudtrail" {
		t.Errorf("Tags = %v", policy.Tags)
	}
	if policy.Rego != regoContent {
		t.Error("Rego content doesn't match")
	}
	if !policy.Enabled {
		t.Error("Policy should be enabled by default")
	}
	if policy.Metadata["source"] != policyFile {
		t.Errorf("Metadata source = %v", policy.Metadata["source"])
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	policyFile := filepath.Join(t.TempDir(), "test-policy.json")
	policy := Policy{
		Name:        "test-json-policy",
		Description: "A test policy",
		Rego:        "package test\n\nimport rego.v1\n\ndeny contains \"x\" if { false }\n",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"test"},
	}
	data, err := json.Marshal(policy)
	if err != nil {
		t.Fatalf("Failed to marshal policy: %v", err)
	}
	writePolicy(t, policyFile, string(data))

	loaded, err := loader.loadFromFile(policyFile)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("Expected 1 policy, got %d", len(loaded))
	}
	if loaded[0].Name != policy.Name {
		t.Errorf("Expected name '%s', got '%s'", policy.Name, loaded[0].Name)
	}
	if loaded[0].Severity != policy.Severity {
		t.Errorf("Expected severity '%s', got '%s'", policy.Severity, loaded[0].Severity)
	}
	if loaded[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should default to now")
	}
}

func TestLoadFromFile_JSONWithoutName(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	policyFile := filepath.Join(t.TempDir(), "anon.json")
	writePolicy(t, policyFile, `{"rego": "package anon"}`)

	if _, err := loader.loadFromFile(policyFile); err == nil {
		t.Error("Expected error for policy without a name")
	}
}

func TestLoadFromDirectory(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	if err := os.Mkdir(subDir, 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	writePolicy(t, filepath.Join(tmpDir, "policy1.rego"), "package p1")
	writePolicy(t, filepath.Join(tmpDir, "policy2.rego"), "package p2")
	writePolicy(t, filepath.Join(subDir, "policy3.rego"), "package p3")
	writePolicy(t, filepath.Join(tmpDir, "README.md"), "# Policies")
	writePolicy(t, filepath.Join(tmpDir, "broken.json"), "not json")

	loaded, err := loader.loadFromDirectory(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load directory: %v", err)
	}
	if len(loaded) != 3 {
		t.Errorf("Expected 3 policies, got %d", len(loaded))
	}
}

func TestLoadFromPaths(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	tmpDir := t.TempDir()
	dir1 := filepath.Join(tmpDir, "dir1")
	if err := os.Mkdir(dir1, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	writePolicy(t, filepath.Join(dir1, "policy1.rego"), "package p1")

	file1 := filepath.Join(tmpDir, "policy2.rego")
	writePolicy(t, file1, "package p2")

	loaded, err := loader.LoadFromPaths(context.Background(), []string{dir1, file1})
	if err != nil {
		t.Fatalf("Failed to load paths: %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("Expected 2 policies, got %d", len(loaded))
	}

	if _, err := loader.LoadFromPaths(context.Background(), []string{"/nonexistent/path"}); err == nil {
		t.Error("Expected error for non-existent path")
	}
}

func TestLoadBundle(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	bundleFile := filepath.Join(t.TempDir(), "bundle.json")
	bundle := PolicyBundle{
		Name:        "landing-zone",
		Version:     "1.0.0",
		Description: "Landing zone guardrails",
		Policies: []Policy{
			{Name: "policy1", Rego: "package p1", Severity: SeverityError, Enabled: true},
			{Name: "policy2", Rego: "package p2", Enabled: true},
		},
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("Failed to marshal bundle: %v", err)
	}
	writePolicy(t, bundleFile, string(data))

	loaded, err := loader.LoadBundle(context.Background(), bundleFile)
	if err != nil {
		t.Fatalf("Failed to load bundle: %v", err)
	}
	if loaded.Name != bundle.Name || loaded.Version != bundle.Version {
		t.Errorf("unexpected bundle: %s %s", loaded.Name, loaded.Version)
	}
	if len(loaded.Policies) != 2 {
		t.Fatalf("Expected 2 policies, got %d", len(loaded.Policies))
	}
	if loaded.Policies[1].Severity != SeverityWarning {
		t.Errorf("default severity = %s", loaded.Policies[1].Severity)
	}
	if loaded.Policies[0].Metadata["bundle"] != "landing-zone" {
		t.Errorf("bundle metadata = %v", loaded.Policies[0].Metadata)
	}

	// bundles found while walking paths contribute all their policies
	policies, err := loader.LoadFromPaths(context.Background(), []string{bundleFile})
	if err != nil {
		t.Fatalf("Failed to load bundle path: %v", err)
	}
	if len(policies) != 2 {
		t.Errorf("Expected 2 policies from bundle path, got %d", len(policies))
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		description string
		annotations map[string]string
	}{
		{
			name:        "single line comment",
			content:     "# This is a test policy\npackage test",
			description: "This is a test policy",
		},
		{
			name:        "multi line comments",
			content:     "# This is a test policy\n# that spans multiple lines\npackage test",
			description: "This is a test policy that spans multiple lines",
		},
		{
			name:    "no comments",
			content: "package test\n# trailing",
		},
		{
			name:        "annotations",
			content:     "# Trail policy\n# Severity: critical\n# enabled: false\npackage test",
			description: "Trail policy",
			annotations: map[string]string{"severity": "critical", "enabled": "false"},
		},
		{
			name:        "unknown keys stay in the description",
			content:     "# Note: applies to all regions\npackage test",
			description: "Note: applies to all regions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			description, annotations := parseHeader(tt.content)
			if description != tt.description {
				t.Errorf("description = %q, want %q", description, tt.description)
			}
			if len(annotations) != len(tt.annotations) {
				t.Fatalf("annotations = %v, want %v", annotations, tt.annotations)
			}
			for k, v := range tt.annotations {
				if annotations[k] != v {
					t.Errorf("annotations[%s] = %q, want %q", k, annotations[k], v)
				}
			}
		})
	}
}

func TestClearCache(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	policyFile := filepath.Join(t.TempDir(), "test.rego")
	writePolicy(t, policyFile, "package test")

	if _, err := loader.loadFromFile(policyFile); err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}
	if len(loader.cache) != 1 {
		t.Errorf("Expected 1 cache entry, got %d", len(loader.cache))
	}

	loader.ClearCache()
	if len(loader.cache) != 0 {
		t.Errorf("Expected 0 cache entries after clear, got %d", len(loader.cache))
	}
}

func TestLoadFromFile_UnsupportedType(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	policyFile := filepath.Join(t.TempDir(), "test.txt")
	writePolicy(t, policyFile, "not a policy")

	if _, err := loader.loadFromFile(policyFile); err == nil {
		t.Error("Expected error for unsupported file type")
	}
}

func TestEngineLoadPolicies(t *testing.T) {
	eng := quietEngine(t)

	dir := t.TempDir()
	writePolicy(t, filepath.Join(dir, "org-trail.rego"), `# severity: error
package custom.org_trail

import rego.v1

deny contains "organization trail is disabled" if {
	not input.config.logging.cloudtrail.organizationTrail
}
`)

	if err := eng.LoadPolicies(context.Background(), []string{dir}); err != nil {
		t.Fatalf("LoadPolicies failed: %v", err)
	}

	result, err := eng.Evaluate(context.Background(), config.DefaultGlobalConfig("us-east-1"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.Allowed {
		t.Fatal("expected the loaded policy to reject the default configuration")
	}
	if names := policyNames(result.Violations); len(names) != 1 || names[0] != "org-trail" {
		t.Errorf("violations = %v", names)
	}
}

func TestEngineWatch(t *testing.T) {
	eng := quietEngine(t, WithoutBuiltins())

	dir := t.TempDir()
	writePolicy(t, filepath.Join(dir, "first.rego"), "package first\n\nimport rego.v1\n\ndeny contains \"never\" if { false }\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader, err := eng.Watch(ctx, []string{dir})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer func() { _ = loader.StopWatching() }()

	if err := loader.Watch(ctx, []string{dir}, func([]Policy) error { return nil }); err == nil {
		t.Error("second Watch should fail")
	}

	writePolicy(t, filepath.Join(dir, "second.rego"), "package second\n\nimport rego.v1\n\ndeny contains \"always\" if { true }\n")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := eng.GetPolicy("second"); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("timed out waiting for policy reload")
}
