package config

import (
	"strings"
	"testing"
)

// minimalValidConfig returns a minimal valid Config for testing.
func minimalValidConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Audit:  AuditConfig{Output: "stdout"},
		GlobalPolicy: GlobalPolicyConfig{
			DefaultDataUsagePolicy: map[string]string{"display": "allow", "transfer": "deny"},
			DefaultOnTimeout:       "deny",
		},
		Tools: []ToolConfig{{Name: "export_table", IsSensitive: true}},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_InvalidAuditOutput(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Audit.Output = "invalid"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Audit.Output") {
		t.Errorf("error = %q, want to contain 'Audit.Output'", err.Error())
	}
}

func TestValidate_ValidAuditOutputStdout(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Audit.Output = "stdout"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with stdout unexpected error: %v", err)
	}
}

func TestValidate_ValidAuditOutputFile(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Audit.Output = "file:///var/log/audit.log"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with file:// unexpected error: %v", err)
	}
}

func TestValidate_InvalidAuditOutputRelativePath(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Audit.Output = "file://relative/path"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for relative path, got nil")
	}
	if !strings.Contains(err.Error(), "Audit.Output") {
		t.Errorf("error = %q, want to contain 'Audit.Output'", err.Error())
	}
}

func TestValidate_ZeroConfig(t *testing.T) {
	t.Parallel()

	// Simulate a user running "mcpp-gateway start" with no config file at all.
	cfg := &Config{}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() zero-config unexpected error: %v", err)
	}

	if cfg.Audit.Output != "stdout" {
		t.Errorf("default audit output = %q, want 'stdout'", cfg.Audit.Output)
	}
	if cfg.GlobalPolicy.DefaultOnTimeout != "deny" {
		t.Errorf("default on-timeout = %q, want 'deny'", cfg.GlobalPolicy.DefaultOnTimeout)
	}
}

func TestValidate_InvalidUsageLevel(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.GlobalPolicy.DefaultDataUsagePolicy["bogus"] = "allow"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for unknown usage level, got nil")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error = %q, want to contain 'bogus'", err.Error())
	}
}

func TestValidate_InvalidPermissionValue(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.GlobalPolicy.DefaultDataUsagePolicy["display"] = "sometimes"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid permission, got nil")
	}
	if !strings.Contains(err.Error(), "sometimes") {
		t.Errorf("error = %q, want to contain 'sometimes'", err.Error())
	}
}

func TestValidate_InvalidRoleGateAction(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Tools[0].RBACGate = &RoleGateConfig{Condition: "true", Action: "approve"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid rbac_gate action, got nil")
	}
	if !strings.Contains(err.Error(), "Action") {
		t.Errorf("error = %q, want to contain 'Action'", err.Error())
	}
}

func TestValidate_MissingToolName(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Tools[0].Name = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for missing tool name, got nil")
	}
}
