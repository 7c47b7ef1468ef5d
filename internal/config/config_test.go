package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:8080")
	}
	if cfg.Audit.Output != "stdout" {
		t.Errorf("Audit.Output = %q, want %q", cfg.Audit.Output, "stdout")
	}
	if cfg.Audit.ChannelSize != 1000 {
		t.Errorf("Audit.ChannelSize = %d, want 1000", cfg.Audit.ChannelSize)
	}
	if cfg.GlobalPolicy.DefaultOnTimeout != "deny" {
		t.Errorf("GlobalPolicy.DefaultOnTimeout = %q, want %q", cfg.GlobalPolicy.DefaultOnTimeout, "deny")
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server: ServerConfig{Addr: ":9090"},
		Audit:  AuditConfig{Output: "file:///var/log/custom.log"},
	}
	cfg.SetDefaults()

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr was overwritten: got %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Audit.Output != "file:///var/log/custom.log" {
		t.Errorf("Audit.Output was overwritten: got %q, want %q", cfg.Audit.Output, "file:///var/log/custom.log")
	}
}

func TestConfig_SetDevDefaults_PopulatesPermissiveGlobalPolicy(t *testing.T) {
	t.Parallel()

	cfg := Config{DevMode: true}
	cfg.SetDevDefaults()

	if len(cfg.GlobalPolicy.DefaultDataUsagePolicy) == 0 {
		t.Fatal("expected DevMode to populate a default data usage policy")
	}
	if cfg.GlobalPolicy.DefaultDataUsagePolicy["display"] != "allow" {
		t.Errorf("display permission = %q, want allow", cfg.GlobalPolicy.DefaultDataUsagePolicy["display"])
	}
}

func TestConfig_SetDevDefaults_NoopOutsideDevMode(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	cfg.SetDevDefaults()

	if len(cfg.GlobalPolicy.DefaultDataUsagePolicy) != 0 {
		t.Error("expected SetDevDefaults to be a no-op when DevMode is false")
	}
}

func TestFindConfigFileInPaths_EmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got := findConfigFileInPaths([]string{dir})
	if got != "" {
		t.Errorf("findConfigFileInPaths(empty dir) = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_MatchesYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mcpp.yaml")
	_ = os.WriteFile(cfgPath, []byte("server:\n  addr: :9090\n"), 0644)

	got := findConfigFileInPaths([]string{dir})
	if got != cfgPath {
		t.Errorf("findConfigFileInPaths = %q, want %q", got, cfgPath)
	}
}

func TestFindConfigFileInPaths_MatchesYML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "mcpp.yml")
	_ = os.WriteFile(cfgPath, []byte("server:\n  addr: :9090\n"), 0644)

	got := findConfigFileInPaths([]string{dir})
	if got != cfgPath {
		t.Errorf("findConfigFileInPaths = %q, want %q", got, cfgPath)
	}
}

func TestFindConfigFileInPaths_IgnoresNoExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// Simulate the binary: a file named "mcpp" with no extension.
	_ = os.WriteFile(filepath.Join(dir, "mcpp"), []byte("\x7fELF binary"), 0755)

	got := findConfigFileInPaths([]string{dir})
	if got != "" {
		t.Errorf("findConfigFileInPaths matched binary = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_PrefersYAMLOverYML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "mcpp.yaml")
	ymlPath := filepath.Join(dir, "mcpp.yml")
	_ = os.WriteFile(yamlPath, []byte("server:\n  addr: :8080\n"), 0644)
	_ = os.WriteFile(ymlPath, []byte("server:\n  addr: :9090\n"), 0644)

	got := findConfigFileInPaths([]string{dir})
	if got != yamlPath {
		t.Errorf("findConfigFileInPaths = %q, want %q (.yaml preferred)", got, yamlPath)
	}
}
