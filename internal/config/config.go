// Package config provides configuration types for the MCPP gateway.
//
// Configuration is intentionally minimal: a listen address and log level,
// where audit records are written, and the server-wide GlobalPolicy plus
// any tool-specific policy overrides to seed at boot. Everything else
// (the Data Cache, Placeholder Engine, Reference Finder, Consent
// Coordinator) has no configuration surface — their behavior is fixed by
// spec, not by deployment.
package config


// Config is the top-level configuration for the MCPP gateway.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Audit configures where audit records are written and how the
	// AuditService batches and flushes them.
	Audit AuditConfig `yaml:"audit" mapstructure:"audit"`

	// GlobalPolicy is the server-wide default consulted whenever a tool is
	// silent on a question. Optional: with none configured, any usage that
	// no tool policy grants is denied.
	GlobalPolicy GlobalPolicyConfig `yaml:"global_policy" mapstructure:"global_policy"`

	// Tools seeds the Policy Evaluator's tool registry at boot. Tools not
	// listed here fall back to GlobalPolicy and risk-level classification.
	Tools []ToolConfig `yaml:"tools" mapstructure:"tools" validate:"omitempty,dive"`

	// DevMode relaxes nothing about policy evaluation (MCPP has no
	// authentication layer to relax) but forces debug logging and a
	// permissive GlobalPolicy when none is configured.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`

	// Upstream configures the tool executor: where tools/call is actually
	// forwarded to run. Running the tool itself is out of scope for
	// MCPP (the gateway mediates data, not execution) — this is the one
	// boundary port a deployment must point somewhere.
	Upstream UpstreamConfig `yaml:"upstream" mapstructure:"upstream"`
}

// UpstreamConfig configures the HTTP MCP server tools/call is forwarded to.
type UpstreamConfig struct {
	// Addr is the base URL of the upstream MCP server's Streamable HTTP
	// endpoint (e.g. "http://127.0.0.1:9000/mcp"). Optional: when empty,
	// with or without DevMode, an executor that echoes its arguments back
	// is used instead.
	Addr string `yaml:"addr" mapstructure:"addr" validate:"omitempty,url"`

	// Timeout bounds each forwarded tools/call (e.g. "30s"). Defaults to 30s.
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty"`
}

// ServerConfig configures the HTTP transport listener.
type ServerConfig struct {
	// Addr is the address to listen on (e.g., "127.0.0.1:8080").
	// Defaults to "127.0.0.1:8080" if empty.
	Addr string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level: "debug", "info", "warn", "error".
	// Defaults to "info". DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// AuditConfig configures the AuditService's output and backpressure
// behavior.
type AuditConfig struct {
	// Output specifies where audit records are written: "stdout" or
	// "file:///absolute/path/to/audit.log". Defaults to "stdout".
	Output string `yaml:"output" mapstructure:"output" validate:"required,audit_output"`

	// ChannelSize is the buffer size for the audit channel. Defaults to 1000.
	ChannelSize int `yaml:"channel_size" mapstructure:"channel_size" validate:"omitempty,min=1"`

	// BatchSize is the number of records batched before a flush. Defaults to 100.
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size" validate:"omitempty,min=1"`

	// FlushInterval is how often pending records are flushed (e.g. "1s").
	FlushInterval string `yaml:"flush_interval" mapstructure:"flush_interval" validate:"omitempty"`

	// SendTimeout is how long Record blocks when the channel is full
	// before dropping (e.g. "100ms"). "0" means drop immediately.
	SendTimeout string `yaml:"send_timeout" mapstructure:"send_timeout" validate:"omitempty"`

	// WarningThreshold is the channel-depth percentage (0-100) at which
	// the AuditService logs a backpressure warning. Defaults to 80; a
	// configured 0 is treated as unset and also becomes 80.
	WarningThreshold int `yaml:"warning_threshold" mapstructure:"warning_threshold" validate:"omitempty,min=0,max=100"`

	// BufferSize is the in-memory ring buffer capacity for recent records
	// kept by the audit store. Defaults to 1000.
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size" validate:"omitempty,min=1"`
}

// DefaultTargetPolicyConfig is the YAML shape of policy.DefaultTargetPolicy.
type DefaultTargetPolicyConfig struct {
	ServerAllowlist []string `yaml:"server_allowlist" mapstructure:"server_allowlist"`
	ServerNone      bool     `yaml:"server_none" mapstructure:"server_none"`
	LLMDeny         bool     `yaml:"llm_deny" mapstructure:"llm_deny"`
}

// RequireConsentForConfig is the YAML shape of policy.RequireConsentFor.
type RequireConsentForConfig struct {
	AnyTransfer            bool `yaml:"any_transfer" mapstructure:"any_transfer"`
	SensitiveDataTransfer  bool `yaml:"sensitive_data_transfer" mapstructure:"sensitive_data_transfer"`
	LLMDataAccess          bool `yaml:"llm_data_access" mapstructure:"llm_data_access"`
	ExternalServerTransfer bool `yaml:"external_server_transfer" mapstructure:"external_server_transfer"`
}

// GlobalPolicyConfig is the YAML shape of policy.GlobalPolicy.
type GlobalPolicyConfig struct {
	DefaultDataUsagePolicy map[string]string         `yaml:"default_data_usage_policy" mapstructure:"default_data_usage_policy"`
	DefaultTargetPolicy    DefaultTargetPolicyConfig `yaml:"default_target_policy" mapstructure:"default_target_policy"`
	RequireConsentFor      RequireConsentForConfig   `yaml:"require_consent_for" mapstructure:"require_consent_for"`
	TrustedTargets         []string                  `yaml:"trusted_targets" mapstructure:"trusted_targets"`
	TrustedDomains         []string                  `yaml:"trusted_domains" mapstructure:"trusted_domains"`
	DefaultOnTimeout       string                    `yaml:"default_on_timeout" mapstructure:"default_on_timeout" validate:"omitempty,oneof=allow deny"`
	ConsentTimeoutSeconds  int                       `yaml:"consent_timeout_seconds" mapstructure:"consent_timeout_seconds" validate:"omitempty,min=1"`
	CacheConsentDuration   int                       `yaml:"cache_consent_duration_minutes" mapstructure:"cache_consent_duration_minutes" validate:"omitempty,min=0"`
}

// RoleGateConfig is the YAML shape of policy.RoleGate.
type RoleGateConfig struct {
	Condition string `yaml:"condition" mapstructure:"condition" validate:"required"`
	Action    string `yaml:"action" mapstructure:"action" validate:"required,oneof=allow deny prompt"`
}

// ToolConfig seeds a single policy.Tool registration.
type ToolConfig struct {
	Name        string          `yaml:"name" mapstructure:"name" validate:"required"`
	IsSensitive bool            `yaml:"is_sensitive" mapstructure:"is_sensitive"`
	RBACGate    *RoleGateConfig `yaml:"rbac_gate" mapstructure:"rbac_gate"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Audit.Output == "" {
		c.Audit.Output = "stdout"
	}
	if c.Audit.ChannelSize == 0 {
		c.Audit.ChannelSize = 1000
	}
	if c.Audit.BatchSize == 0 {
		c.Audit.BatchSize = 100
	}
	if c.Audit.FlushInterval == "" {
		c.Audit.FlushInterval = "1s"
	}
	if c.Audit.SendTimeout == "" {
		c.Audit.SendTimeout = "100ms"
	}
	if c.Audit.WarningThreshold == 0 {
		c.Audit.WarningThreshold = 80
	}
	if c.Audit.BufferSize == 0 {
		c.Audit.BufferSize = 1000
	}

	if c.GlobalPolicy.DefaultOnTimeout == "" {
		c.GlobalPolicy.DefaultOnTimeout = "deny"
	}

	if c.Upstream.Timeout == "" {
		c.Upstream.Timeout = "30s"
	}
}

// SetDevDefaults applies a permissive GlobalPolicy in dev mode when none is
// configured, so the gateway is usable with an empty config file.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}

	if len(c.GlobalPolicy.DefaultDataUsagePolicy) == 0 {
		c.GlobalPolicy.DefaultDataUsagePolicy = map[string]string{
			"display": "allow",
			"process": "allow",
			"store":   "prompt",
			"transfer": "prompt",
		}
	}
	if c.Audit.Output == "" {
		c.Audit.Output = "stdout"
	}
}
