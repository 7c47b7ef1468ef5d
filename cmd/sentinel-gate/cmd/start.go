// Package cmd provides the CLI commands for the MCPP gateway.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httptransport "github.com/mcpp-project/mcpp-core/internal/adapter/inbound/http"
	"github.com/mcpp-project/mcpp-core/internal/adapter/inbound/stdio"
	"github.com/mcpp-project/mcpp-core/internal/adapter/outbound/cel"
	"github.com/mcpp-project/mcpp-core/internal/adapter/outbound/mcpclient"
	"github.com/mcpp-project/mcpp-core/internal/adapter/outbound/memory"
	"github.com/mcpp-project/mcpp-core/internal/config"
	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
	"github.com/mcpp-project/mcpp-core/internal/domain/consent"
	"github.com/mcpp-project/mcpp-core/internal/domain/policy"
	"github.com/mcpp-project/mcpp-core/internal/domain/tool"
	"github.com/mcpp-project/mcpp-core/internal/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the MCPP gateway",
	Long: `Start the MCPP gateway.

The gateway exposes the Method Dispatcher over JSON-RPC 2.0: tools/list,
tools/call, mcpp/get_data, mcpp/find_reference, mcpp/resolve_placeholders,
and mcpp/provide_consent. By default it listens over HTTP; pass --stdio to
serve a single client over stdin/stdout instead.

Examples:
  # Start with config file settings
  mcpp-gateway start

  # Start over stdio
  mcpp-gateway start --stdio

  # Start with a specific config file
  mcpp-gateway --config /path/to/mcpp.yaml start`,
	RunE: runStart,
}

var (
	devMode   bool
	stdioFlag bool
)

func init() {
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (verbose logging, permissive default policy)")
	startCmd.Flags().BoolVar(&stdioFlag, "stdio", false, "Serve over stdio instead of HTTP")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if devMode {
		cfg.DevMode = true
	}
	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Create signal context for graceful shutdown.
	// stop() restores default signal handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()

	// Setup logger to stderr (stdout is reserved for the MCP stream in stdio mode).
	logLevel := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	logger.Debug("log level configured", "level", cfg.Server.LogLevel, "effective", logLevel.String())

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	pidPath := pidFilePath()
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("failed to write PID file", "path", pidPath, "error", err)
	} else {
		defer os.Remove(pidPath)
	}

	if err := run(ctx, cfg, stdioFlag, logger); err != nil {
		return err
	}

	logger.Info("mcpp-gateway stopped")
	return nil
}

// run wires every component graph member - Data Cache, tool catalog and
// policy stores, Policy Evaluator, Consent Coordinator, Stats, Audit
// Service, tool executor, and Method Dispatcher - and starts the
// configured transport. It blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, useStdio bool, logger *slog.Logger) error {
	if cfg.DevMode {
		logger.Warn("DEV MODE ENABLED: permissive default policy in effect")
	}

	cacheStore := cache.NewMemoryStore(cache.WithLogger(logger))
	cacheStore.StartCleanup(ctx)

	catalog := memory.NewToolCatalog()
	toolStore := memory.NewToolStore()
	globalStore := memory.NewGlobalPolicyStore()

	if err := seedToolsFromConfig(ctx, cfg, catalog, toolStore); err != nil {
		return fmt.Errorf("seeding tool registry: %w", err)
	}
	if err := globalStore.SetGlobalPolicy(ctx, globalPolicyFromConfig(cfg.GlobalPolicy)); err != nil {
		return fmt.Errorf("seeding global policy: %w", err)
	}

	gateEvaluator, err := cel.NewEvaluator()
	if err != nil {
		return fmt.Errorf("building RBAC gate evaluator: %w", err)
	}

	policySvc := service.NewPolicyService(toolStore, globalStore, gateEvaluator, logger)
	coordinator := consent.NewCoordinator()
	decisions := consent.NewDecisionCache()
	stats := service.NewStatsService()

	auditStore, err := createAuditStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating audit store: %w", err)
	}
	auditSvc := service.NewAuditService(auditStore, logger,
		service.WithChannelSize(cfg.Audit.ChannelSize),
		service.WithBatchSize(cfg.Audit.BatchSize),
		service.WithFlushInterval(parseDurationOrDefault(cfg.Audit.FlushInterval, time.Second)),
		service.WithSendTimeout(parseDurationOrDefault(cfg.Audit.SendTimeout, 100*time.Millisecond)),
		service.WithWarningThreshold(cfg.Audit.WarningThreshold),
	)
	auditSvc.Start(ctx)

	executor := toolExecutorFromConfig(cfg, logger)

	dispatcher := service.NewDispatcherService(
		cacheStore, catalog, policySvc, coordinator, decisions, stats, auditSvc, executor, logger,
	)

	if useStdio {
		transport := stdio.NewStdioTransport(dispatcher, logger)
		return transport.Start(ctx)
	}

	healthChecker := httptransport.NewHealthChecker(auditSvc, cacheStore, Version)
	transport := httptransport.NewHTTPTransport(dispatcher,
		httptransport.WithAddr(cfg.Server.Addr),
		httptransport.WithLogger(logger),
		httptransport.WithHealthChecker(healthChecker),
	)

	printBanner(Version, cfg.Server.Addr, cfg.DevMode, len(cfg.Tools))
	return transport.Start(ctx)
}

// seedToolsFromConfig registers every configured tool with both the MCP
// tool catalog (tools/list) and the policy tool store (RBACGate, sensitivity).
func seedToolsFromConfig(ctx context.Context, cfg *config.Config, catalog tool.Catalog, store *memory.MemoryToolStore) error {
	for _, tc := range cfg.Tools {
		risk := tool.RiskLevelLow
		if tc.IsSensitive {
			risk = tool.RiskLevelHigh
		}
		if err := catalog.RegisterTool(ctx, tool.Tool{
			Name:        tc.Name,
			InputSchema: json.RawMessage(`{}`),
			RiskLevel:   risk,
		}); err != nil {
			return fmt.Errorf("registering tool %q in catalog: %w", tc.Name, err)
		}

		policyTool := policy.Tool{Name: tc.Name, IsSensitive: tc.IsSensitive}
		if tc.RBACGate != nil {
			policyTool.RBACGate = &policy.RoleGate{
				Condition: tc.RBACGate.Condition,
				Action:    policy.PermissionValue(tc.RBACGate.Action),
			}
		}
		if err := store.PutTool(ctx, policyTool); err != nil {
			return fmt.Errorf("registering tool %q policy: %w", tc.Name, err)
		}
	}
	return nil
}

// globalPolicyFromConfig converts the YAML-facing GlobalPolicyConfig into
// the domain's policy.GlobalPolicy.
func globalPolicyFromConfig(c config.GlobalPolicyConfig) policy.GlobalPolicy {
	perms := make(map[policy.DataUsage]policy.PermissionValue, len(c.DefaultDataUsagePolicy))
	for usage, permission := range c.DefaultDataUsagePolicy {
		perms[policy.DataUsage(usage)] = policy.PermissionValue(permission)
	}

	return policy.GlobalPolicy{
		DefaultDataUsagePolicy: perms,
		DefaultTargetPolicy: policy.DefaultTargetPolicy{
			ServerAllowlist: c.DefaultTargetPolicy.ServerAllowlist,
			ServerNone:      c.DefaultTargetPolicy.ServerNone,
			LLMDeny:         c.DefaultTargetPolicy.LLMDeny,
		},
		RequireConsentFor: policy.RequireConsentFor{
			AnyTransfer:            c.RequireConsentFor.AnyTransfer,
			SensitiveDataTransfer:  c.RequireConsentFor.SensitiveDataTransfer,
			LLMDataAccess:          c.RequireConsentFor.LLMDataAccess,
			ExternalServerTransfer: c.RequireConsentFor.ExternalServerTransfer,
		},
		TrustedTargets:        c.TrustedTargets,
		TrustedDomains:        c.TrustedDomains,
		DefaultOnTimeout:      policy.PermissionValue(c.DefaultOnTimeout),
		ConsentTimeoutSeconds: c.ConsentTimeoutSeconds,
		CacheConsentDuration:  c.CacheConsentDuration,
	}
}

// createAuditStore builds the audit store the AuditConfig names: stdout or
// a file:// path.
func createAuditStore(cfg *config.Config, logger *slog.Logger) (*memory.MemoryAuditStore, error) {
	output := cfg.Audit.Output
	capacity := cfg.Audit.BufferSize

	if output == "" || output == "stdout" {
		return memory.NewAuditStore(capacity), nil
	}

	path := strings.TrimPrefix(output, "file://")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log %q: %w", path, err)
	}
	logger.Info("writing audit records to file", "path", path)
	return memory.NewAuditStoreWithWriter(f, capacity), nil
}

// toolExecutorFromConfig builds the ToolExecutor that backs tools/call.
// With no upstream configured (in dev mode or not), it falls back to an
// executor that echoes its arguments back so the gateway is runnable
// standalone; otherwise tools/call is forwarded to the upstream.
func toolExecutorFromConfig(cfg *config.Config, logger *slog.Logger) service.ToolExecutor {
	if cfg.Upstream.Addr == "" {
		logger.Warn("no upstream configured, tools/call will echo its arguments back")
		return memory.NewEchoExecutor()
	}

	timeout := parseDurationOrDefault(cfg.Upstream.Timeout, 30*time.Second)
	return mcpclient.NewHTTPExecutor(cfg.Upstream.Addr, mcpclient.WithTimeout(timeout))
}

// parseDurationOrDefault parses s as a duration, falling back to def on
// empty or malformed input.
func parseDurationOrDefault(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// printBanner prints a startup banner to stderr showing the listen
// address, mode, and resource counts. Only called in HTTP mode to avoid
// interfering with stdio MCP transport on stdout.
func printBanner(version, httpAddr string, devMode bool, toolCount int) {
	const (
		reset = "\033[0m"
		bold  = "\033[1m"
		cyan  = "\033[36m"
		green = "\033[32m"
		yellow = "\033[33m"
		dim   = "\033[2m"
	)

	rpcURL := fmt.Sprintf("http://localhost%s/rpc", httpAddr)
	if !strings.HasPrefix(httpAddr, ":") {
		rpcURL = fmt.Sprintf("http://%s/rpc", httpAddr)
	}

	modeStr := green + "production" + reset
	if devMode {
		modeStr = yellow + "development" + reset + dim + " (permissive default policy)" + reset
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  %s%s MCPP Gateway %s%s\n", bold, cyan, version, reset)
	fmt.Fprintf(os.Stderr, "  %s─────────────────────────────────────%s\n", dim, reset)
	fmt.Fprintf(os.Stderr, "  %-14s %s\n", "RPC endpoint:", rpcURL)
	fmt.Fprintf(os.Stderr, "  %-14s %s\n", "Mode:", modeStr)
	fmt.Fprintf(os.Stderr, "  %-14s %d configured\n", "Tools:", toolCount)
	fmt.Fprintf(os.Stderr, "  %s─────────────────────────────────────%s\n", dim, reset)
	fmt.Fprintf(os.Stderr, "\n")
}

// pidFilePath returns the standard location for the gateway's PID file.
func pidFilePath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".mcpp", "gateway.pid")
	}
	return filepath.Join(os.TempDir(), "mcpp-gateway.pid")
}

// writePIDFile writes the current process PID to the given path, creating
// parent directories as needed.
func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}
