// Package cmd provides the CLI commands for the MCPP gateway.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpp-project/mcpp-core/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mcpp-gateway",
	Short: "mcpp-gateway - Model Context Privacy Protocol gateway",
	Long: `mcpp-gateway mediates what data an AI agent's tool calls actually see.

It sits between an MCP client and the tools it calls, caching sensitive
tool output behind opaque placeholders, evaluating every access against
a configurable policy, and prompting for consent when policy requires it.

Quick start:
  1. Create a config file: mcpp.yaml
  2. Run: mcpp-gateway start

Configuration:
  Config is loaded from mcpp.yaml in the current directory, $HOME/.mcpp/,
  or /etc/mcpp/.

  Environment variables can override config values with the MCPP_ prefix.
  Example: MCPP_SERVER_ADDR=:9090

Commands:
  start       Start the gateway
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./mcpp.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
