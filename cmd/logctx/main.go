// Package main implements the logctx CLI for inspecting level tables and
// validating logging configuration files.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/logctx"
	"github.com/fyrsmithlabs/logctx/logconf"
	"github.com/fyrsmithlabs/logctx/zapbridge"
)

// version information
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "logctx",
	Short: "CLI for logctx configuration and level inspection",
	Long: `logctx is a command-line companion for the logctx library.
It validates logging configuration files and prints the standard level table.`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(levelsCmd)
}

// checkCmd validates a configuration file without applying it
var checkCmd = &cobra.Command{
	Use:   "check <config-file>",
	Short: "Validate a logging configuration file",
	Long: `Validate a logging configuration file without applying it.

The file is parsed, merged with LOGCTX_* environment overrides, and run
through the same validation Load performs, then a summary of the resolved
configuration is printed.

Examples:
  # Validate a config file
  logctx check logging.yaml

  # Environment overrides participate in validation
  LOGCTX_ROOT_LEVEL=DEBUG logctx check logging.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// levelsCmd prints the standard level table
var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the standard log levels",
	Long: `List the standard log levels every context starts out with, ordered
from most to least severe, together with the zap level each one maps to.

Examples:
  # Print the level table
  logctx levels`,
	RunE: runLevels,
}

// runCheck handles the check command
func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := logconf.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration OK: %s\n", path)

	if len(cfg.Levels) > 0 {
		fmt.Printf("Custom levels (%d):\n", len(cfg.Levels))
		for _, l := range cfg.Levels {
			fmt.Printf("  %-12s %d\n", l.Name, l.Value)
		}
	}

	fmt.Printf("Handlers (%d):\n", len(cfg.Handlers))
	for _, h := range cfg.Handlers {
		details := fmt.Sprintf("%s -> %s", h.Type, h.Output)
		if h.MinLevel != "" {
			details += ", min " + h.MinLevel
		}
		if h.RateLimit > 0 {
			details += fmt.Sprintf(", limit %g/s burst %d", h.RateLimit, h.RateBurst)
		}
		fmt.Printf("  %-12s %s\n", h.Name, details)
	}

	rootLevel := cfg.Root.Level
	if rootLevel == "" {
		rootLevel = "(inherited)"
	}
	fmt.Printf("Root logger: level %s, handlers [%s]\n", rootLevel, strings.Join(cfg.Root.Handlers, " "))

	if len(cfg.Loggers) > 0 {
		fmt.Printf("Named loggers (%d):\n", len(cfg.Loggers))
		for _, lg := range cfg.Loggers {
			details := lg.Level
			if details == "" {
				details = "(inherited)"
			}
			if len(lg.Handlers) > 0 {
				details += ", handlers [" + strings.Join(lg.Handlers, " ") + "]"
			}
			if lg.UseParentHandlers != nil && !*lg.UseParentHandlers {
				details += ", no parent handlers"
			}
			if lg.Pin {
				details += ", pinned"
			}
			fmt.Printf("  %-20s %s\n", lg.Name, details)
		}
	}

	return nil
}

// runLevels handles the levels command
func runLevels(cmd *cobra.Command, args []string) error {
	fmt.Printf("%-9s %12s  %s\n", "NAME", "VALUE", "ZAP")
	for _, l := range logctx.StandardLevels() {
		fmt.Printf("%-9s %12d  %s\n", l.Name(), l.Value(), zapName(zapbridge.ZapLevel(l)))
	}
	return nil
}

// zapName renders the bridge's trace extension with a proper name; zapcore
// itself prints unknown levels as "Level(-2)".
func zapName(zl zapcore.Level) string {
	if zl == zapbridge.TraceLevel {
		return "trace"
	}
	return zl.String()
}
