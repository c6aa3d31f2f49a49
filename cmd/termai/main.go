// Package main provides the termai command-line assistant. It forwards
// terminal questions, errors, and command results to an AI provider pair
// with latency-bounded failover.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cyclone1070/termai/internal/task"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "termai",
	Short: "AI assistant for the terminal",
	Long: `termai answers terminal questions with context from your current shell
session. It asks a primary model under a strict timeout and falls back to a
secondary model with retries when the primary stalls or fails.

API keys are read from GEMINI_API_KEY and OPENAI_API_KEY; either one alone
is enough.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			var err error
			logger, err = zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		} else {
			logger = zap.NewNop()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a terminal or development question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := task.NewAsk(strings.Join(args, " "))
		if err != nil {
			return usageError(cmd, err)
		}
		return runTask(cmd, req)
	},
}

var debugCmd = &cobra.Command{
	Use:   "debug <error text>",
	Short: "Diagnose a terminal error or issue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := task.NewDebug(strings.Join(args, " "))
		if err != nil {
			return usageError(cmd, err)
		}
		return runTask(cmd, req)
	},
}

var helpCmd = &cobra.Command{
	Use:   "help <command> [error text]",
	Short: "Explain a command, or diagnose why it failed",
	Long: `With one argument, explains the command (purpose, syntax, examples,
safety notes). With more arguments, the rest is treated as the command's
error output and the response focuses on fixing it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		errorText := ""
		if len(args) > 1 {
			errorText = strings.Join(args[1:], " ")
		}
		req, err := task.NewExplain(args[0], errorText)
		if err != nil {
			return usageError(cmd, err)
		}
		return runTask(cmd, req)
	},
}

var executeCmd = &cobra.Command{
	Use:   "execute <command>",
	Short: "Run a command and analyze its result",
	Long: `Runs the command through the shell with a hard timeout, prints its raw
output immediately, then asks the model for an analysis whose closing
verdict matches the exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := task.NewExecute(strings.Join(args, " "))
		if err != nil {
			return usageError(cmd, err)
		}
		return runTask(cmd, req)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent assistant invocations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd.Context(), logger)
		defer a.close()
		return a.showHistory(cmd.Context())
	},
}

func runTask(cmd *cobra.Command, req task.Request) error {
	a := newApp(cmd.Context(), logger)
	defer a.close()
	return a.run(cmd.Context(), req)
}

func usageError(cmd *cobra.Command, err error) error {
	_ = cmd.Usage()
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(askCmd, debugCmd, helpCmd, executeCmd, historyCmd)
}

func main() {
	// Usage errors exit 1. Task-level failures (a failing command, a
	// provider outage) are reported as text and still exit 0.
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
