package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/helpdesk/internal/config"
	"github.com/ShayCichocki/helpdesk/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Plan-driven customer support orchestration",
	Long: `Helpdesk routes free-text customer requests through a team of
specialist agents: a data agent backed by the customer database, a
support agent for customer-facing replies, and a billing agent for
payment questions. A router plans each request, dispatches the plan
over JSON-RPC, and composes the specialist replies into one answer.

With no arguments, launches an interactive chat session against the
agents started by 'helpdesk serve'. Ctrl+T toggles the routing trace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// runChat launches the interactive chat TUI. The router runs
// in-process; the specialists must already be listening, which is what
// 'helpdesk serve' provides.
func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	r := newRouter(cfg, completer(newOracle(cfg)))
	program, _ := tui.NewChatProgram(routerAsker{router: r}, cfg.TUI.RefreshRate)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
