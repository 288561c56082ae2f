package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/helpdesk/internal/config"
)

var askTrace bool

var askCmd = &cobra.Command{
	Use:   "ask [request]",
	Short: "Answer one customer request and exit",
	Long: `Route a single customer request through the agent team and print
the final answer. The specialists must already be listening, which is
what 'helpdesk serve' provides.

Use --trace to see every planning and dispatch step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		request := strings.Join(args, " ")
		client := newOracle(cfg)
		r := newRouter(cfg, completer(client))
		answer, trace := r.Handle(context.Background(), request)

		if askTrace {
			dim := color.New(color.Faint)
			for _, line := range trace {
				dim.Println(line)
			}
			if usage := usageLine(client); usage != "" {
				dim.Println(usage)
			}
			fmt.Println()
		}
		fmt.Println(answer)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askTrace, "trace", false, "Print planning and dispatch trace lines")
}
