package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/helpdesk/internal/a2a"
	"github.com/ShayCichocki/helpdesk/internal/agents"
	"github.com/ShayCichocki/helpdesk/internal/config"
	"github.com/ShayCichocki/helpdesk/internal/tools"
)

var serveSeed bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent and tool servers",
	Long: `Start every server the system needs in one process: the customer
tool server, the data, support, and billing specialist agents, and the
router agent. Each agent listens on its configured address and serves
JSON-RPC at /rpc plus an agent card at /.well-known/agent-card.json.

Runs until interrupted; Ctrl+C shuts every server down cleanly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return runServe(cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Seed the database with sample customers before serving")
}

func runServe(cfg *config.Config) error {
	store, err := tools.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if serveSeed {
		if err := seedStore(store, cfg); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	client := newOracle(cfg)
	llm := completer(client)
	if llm == nil {
		color.Yellow("No Anthropic credentials found; using deterministic planning.")
	}

	toolsClient := tools.NewClient("http://" + cfg.Tools.Addr)
	dataAgent := agents.NewDataAgent(toolsClient, llm)
	supportAgent := agents.NewSupportAgent(llm)
	billingAgent := agents.NewBillingAgent()
	routerAgent := agents.NewRouterAgent(newRouter(cfg, llm))

	servers := []*http.Server{
		{Addr: cfg.Tools.Addr, Handler: tools.NewServerMux(store)},
		agentServer(cfg.Agents.DataAddr, dataAgent.Card("http://"+cfg.Agents.DataAddr), "data", dataAgent.Skill()),
		agentServer(cfg.Agents.SupportAddr, supportAgent.Card("http://"+cfg.Agents.SupportAddr), "support", supportAgent.Skill()),
		agentServer(cfg.Agents.BillingAddr, billingAgent.Card("http://"+cfg.Agents.BillingAddr), "billing", billingAgent.Skill()),
		agentServer(cfg.Agents.RouterAddr, routerAgent.Card("http://"+cfg.Agents.RouterAddr), "router", routerAgent.Skill()),
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		srv := srv
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}()
	}

	watcher, err := config.Watch(config.GetUserConfigPath(), func(next *config.Config) {
		color.Yellow("Config reloaded: timeouts connect=%s call=%s, endpoints data=%s support=%s billing=%s (listen addresses apply on restart)",
			next.Timeouts.Connect, next.Timeouts.Call,
			next.Agents.DataAddr, next.Agents.SupportAddr, next.Agents.BillingAddr)
	})
	if err == nil {
		defer watcher.Close()
	}

	color.Green("Tool server listening on %s", cfg.Tools.Addr)
	color.Green("Agents listening: router=%s data=%s support=%s billing=%s",
		cfg.Agents.RouterAddr, cfg.Agents.DataAddr, cfg.Agents.SupportAddr, cfg.Agents.BillingAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		fmt.Println("\nShutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown %s: %v\n", srv.Addr, err)
		}
	}
	if usage := usageLine(client); usage != "" {
		fmt.Println(usage)
	}
	return nil
}

// agentServer wires one agent's card and skill into an HTTP server.
func agentServer(addr string, card a2a.AgentCard, name string, skill a2a.SkillFunc) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: a2a.NewServerMux(card, a2a.NewHandler(name, skill)),
	}
}

// seedStore loads the configured seed file, or the built-in sample
// data when none is configured.
func seedStore(store *tools.Store, cfg *config.Config) error {
	if cfg.Tools.SeedFile != "" {
		return store.SeedFromFile(cfg.Tools.SeedFile)
	}
	return store.Seed(tools.DefaultSeed())
}
