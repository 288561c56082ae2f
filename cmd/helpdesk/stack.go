package main

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/helpdesk/internal/a2a"
	"github.com/ShayCichocki/helpdesk/internal/config"
	"github.com/ShayCichocki/helpdesk/internal/oracle"
	"github.com/ShayCichocki/helpdesk/internal/router"
	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// newOracle builds the Anthropic client from config. It returns nil
// when no credentials are available so callers fall back to the
// deterministic planner and composer tiers. The concrete type is
// returned so callers can read the token tracker.
func newOracle(cfg *config.Config) *oracle.Client {
	clientCfg := oracle.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	}
	if !cfg.Anthropic.UseAWSBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil
		}
		clientCfg.APIKey = key
	}

	client, err := oracle.NewClient(clientCfg)
	if err != nil {
		return nil
	}
	return client
}

// completer widens the oracle client to the router's interface. A nil
// client must become a nil interface so the deterministic tiers run.
func completer(client *oracle.Client) router.Completer {
	if client == nil {
		return nil
	}
	return client
}

// usageLine summarizes the oracle's token usage for display, or
// returns "" when the oracle made no calls.
func usageLine(client *oracle.Client) string {
	if client == nil {
		return ""
	}
	tracker := client.Tracker()
	calls := tracker.Calls()
	if calls == 0 {
		return ""
	}
	in, out := tracker.Total()
	return fmt.Sprintf("oracle %s: %d calls, %d in / %d out tokens, est. $%.4f",
		client.Model(), calls, in, out, tracker.Cost())
}

// newRouter assembles the routing pipeline against the configured
// specialist endpoints. llm may be nil.
func newRouter(cfg *config.Config, llm router.Completer) *router.Router {
	caller := a2a.NewClient(a2a.ClientConfig{
		Endpoints: map[models.Capability]string{
			models.CapabilityData:    config.EndpointURL(cfg.Agents.DataAddr),
			models.CapabilitySupport: config.EndpointURL(cfg.Agents.SupportAddr),
			models.CapabilityBilling: config.EndpointURL(cfg.Agents.BillingAddr),
		},
		ConnectTimeout: cfg.Timeouts.Connect,
		CallTimeout:    cfg.Timeouts.Call,
	})

	var planner router.Planner
	if llm != nil {
		planner = router.NewOraclePlanner(llm)
	}
	return router.New(planner, router.NewExecutor(caller), router.NewComposer(llm))
}

// routerAsker adapts the router to the chat TUI.
type routerAsker struct {
	router *router.Router
}

func (a routerAsker) Ask(ctx context.Context, text string) (string, []string, error) {
	answer, trace := a.router.Handle(ctx, text)
	return answer, trace, nil
}
