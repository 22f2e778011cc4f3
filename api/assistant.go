package api

import (
	"context"

	"github.com/etnz/portal/assistant"
)

func (c *Client) Chat(ctx context.Context, req assistant.ChatRequest) (*assistant.ChatReply, error) {
	var r assistant.ChatReply
	if err := c.post(ctx, path("ai", "chat"), req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) PortfolioAnalysis(ctx context.Context, userID string) (*assistant.PortfolioAnalysis, error) {
	var a assistant.PortfolioAnalysis
	if _, err := c.get(ctx, path("ai", "portfolio-analysis", userID), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) RiskAlerts(ctx context.Context, userID string) ([]assistant.RiskAlert, error) {
	var a []assistant.RiskAlert
	err := c.member(ctx, path("ai", "risk-alerts", userID), nil, "alerts", &a)
	return a, err
}

func (c *Client) MarketIntelligence(ctx context.Context) ([]assistant.MarketInsight, error) {
	var in []assistant.MarketInsight
	err := c.member(ctx, path("ai", "market-intelligence"), nil, "insights", &in)
	return in, err
}

func (c *Client) Goals(ctx context.Context, userID string) (*assistant.GoalsAnalysis, error) {
	var g assistant.GoalsAnalysis
	if _, err := c.get(ctx, path("ai", "goals", userID), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) MonitoringAlerts(ctx context.Context) ([]assistant.MonitoringAlert, error) {
	var a []assistant.MonitoringAlert
	err := c.member(ctx, path("ai", "monitoring", "alerts"), nil, "alerts", &a)
	return a, err
}

func (c *Client) AgentStatus(ctx context.Context) (*assistant.AgentStatus, error) {
	var s assistant.AgentStatus
	if err := c.member(ctx, path("ai", "agent-status"), nil, "status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ScenarioLibrary(ctx context.Context) (*assistant.ScenarioLibrary, error) {
	var l assistant.ScenarioLibrary
	if _, err := c.get(ctx, path("ai", "scenarios"), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) Customers(ctx context.Context) ([]assistant.Customer, error) {
	var cs []assistant.Customer
	err := c.member(ctx, path("ai", "customers"), nil, "customers", &cs)
	return cs, err
}

// CustomerScenarios keeps the raw body for the customer hand-off.
func (c *Client) CustomerScenarios(ctx context.Context, userID string) (*assistant.CustomerScenarios, error) {
	var cs assistant.CustomerScenarios
	raw, err := c.get(ctx, path("ai", "scenarios", userID), nil, &cs)
	if err != nil {
		return nil, err
	}
	cs.Raw = raw
	return &cs, nil
}
