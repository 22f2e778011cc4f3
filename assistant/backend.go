package assistant

import (
	"context"
	"encoding/json"

	"github.com/etnz/portal"
)

// Backend is the AI side of the portal server. Every method is a single
// stateless request; conversation memory, if any, lives on the server.
type Backend interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
	PortfolioAnalysis(ctx context.Context, userID string) (*PortfolioAnalysis, error)
	RiskAlerts(ctx context.Context, userID string) ([]RiskAlert, error)
	MarketIntelligence(ctx context.Context) ([]MarketInsight, error)
	Goals(ctx context.Context, userID string) (*GoalsAnalysis, error)
	MonitoringAlerts(ctx context.Context) ([]MonitoringAlert, error)
	AgentStatus(ctx context.Context) (*AgentStatus, error)
	ScenarioLibrary(ctx context.Context) (*ScenarioLibrary, error)
	Customers(ctx context.Context) ([]Customer, error)
	CustomerScenarios(ctx context.Context, userID string) (*CustomerScenarios, error)
}

// ChatRequest is posted for every chat message. No history is sent.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChatReply is the assistant's answer with follow-up suggestions.
type ChatReply struct {
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions"`
}

// PortfolioAnalysis holds three markdown-ish texts.
type PortfolioAnalysis struct {
	PortfolioAnalysis      string `json:"portfolio_analysis"`
	RiskAnalysis           string `json:"risk_analysis"`
	RebalancingSuggestions string `json:"rebalancing_suggestions"`
}

type RiskAlert struct {
	Type            string   `json:"type"`
	Level           string   `json:"level"`
	Message         string   `json:"message"`
	Recommendations []string `json:"recommendations"`
}

type MarketInsight struct {
	Title          string  `json:"title"`
	Type           string  `json:"type"`
	Content        string  `json:"content"`
	Impact         string  `json:"impact"`
	RelevanceScore float64 `json:"relevance_score"`
}

type GoalsAnalysis struct {
	PlanningAnalysis string `json:"planning_analysis"`
}

type MonitoringAlert struct {
	Type            string   `json:"type"`
	UserID          string   `json:"user_id"`
	Priority        string   `json:"priority"`
	Message         string   `json:"message"`
	Recommendations []string `json:"recommendations"`
}

// knownAgents are the status keys counted as active agents.
var knownAgents = []string{"portfolio_assistant", "auto_rebalancing", "market_intelligence", "goal_planning", "risk_management"}

// AgentStatus summarizes the server agents.
type AgentStatus struct {
	Active        []string // known agents present in the status, in server order
	TotalInsights int
}

func (s *AgentStatus) UnmarshalJSON(data []byte) error {
	var status portal.Row
	if err := json.Unmarshal(data, &status); err != nil {
		return err
	}
	s.Active = nil
	for _, k := range status.Keys() {
		for _, a := range knownAgents {
			if k == a {
				s.Active = append(s.Active, k)
			}
		}
	}
	s.TotalInsights = status.Int("total_insights")
	return nil
}

// Scenario is an AI scenario of the library or a personalized one.
type Scenario struct {
	ScenarioID      string   `json:"scenario_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	UserType        string   `json:"user_type,omitempty"`
	PortfolioImpact string   `json:"portfolio_impact,omitempty"`
	Recommendation  string   `json:"recommendation"`
	ActionItems     []string `json:"action_items"`
	ExpectedOutcome string   `json:"expected_outcome,omitempty"`
	RiskLevel       string   `json:"risk_level,omitempty"`
	TimeHorizon     string   `json:"time_horizon,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	ImpactLevel     string   `json:"impact_level,omitempty"`
	Urgency         string   `json:"urgency,omitempty"`
}

// ScenarioLibrary is the general scenario catalog.
type ScenarioLibrary struct {
	Scenarios      []Scenario `json:"scenarios"`
	QuickScenarios []Scenario `json:"quick_scenarios"`
}

// Customer is a card of the customer directory.
type Customer struct {
	UserID              string         `json:"user_id"`
	Name                string         `json:"name"`
	Age                 int            `json:"age"`
	City                string         `json:"city"`
	Category            string         `json:"category"`
	RiskCapacity        string         `json:"risk_capacity"`
	PortfolioValue      portal.Money   `json:"portfolio_value"`
	HoldingsCount       int            `json:"holdings_count"`
	AvgReturn           portal.Percent `json:"avg_return"`
	EquityDrift         portal.Percent `json:"equity_drift"`
	RebalancingPriority string         `json:"rebalancing_priority"`
	CurrentAllocation   portal.Row     `json:"current_allocation"`
	TargetAllocation    portal.Row     `json:"target_allocation"`
}

// CustomerProfile is the header of a customer analysis.
type CustomerProfile struct {
	UserID            string         `json:"user_id"`
	Name              string         `json:"name"`
	Age               int            `json:"age"`
	Category          string         `json:"category"`
	PortfolioValue    portal.Money   `json:"portfolio_value"`
	AvgReturn         portal.Percent `json:"avg_return"`
	EquityDrift       portal.Percent `json:"equity_drift"`
	CurrentAllocation portal.Row     `json:"current_allocation"`
	TargetAllocation  portal.Row     `json:"target_allocation"`
}

// CustomerScenarios is the personalized analysis of one customer. Raw is
// the payload as received, kept for the hand-off.
type CustomerScenarios struct {
	UserID                string          `json:"user_id"`
	Profile               CustomerProfile `json:"customer_profile"`
	PersonalizedScenarios []Scenario      `json:"personalized_scenarios"`
	GeneralScenarios      []Scenario      `json:"general_scenarios"`
	Raw                   json.RawMessage `json:"-"`
}

// All returns the personalized scenarios followed by the general ones.
func (c *CustomerScenarios) All() []Scenario {
	return append(append([]Scenario(nil), c.PersonalizedScenarios...), c.GeneralScenarios...)
}
