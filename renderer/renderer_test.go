package renderer

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/portal"
	"github.com/etnz/portal/assistant"
	"github.com/etnz/portal/store"
	"github.com/google/go-cmp/cmp"
)

func decode[T any](t *testing.T, data string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		t.Fatalf("cannot decode test data: %v", err)
	}
	return v
}

// containsAll reports every want missing from got.
func containsAll(t *testing.T, name, got string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("%s() output is missing %q\n%s", name, w, got)
		}
	}
}

func TestRenderReport(t *testing.T) {
	sc := portal.Scenario{
		ID:             1,
		Name:           "Reduce Equity",
		ExpectedReturn: "6-8%",
		RiskLevel:      "Medium",
		Actions: []portal.Action{
			{Type: "sell", FundName: "Alpha Fund", FundSymbol: "AAA", Amount: portal.USD(1000)},
			{Type: "buy", FundName: "Beta Fund", FundSymbol: "BBB", Amount: portal.USD(1000)},
		},
		AllocationChange: portal.AllocationChange{EquityChange: -5, BondChange: 5},
	}
	got := RenderReport(NewReport(sc, time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)))
	want := `PORTFOLIO REBALANCING REPORT
============================

Strategy: Reduce Equity
Date: 3/4/2025
Expected Return: 6-8%
Risk Level: Medium

ACTIONS EXECUTED:
- SELL Alpha Fund: $1,000.00
- BUY Beta Fund: $1,000.00

ALLOCATION CHANGES:
- Equities: -5%
- Bonds: +5%

Status: Portfolio Successfully Rebalanced
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderReport() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewReport_FractionalChange(t *testing.T) {
	r := NewReport(portal.Scenario{AllocationChange: portal.AllocationChange{CashChange: 2.5}}, time.Now())
	if diff := cmp.Diff([]string{"Cash: +2.5%"}, r.Changes); diff != "" {
		t.Errorf("Changes mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderWelcome(t *testing.T) {
	got := RenderWelcome(portal.Stats{InvestorRecords: 120, PortfolioRecords: 118, ProductRecords: 45, MasterAllocationRecords: 9})
	containsAll(t, "RenderWelcome", got,
		"# Portfolio Management Portal",
		"| Investors | 120 |",
		"| Allocation Models | 9 |",
		"- investor-data",
		"- ai-rebalancing",
	)
}

func TestRenderScreen(t *testing.T) {
	tests := []struct {
		name   string
		screen portal.Screen
		want   string
	}{
		{
			name: "error",
			screen: portal.Screen{Error: &portal.ErrorView{
				Title:   "Error Loading Data",
				Message: portal.LoadMessage(&portal.AppError{Status: 500, Message: "Database unavailable"}),
				Retry:   "Reload Page",
			}},
			want: "Error loading data: Database unavailable",
		},
		{
			name:   "empty",
			screen: portal.Screen{Empty: &portal.EmptyView{Message: "No data available"}},
			want:   "No data available",
		},
		{
			name:   "welcome",
			screen: portal.Screen{Welcome: &portal.Stats{InvestorRecords: 3}},
			want:   "| Investors | 3 |",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			containsAll(t, "RenderScreen", RenderScreen(tt.screen), tt.want)
		})
	}
}

const investors = `[
	{"user_id":"USR000001","full_name":"Alice Martin","age":28,"city":"Boston","risk_capacity":"Moderate","total_portfolio_value":250000},
	{"user_id":"USR000002","full_name":"Bob Stone","age":52,"city":"Denver","risk_capacity":"Aggressive","total_portfolio_value":1200000},
	{"user_id":"USR000003","full_name":"Carol | Jones","age":67,"city":"Austin","risk_capacity":null,"total_portfolio_value":80000}
]`

func TestRenderTable_Investors(t *testing.T) {
	d := portal.NewTableDataset("investor-data", decode[[]portal.Row](t, investors))
	got := RenderTable(&portal.TableScreen{Dataset: d, Summary: portal.Summarize(d.Kind, d.Visible())})
	containsAll(t, "RenderTable", got,
		"# Investor Reference Data - Client Profiles & Preferences",
		"3 record(s)",
		"$1,530,000.00",
		"User ID",
		"Total Portfolio Value",
		"Carol \\| Jones",
		"Bob Stone",
		"Premium",
	)
}

func TestRenderTable_CellsStayInColumns(t *testing.T) {
	d := portal.NewTableDataset("investor-data", decode[[]portal.Row](t, investors))
	got := RenderTable(&portal.TableScreen{Dataset: d, Summary: portal.Summarize(d.Kind, d.Visible())})
	containsAll(t, "RenderTable", got,
		"| User ID | Full Name | Age | City | Risk Capacity | Total Portfolio Value |\n",
		"| USR000003 | Carol \\| Jones | 67 | Austin | - | 80,000 |\n",
		"| Carol \\| Jones | Austin | $80,000.00 | Standard |\n",
	)
	if strings.Contains(got, "| user_id |") {
		t.Error("RenderTable() shows raw keys as headers")
	}
}

func TestEscapeCell(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"a | b", `a \| b`},
		{"two\nlines", "two lines"},
		{"crlf\r\nline", "crlf line"},
	}
	for _, tt := range tests {
		if got := escapeCell(tt.in); got != tt.want {
			t.Errorf("escapeCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderTable_Filtered(t *testing.T) {
	d := portal.NewTableDataset("investor-data", decode[[]portal.Row](t, investors))
	rows := d.Filter("denver")
	got := RenderTable(&portal.TableScreen{Dataset: d, Summary: portal.Summarize(d.Kind, rows)})
	containsAll(t, "RenderTable", got, `matching "denver"`, "Bob Stone")
	if strings.Contains(got, "Alice Martin") {
		t.Errorf("RenderTable() shows a filtered out row:\n%s", got)
	}
}

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name string
		s    portal.Summary
		want []string
	}{
		{"generic", portal.GenericSummary{}, nil},
		{
			"rebalancing",
			portal.RebalancingSummary{Total: 2, High: 1, Low: 1, Value: portal.USD(3000), Cards: []portal.RebalancingCard{
				{UserID: "U1", Name: "Ann", Priority: "High", Value: portal.USD(1000)},
			}},
			[]string{"High Priority", "$3,000.00", "Ann (U1)"},
		},
		{
			"models",
			portal.ModelSummary{Total: 1, Groups: []portal.ModelGroup{{Category: "Growth", Risk: "Medium-High", Models: []portal.ModelCard{{No: "M2", Equities: 70}}}}},
			[]string{"Growth (risk: Medium-High)", "70.0%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderSummary(tt.s)
			if tt.want == nil && got != "" {
				t.Errorf("RenderSummary() = %q, want empty", got)
			}
			containsAll(t, "RenderSummary", got, tt.want...)
		})
	}
}

const flaggedUser = `{
	"portfolio": {"full_name": "Jane Doe"},
	"investor_profile": {"risk_capacity": "High Growth", "city": "Paris"},
	"allocation_breakdown": {
		"equities": {"current_percent": 65, "current_amount": 65000, "target_percent": 58},
		"bonds": {"current_percent": 35, "current_amount": 35000, "target_percent": 42}
	},
	"total_investment": 100000
}`

func TestRenderDashboard(t *testing.T) {
	u := decode[portal.UserData](t, flaggedUser)
	got := RenderDashboard(portal.NewDashboard("USR000001", &u))
	containsAll(t, "RenderDashboard", got,
		"Portfolio Dashboard - Jane Doe ⚠️ REBALANCING NEEDED",
		"Quick rebalance: equities",
		"JD Jane Doe",
		"High Growth (high)",
		"$100,000.00",
		"+7.00%",
		"**Rebalance Equities**: Consider reducing your equities allocation by 7.0% to match your target allocation.",
		"Current vs Target (bar)",
	)
}

func TestRenderGuided_IndependentSections(t *testing.T) {
	s := portal.NewRebalancingSession("USR000001", "equities")
	s.HoldingsErr = &portal.TransportError{Op: "GET /api/user/USR000001/holdings", Err: errors.New("refused")}
	s.Scenarios = []portal.Scenario{
		{ID: 1, Name: "Trim Tech", Actions: []portal.Action{{Type: "sell", FundName: "Alpha Fund", FundSymbol: "AAA", Amount: portal.USD(500)}}},
		{ID: 2, Name: "Hold"},
	}
	s.State = portal.HoldingsAndScenariosShown
	if err := s.Select(1); err != nil {
		t.Fatal(err)
	}

	got := RenderGuided(s)
	containsAll(t, "RenderGuided", got,
		"Error loading holdings: Failed to load data. Please try again.",
		"1. Trim Tech (selected)",
		"2. Hold",
		"Alpha Fund (AAA)",
		"$500.00",
	)
}

func TestRenderGuided_Empty(t *testing.T) {
	s := portal.NewRebalancingSession("USR000001", "bonds")
	s.State = portal.HoldingsAndScenariosShown
	containsAll(t, "RenderGuided", RenderGuided(s), "No holdings found for bonds.", "No Rebalancing Needed")
}

func TestRenderCustom(t *testing.T) {
	s := portal.NewCustomSession("USR000001", "equities")
	s.SetOptions(&portal.RebalanceOptions{
		SellOptions: []portal.SellOption{{ID: "sell_AAA", FundSymbol: "AAA", FundName: "Alpha Fund", CurrentValue: portal.USD(800), SuggestedSellAmount: portal.USD(500)}},
		BuyOptions:  []portal.BuyOption{{ID: "buy_CCC", FundSymbol: "CCC", FundName: "Gamma Fund", SuggestedBuyAmount: portal.USD(250)}},
	})
	for _, id := range []string{"sell_AAA", "buy_CCC"} {
		if err := s.Toggle(id); err != nil {
			t.Fatal(err)
		}
	}
	containsAll(t, "RenderCustom", RenderCustom(s),
		"[x]",
		"Alpha Fund (AAA)",
		"$800.00",
		"Gamma Fund (CCC)",
		"**Net Change**",
		"**-$250.00**",
	)
}

func TestRenderCustom_LoadError(t *testing.T) {
	s := portal.NewCustomSession("USR000001", "equities")
	s.Err = &portal.AppError{Status: 404, Message: "User not found"}
	containsAll(t, "RenderCustom", RenderCustom(s), "Error loading rebalancing options: User not found")
}

const analysis = `{
	"insights": {
		"emotional_state": {"level": "anxious", "description": "Markets worry you.", "recommendations": ["Avoid daily checks"]},
		"decision_pattern": {"strengths": ["Careful"], "weaknesses": ["Slow"], "recommendations": []},
		"risk_tolerance": {"suggested_level": "moderate", "reasoning": "Upcoming expenses.", "adjustments": []},
		"bias_warnings": [{"type": "loss_aversion", "warning": "Selling low", "mitigation": "Stick to the plan"}]
	},
	"recommendations": {
		"immediate_actions": ["Keep six months of expenses"],
		"allocation_changes": {"equities": 60, "bonds": 30, "cash": 10},
		"timeline_strategy": {"priority": "short_term", "actions": ["Review in 3 months"]},
		"emergency_fund": 6
	},
	"analysis_id": 12
}`

func TestRenderCoach(t *testing.T) {
	a := decode[portal.CoachAnalysis](t, analysis)
	s := portal.NewCoachSession("USR000001")
	s.Analysis, s.State = &a, portal.CoachInsightsShown
	if err := s.Select("gradual"); err != nil {
		t.Fatal(err)
	}
	got := RenderCoach(NewCoach(s))
	containsAll(t, "RenderCoach", got,
		"## Emotional State: anxious",
		"- Avoid daily checks",
		"**loss_aversion**: Selling low",
		"| Equities | 60.0% |",
		"Emergency fund: 6 months",
		"**[x]** **Gradual Transition** (`gradual`)",
		"[ ] **Immediate Rebalancing**",
	)
}

func TestRenderCoach_ValidationMessage(t *testing.T) {
	s := portal.NewCoachSession("USR000001")
	s.Err = portal.Questionnaire{}.Validate()
	got := RenderCoach(NewCoach(s))
	containsAll(t, "RenderCoach", got, "> Please fill in all required fields: primaryLifeEvent")
	if strings.Contains(got, "Implementation Options") {
		t.Errorf("RenderCoach() offers implementations without an analysis:\n%s", got)
	}
}

func TestRenderCoachHistory(t *testing.T) {
	got := RenderCoachHistory([]portal.CoachRecord{{ID: 3, AnalysisDate: "2025-03-04 10:00:00", LifeEvent: "job_change", CurrentEmotion: "calm"}})
	containsAll(t, "RenderCoachHistory", got, "Mar 4, 2025", "Job Change")
	containsAll(t, "RenderCoachHistory", RenderCoachHistory(nil), "No previous analyses.")
}

func TestRenderPanel(t *testing.T) {
	failed := &assistant.PanelView{Panel: assistant.RiskPanel, Message: "Error loading risk data"}
	containsAll(t, "RenderPanel", RenderPanel(failed), "# Risk Alerts", "Error loading risk data")

	v := &assistant.PanelView{Panel: assistant.MonitoringPanel, Cards: []assistant.Card{{
		Title: "Monitoring Status",
		Badge: "low",
		Body:  "All portfolios are being monitored successfully.",
		Facts: []assistant.Fact{{Label: "Status", Value: "Active"}},
		List:  []string{"No alerts or actions required at this time."},
	}}}
	containsAll(t, "RenderPanel", RenderPanel(v),
		"## Monitoring Status [LOW]",
		"**Status**",
		"Active",
		"- No alerts or actions required at this time.",
	)
}

func TestRenderStatus(t *testing.T) {
	if got := RenderStatus(nil); got != "Agents offline" {
		t.Errorf("RenderStatus(nil) = %q, want %q", got, "Agents offline")
	}
	got := RenderStatus(&assistant.AgentStatus{Active: []string{"risk", "market"}, TotalInsights: 4})
	if want := "2 agents active (risk, market), 4 insights"; got != want {
		t.Errorf("RenderStatus() = %q, want %q", got, want)
	}
}

func TestRenderCustomerScenarios(t *testing.T) {
	cs := decode[assistant.CustomerScenarios](t, `{
		"user_id": "USR000007",
		"customer_profile": {"name": "Dan Ray", "age": 41, "category": "Growth", "portfolio_value": 420000,
			"current_allocation": {"equities": 72}, "target_allocation": {"equities": 60}},
		"personalized_scenarios": [{"scenario_id": "P1", "title": "Lock in gains", "description": "Trim equities.", "action_items": ["Sell 10%"], "urgency": "high"}],
		"general_scenarios": []
	}`)
	containsAll(t, "RenderCustomerScenarios", RenderCustomerScenarios(&cs),
		"# Dan Ray (USR000007)",
		"$420,000.00",
		"72.0%",
		"60.0%",
		"### Lock in gains (P1)",
		"1. Sell 10%",
		"No scenarios available.",
	)
}

func TestRenderLibrary(t *testing.T) {
	lib := &assistant.ScenarioLibrary{QuickScenarios: []assistant.Scenario{{Title: "Market crash"}}}
	containsAll(t, "RenderLibrary", RenderLibrary(lib), "- Tell me more about: Market crash")
}

func TestRenderSaved(t *testing.T) {
	containsAll(t, "RenderSaved", RenderSaved(nil), "Nothing saved yet.")
	at := time.Date(2025, time.March, 4, 10, 30, 0, 0, time.UTC)
	got := RenderSaved([]store.Entry{{Key: "recommendations_USR000001", SavedAt: at, Size: 42}})
	containsAll(t, "RenderSaved", got, "recommendations_USR000001", "2025-03-04 10:30:00")
}

func TestRenderCustomers(t *testing.T) {
	got := RenderCustomers([]assistant.Customer{{UserID: "USR000002", Name: "Bob Stone", Age: 52, PortfolioValue: portal.USD(1200000), RebalancingPriority: "High"}})
	containsAll(t, "RenderCustomers", got, "USR000002", "Bob Stone", "$1,200,000.00")
}
