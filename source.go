package portal

import (
	"context"
	"encoding/json"
)

// Source is the backend as seen by the portal. Every method is a single
// request; none is retried or cached.
type Source interface {
	Stats(ctx context.Context) (Stats, error)
	Table(ctx context.Context, name string) ([]Row, error)
	User(ctx context.Context, userID string) (*UserData, error)
	Holdings(ctx context.Context, userID string) ([]Holding, error)
	Scenarios(ctx context.Context, userID, assetClass string) (*ScenarioSet, error)
	ExecuteScenario(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error)
	RebalanceOptions(ctx context.Context, userID, assetClass string) (*RebalanceOptions, error)
	ExecuteCustom(ctx context.Context, req CustomRequest) (*CustomResult, error)
	AnalyzeBehavior(ctx context.Context, req CoachRequest) (*CoachAnalysis, error)
	ImplementCoach(ctx context.Context, req CoachImplementRequest) (*CoachImplementResult, error)
	CoachHistory(ctx context.Context, userID string) ([]CoachRecord, error)
}

// Stats are the record counts shown on the welcome screen.
type Stats struct {
	InvestorRecords         int `json:"investor_records"`
	PortfolioRecords        int `json:"portfolio_records"`
	ProductRecords          int `json:"product_records"`
	MasterAllocationRecords int `json:"master_allocation_records"`
}

// UserData is one user's portfolio snapshot.
type UserData struct {
	Portfolio       Row                 `json:"portfolio"`
	Profile         Row                 `json:"investor_profile"`
	Target          Row                 `json:"target_allocation"`
	Breakdown       AllocationBreakdown `json:"allocation_breakdown"`
	TotalInvestment Money               `json:"total_investment"`
}

// AssetAllocation is the current and target position of one asset class.
type AssetAllocation struct {
	Asset          string  `json:"-"`
	CurrentPercent Percent `json:"current_percent"`
	CurrentAmount  Money   `json:"current_amount"`
	TargetPercent  Percent `json:"target_percent"`
}

// Drift is current minus target, in percentage points.
func (a AssetAllocation) Drift() Percent { return a.CurrentPercent - a.TargetPercent }

// AllocationBreakdown keeps asset classes in the order the server sent them.
type AllocationBreakdown []AssetAllocation

func (b *AllocationBreakdown) UnmarshalJSON(data []byte) error {
	*b = nil
	return jsonObjectReader(data, func(key string, dec *json.Decoder) error {
		var a AssetAllocation
		if err := dec.Decode(&a); err != nil {
			return err
		}
		a.Asset = key
		*b = append(*b, a)
		return nil
	})
}

func (b AllocationBreakdown) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, a := range b {
		w.Append(a.Asset, a)
	}
	return w.MarshalJSON()
}

// Get returns the allocation of asset.
func (b AllocationBreakdown) Get(asset string) (AssetAllocation, bool) {
	for _, a := range b {
		if a.Asset == asset {
			return a, true
		}
	}
	return AssetAllocation{}, false
}

// Holding is a fund position of a user.
type Holding struct {
	FundSymbol          string  `json:"fund_symbol"`
	FundName            string  `json:"fund_name"`
	AssetClass          string  `json:"asset_class"`
	UnitsHeld           float64 `json:"units_held"`
	CurrentPrice        Money   `json:"current_price"`
	InvestedAmount      Money   `json:"invested_amount"`
	CurrentValue        Money   `json:"current_value"`
	ReturnPercent       Percent `json:"return_percent"`
	PerformanceRating   string  `json:"performance_rating"`
	RiskRating          string  `json:"risk_rating"`
	ExpenseRatio        Percent `json:"expense_ratio"`
	Returns1Year        Percent `json:"returns_1year"`
	Returns3Year        Percent `json:"returns_3year"`
	Category            string  `json:"category"`
	FundManager         string  `json:"fund_manager"`
	PerformanceCategory string  `json:"performance_category"`
}

// Gain is the unrealized gain of the holding.
func (h Holding) Gain() Money { return h.CurrentValue.Sub(h.InvestedAmount) }

// Action is one buy or sell step of a scenario.
type Action struct {
	Type               string  `json:"type"` // "buy" or "sell"
	FundName           string  `json:"fund_name"`
	FundSymbol         string  `json:"fund_symbol"`
	Amount             Money   `json:"amount"`
	Reason             string  `json:"reason,omitempty"`
	CurrentPerformance Percent `json:"current_performance"`
	Units              float64 `json:"units,omitempty"`
	ExpectedUnits      float64 `json:"expected_units,omitempty"`
}

func (a Action) IsSell() bool { return a.Type == "sell" }

// AllocationChange is the shift in percentage points a scenario announces.
type AllocationChange struct {
	EquityChange float64 `json:"equity_change"`
	BondChange   float64 `json:"bond_change"`
	CashChange   float64 `json:"cash_change"`
}

// Scenario is a server-proposed bundle of actions.
type Scenario struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	RiskLevel        string           `json:"risk_level"`
	ExpectedReturn   string           `json:"expected_return"`
	Timeframe        string           `json:"timeframe"`
	Cost             string           `json:"cost"`
	Actions          []Action         `json:"actions"`
	AllocationChange AllocationChange `json:"allocation_change"`
}

// Sells returns the sell actions, in order.
func (s Scenario) Sells() []Action { return filterActions(s.Actions, true) }

// Buys returns the buy actions, in order.
func (s Scenario) Buys() []Action { return filterActions(s.Actions, false) }

func filterActions(actions []Action, sell bool) []Action {
	var res []Action
	for _, a := range actions {
		if a.IsSell() == sell {
			res = append(res, a)
		}
	}
	return res
}

// ScenarioSet is the answer of the scenario endpoint.
type ScenarioSet struct {
	Scenarios         []Scenario `json:"scenarios"`
	CurrentAllocation Row        `json:"current_allocation"`
	TargetAllocation  Row        `json:"target_allocation"`
}

// ExecuteRequest posts a guided scenario back to the server.
type ExecuteRequest struct {
	UserID     string   `json:"user_id"`
	ScenarioID int      `json:"scenario_id"`
	AssetClass string   `json:"asset_class"`
	Actions    []Action `json:"actions"`
}

// ExecuteResult is the server's acknowledgement of an execution.
type ExecuteResult struct {
	Message string `json:"message"`
}

// SellOption is a candidate sale in the custom flow.
type SellOption struct {
	ID                  string  `json:"id"`
	FundSymbol          string  `json:"fund_symbol"`
	FundName            string  `json:"fund_name"`
	CurrentValue        Money   `json:"current_value"`
	UnitsHeld           float64 `json:"units_held"`
	ReturnPercent       Percent `json:"return_percent"`
	PerformanceRating   string  `json:"performance_rating"`
	RiskRating          string  `json:"risk_rating"`
	SuggestedSellAmount Money   `json:"suggested_sell_amount"`
	Reason              string  `json:"reason"`
	Priority            string  `json:"priority"`
}

// BuyOption is a candidate purchase in the custom flow.
type BuyOption struct {
	ID                 string  `json:"id"`
	FundSymbol         string  `json:"fund_symbol"`
	FundName           string  `json:"fund_name"`
	CurrentPrice       Money   `json:"current_price"`
	Returns1Year       Percent `json:"returns_1year"`
	Returns3Year       Percent `json:"returns_3year"`
	PerformanceRating  string  `json:"performance_rating"`
	RiskRating         string  `json:"risk_rating"`
	ExpenseRatio       Percent `json:"expense_ratio"`
	SuggestedBuyAmount Money   `json:"suggested_buy_amount"`
	Reason             string  `json:"reason"`
	Priority           string  `json:"priority"`
}

// RebalanceOptions lists the independent sell and buy candidates.
type RebalanceOptions struct {
	SellOptions         []SellOption `json:"sell_options"`
	BuyOptions          []BuyOption  `json:"buy_options"`
	AssetClass          string       `json:"asset_class"`
	TotalPortfolioValue Money        `json:"total_portfolio_value"`
}

// Selection is a chosen line item posted to the custom execution.
type Selection struct {
	ID         string `json:"id"`
	FundSymbol string `json:"fund_symbol"`
	FundName   string `json:"fund_name"`
	Amount     Money  `json:"amount"`
}

// CustomRequest posts the custom selections.
type CustomRequest struct {
	UserID        string      `json:"user_id"`
	SelectedSells []Selection `json:"selected_sells"`
	SelectedBuys  []Selection `json:"selected_buys"`
}

// CustomSummary is the transaction summary returned by the server.
type CustomSummary struct {
	TotalSellAmount Money `json:"total_sell_amount"`
	TotalBuyAmount  Money `json:"total_buy_amount"`
	NetChange       Money `json:"net_change"`
	NumSells        int   `json:"num_sells"`
	NumBuys         int   `json:"num_buys"`
}

// CustomResult is the answer to a custom execution.
type CustomResult struct {
	Message string        `json:"message"`
	Summary CustomSummary `json:"summary"`
}
