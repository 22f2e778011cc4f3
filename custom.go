package portal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Custom amounts move in steps of AmountStep and never go below MinAmount.
var (
	MinAmount  = USD(100)
	AmountStep = USD(100)
)

// CustomState is the position in the custom rebalancing page.
type CustomState int

const (
	CustomLoading CustomState = iota
	OptionsShown
	SelectionsMade
	CustomExecuting
	CustomSuccess
	CustomErrorShown
)

func (s CustomState) String() string {
	switch s {
	case CustomLoading:
		return "loading"
	case OptionsShown:
		return "options"
	case SelectionsMade:
		return "selected"
	case CustomExecuting:
		return "executing"
	case CustomSuccess:
		return "success"
	case CustomErrorShown:
		return "error"
	}
	return "unknown"
}

// LineItem is a toggleable sell or buy candidate with its editable amount.
type LineItem struct {
	ID         string
	FundSymbol string
	FundName   string
	Suggested  Money
	Max        Money // zero means unbounded
	Amount     Money
	Selected   bool
}

// Clamp bounds amount to the item's range.
func (li LineItem) Clamp(amount Money) Money {
	amount = Max(amount, MinAmount)
	if !li.Max.IsZero() {
		amount = Min(amount, li.Max)
	}
	return amount
}

// CustomTotals are the running totals of the selection.
type CustomTotals struct {
	Sell Money
	Buy  Money
	Net  Money // Buy - Sell
}

// Positive reports whether the net change is shown with the positive style.
func (t CustomTotals) Positive() bool { return !t.Net.IsNegative() }

// CustomSession is the custom rebalancing page of one user and asset class.
type CustomSession struct {
	UserID     string
	AssetClass string
	Options    *RebalanceOptions
	Sells      []LineItem
	Buys       []LineItem
	State      CustomState
	Result     *CustomResult
	Err        error
}

// NewCustomSession returns a session in the loading state.
func NewCustomSession(userID, assetClass string) *CustomSession {
	return &CustomSession{UserID: userID, AssetClass: assetClass}
}

// Load fetches the sell and buy candidates.
func (s *CustomSession) Load(ctx context.Context, src Source) error {
	s.State = CustomLoading
	opts, err := src.RebalanceOptions(ctx, s.UserID, s.AssetClass)
	if err != nil {
		s.State, s.Err = CustomErrorShown, err
		return err
	}
	s.SetOptions(opts)
	return nil
}

// SetOptions replaces the candidates, none selected.
func (s *CustomSession) SetOptions(opts *RebalanceOptions) {
	s.Options = opts
	s.Sells, s.Buys = nil, nil
	for _, o := range opts.SellOptions {
		li := LineItem{ID: o.ID, FundSymbol: o.FundSymbol, FundName: o.FundName, Suggested: o.SuggestedSellAmount, Max: o.CurrentValue}
		li.Amount = li.Clamp(li.Suggested)
		s.Sells = append(s.Sells, li)
	}
	for _, o := range opts.BuyOptions {
		li := LineItem{ID: o.ID, FundSymbol: o.FundSymbol, FundName: o.FundName, Suggested: o.SuggestedBuyAmount}
		li.Amount = li.Clamp(li.Suggested)
		s.Buys = append(s.Buys, li)
	}
	s.State, s.Err = OptionsShown, nil
}

func (s *CustomSession) item(id string) (*LineItem, error) {
	for i := range s.Sells {
		if s.Sells[i].ID == id {
			return &s.Sells[i], nil
		}
	}
	for i := range s.Buys {
		if s.Buys[i].ID == id {
			return &s.Buys[i], nil
		}
	}
	return nil, fmt.Errorf("no option %q", id)
}

// Toggle flips the selection of the item with id.
func (s *CustomSession) Toggle(id string) error {
	li, err := s.item(id)
	if err != nil {
		return err
	}
	li.Selected = !li.Selected
	s.refreshState()
	return nil
}

// SetAmount edits the amount of the item with id, clamped to its range.
func (s *CustomSession) SetAmount(id string, amount Money) (Money, error) {
	li, err := s.item(id)
	if err != nil {
		return Money{}, err
	}
	li.Amount = li.Clamp(amount)
	return li.Amount, nil
}

func (s *CustomSession) refreshState() {
	if s.State != OptionsShown && s.State != SelectionsMade {
		return
	}
	s.State = OptionsShown
	if len(s.SelectedSells())+len(s.SelectedBuys()) > 0 {
		s.State = SelectionsMade
	}
}

func selectedOf(items []LineItem) []Selection {
	var res []Selection
	for _, li := range items {
		if li.Selected {
			res = append(res, Selection{ID: li.ID, FundSymbol: li.FundSymbol, FundName: li.FundName, Amount: li.Amount})
		}
	}
	return res
}

// SelectedSells returns the selected sells with their current amounts.
func (s *CustomSession) SelectedSells() []Selection { return selectedOf(s.Sells) }

// SelectedBuys returns the selected buys with their current amounts.
func (s *CustomSession) SelectedBuys() []Selection { return selectedOf(s.Buys) }

// Totals recomputes the running totals from the selection.
func (s *CustomSession) Totals() CustomTotals {
	return Totals(s.SelectedSells(), s.SelectedBuys())
}

// Totals sums sells and buys exactly.
func Totals(sells, buys []Selection) CustomTotals {
	t := CustomTotals{Sell: USD(0), Buy: USD(0)}
	for _, x := range sells {
		t.Sell = t.Sell.Add(x.Amount)
	}
	for _, x := range buys {
		t.Buy = t.Buy.Add(x.Amount)
	}
	t.Net = t.Buy.Sub(t.Sell)
	return t
}

// Execute posts the selections.
func (s *CustomSession) Execute(ctx context.Context, src Source) error {
	if s.State != SelectionsMade {
		return ErrNoSelection
	}
	s.State = CustomExecuting
	res, err := src.ExecuteCustom(ctx, CustomRequest{
		UserID:        s.UserID,
		SelectedSells: s.SelectedSells(),
		SelectedBuys:  s.SelectedBuys(),
	})
	if err != nil {
		s.State, s.Err = CustomErrorShown, err
		return err
	}
	s.State, s.Result, s.Err = CustomSuccess, res, nil
	return nil
}

// Retry goes back to the options after an error, keeping the selection.
func (s *CustomSession) Retry() {
	if s.State != CustomErrorShown || s.Options == nil {
		return
	}
	s.State, s.Err = OptionsShown, nil
	s.refreshState()
}

// CustomReportFilename is the download name of the custom report made on day.
func CustomReportFilename(day time.Time) string {
	return fmt.Sprintf("custom_rebalancing_report_%s.csv", day.Format("2006-01-02"))
}

// WriteReport writes the selection as CSV, built from the client-held
// selection only.
func (s *CustomSession) WriteReport(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Transaction Type", "Fund Name", "Fund Symbol", "Amount"})
	for _, x := range s.SelectedSells() {
		cw.Write([]string{"SELL", x.FundName, x.FundSymbol, "$" + x.Amount.Decimal().StringFixed(2)})
	}
	for _, x := range s.SelectedBuys() {
		cw.Write([]string{"BUY", x.FundName, x.FundSymbol, "$" + x.Amount.Decimal().StringFixed(2)})
	}
	cw.Flush()
	return cw.Error()
}
