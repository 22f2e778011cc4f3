package portal

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func customOptions() *RebalanceOptions {
	return &RebalanceOptions{
		AssetClass: "equities",
		SellOptions: []SellOption{
			{ID: "sell_1", FundSymbol: "AAA", FundName: "Alpha Fund", CurrentValue: USD(800), SuggestedSellAmount: USD(500)},
		},
		BuyOptions: []BuyOption{
			{ID: "buy_1", FundSymbol: "BBB", FundName: "Beta Fund", SuggestedBuyAmount: USD(300)},
			{ID: "buy_2", FundSymbol: "CCC", FundName: "Gamma Fund", SuggestedBuyAmount: USD(250)},
		},
	}
}

func TestCustomSession_Totals(t *testing.T) {
	s := NewCustomSession("USR000001", "equities")
	if err := s.Load(context.Background(), &fakeSource{options: customOptions()}); err != nil {
		t.Fatal(err)
	}
	if s.State != OptionsShown {
		t.Fatalf("State = %v, want options", s.State)
	}
	for _, id := range []string{"sell_1", "buy_1", "buy_2"} {
		if err := s.Toggle(id); err != nil {
			t.Fatal(err)
		}
	}
	got := s.Totals()
	if !got.Sell.Equal(USD(500)) || !got.Buy.Equal(USD(550)) || !got.Net.Equal(USD(50)) {
		t.Errorf("Totals() = %v / %v / %v, want $500 / $550 / +$50", got.Sell, got.Buy, got.Net)
	}
	if !got.Positive() {
		t.Error("Positive() = false for a net of +50")
	}

	s.Toggle("buy_2")
	if s.Totals().Positive() {
		t.Error("Positive() = true for a net of -200")
	}
}

func TestCustomSession_SetAmountClamps(t *testing.T) {
	s := NewCustomSession("USR000001", "equities")
	s.SetOptions(customOptions())

	tests := []struct {
		id   string
		in   Money
		want Money
	}{
		{"sell_1", USD(50), USD(100)},
		{"sell_1", USD(1000), USD(800)},
		{"sell_1", USD(400), USD(400)},
		{"buy_1", USD(100000), USD(100000)},
	}
	for _, tt := range tests {
		got, err := s.SetAmount(tt.id, tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("SetAmount(%s, %v) = %v, want %v", tt.id, tt.in, got, tt.want)
		}
	}
	if _, err := s.SetAmount("nope", USD(1)); err == nil {
		t.Error("SetAmount(nope) should fail")
	}
}

func TestCustomSession_ExecuteRequiresSelection(t *testing.T) {
	src := &fakeSource{}
	s := NewCustomSession("USR000001", "equities")
	s.SetOptions(customOptions())
	if err := s.Execute(context.Background(), src); err == nil {
		t.Fatal("Execute() with nothing selected should fail")
	}
	if len(src.custom) != 0 {
		t.Error("Execute() reached the server")
	}

	s.Toggle("sell_1")
	s.Toggle("buy_1")
	if err := s.Execute(context.Background(), src); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	req := src.custom[0]
	if len(req.SelectedSells) != 1 || len(req.SelectedBuys) != 1 {
		t.Errorf("posted %+v", req)
	}
	if !s.Result.Summary.NetChange.Equal(USD(-200)) {
		t.Errorf("NetChange = %v, want -$200.00", s.Result.Summary.NetChange)
	}
}

func TestCustomSession_RetryKeepsSelection(t *testing.T) {
	s := NewCustomSession("USR000001", "equities")
	s.SetOptions(customOptions())
	s.Toggle("sell_1")
	s.State, s.Err = CustomErrorShown, errFake

	s.Retry()
	if s.State != SelectionsMade || len(s.SelectedSells()) != 1 {
		t.Errorf("after Retry() state = %v, %d sells selected", s.State, len(s.SelectedSells()))
	}
}

func TestCustomSession_WriteReport(t *testing.T) {
	s := NewCustomSession("USR000001", "equities")
	s.SetOptions(customOptions())
	s.Toggle("sell_1")
	s.Toggle("buy_2")

	var b strings.Builder
	if err := s.WriteReport(&b); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Transaction Type,Fund Name,Fund Symbol,Amount",
		"SELL,Alpha Fund,AAA,$500.00",
		"BUY,Gamma Fund,CCC,$250.00",
		"",
	}
	if diff := cmp.Diff(want, strings.Split(b.String(), "\n")); diff != "" {
		t.Errorf("WriteReport() mismatch (-want +got):\n%s", diff)
	}
}
