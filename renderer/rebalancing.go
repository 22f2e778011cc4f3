package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/portal"
	md "github.com/nao1215/markdown"
)

// RenderGuided renders the guided rebalancing page. Holdings and scenarios
// are independent sections: a failure in one leaves the other intact.
func RenderGuided(s *portal.RebalancingSession) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Rebalance %s", portal.TitleCase(s.AssetClass)))

	doc.H2("Current Holdings")
	switch {
	case s.HoldingsErr != nil:
		doc.PlainText("Error loading holdings: " + portal.Message(s.HoldingsErr))
	case len(s.Holdings) == 0:
		doc.PlainText(fmt.Sprintf("No holdings found for %s.", s.AssetClass))
	default:
		writeTable(doc, holdingsTable(s.Holdings))
	}

	doc.H2("Rebalancing Scenarios")
	switch {
	case s.ScenariosErr != nil:
		doc.PlainText("Error loading scenarios: " + portal.Message(s.ScenariosErr))
	case len(s.Scenarios) == 0:
		doc.PlainText(md.Bold("No Rebalancing Needed") + ": your allocation is within its target range.")
	default:
		for _, sc := range s.Scenarios {
			scenario(doc, sc, s.IsSelected(sc.ID))
		}
	}

	switch s.State {
	case portal.RebalancingSuccess:
		doc.H2("Rebalancing Complete")
		if s.Result != nil && s.Result.Message != "" {
			doc.PlainText(s.Result.Message)
		}
	case portal.RebalancingErrorShown:
		doc.H2("Rebalancing Failed")
		doc.PlainText(portal.Message(s.Err))
	}
	return doc.String()
}

func holdingsTable(holdings []portal.Holding) md.TableSet {
	set := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft,
		},
		Header: []string{"Fund", "Symbol", "Units", "Value", "Gain", "Return", "Rating"},
	}
	for _, h := range holdings {
		set.Rows = append(set.Rows, []string{
			h.FundName,
			h.FundSymbol,
			strconv.FormatFloat(h.UnitsHeld, 'f', -1, 64),
			h.CurrentValue.String(),
			h.Gain().SignedString(),
			h.ReturnPercent.SignedString(),
			h.PerformanceRating,
		})
	}
	return set
}

func scenario(doc *md.Markdown, sc portal.Scenario, selected bool) {
	title := fmt.Sprintf("%d. %s", sc.ID, sc.Name)
	if selected {
		title += " (selected)"
	}
	doc.H3(title)
	doc.PlainText(sc.Description)
	doc.PlainText(fmt.Sprintf("Risk %s, expected return %s, timeframe %s, cost %s.",
		sc.RiskLevel, sc.ExpectedReturn, sc.Timeframe, sc.Cost))
	if len(sc.Actions) == 0 {
		return
	}
	set := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft},
		Header:    []string{"Action", "Fund", "Amount", "Reason"},
	}
	for _, a := range sc.Sells() {
		set.Rows = append(set.Rows, []string{"SELL", fmt.Sprintf("%s (%s)", a.FundName, a.FundSymbol), a.Amount.String(), a.Reason})
	}
	for _, a := range sc.Buys() {
		set.Rows = append(set.Rows, []string{"BUY", fmt.Sprintf("%s (%s)", a.FundName, a.FundSymbol), a.Amount.String(), a.Reason})
	}
	writeTable(doc, set)
}

// RenderCustom renders the custom rebalancing page with its running totals.
func RenderCustom(s *portal.CustomSession) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Custom Rebalancing - %s", portal.TitleCase(s.AssetClass)))

	if s.Options == nil {
		if s.Err != nil {
			doc.PlainText("Error loading rebalancing options: " + portal.Message(s.Err))
		}
		return doc.String()
	}

	doc.H2("Sell Options")
	if len(s.Sells) == 0 {
		doc.PlainText("No sell options available.")
	} else {
		writeTable(doc, lineItems(s.Sells, true))
	}
	doc.H2("Buy Options")
	if len(s.Buys) == 0 {
		doc.PlainText("No buy options available.")
	} else {
		writeTable(doc, lineItems(s.Buys, false))
	}

	t := s.Totals()
	net := t.Net.SignedString()
	if t.Positive() {
		net = "+" + t.Net.String()
	}
	doc.H2("Selection Summary")
	writeTable(doc, md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Total", "Amount"},
		Rows: [][]string{
			{"Sell", t.Sell.String()},
			{"Buy", t.Buy.String()},
			{md.Bold("Net Change"), md.Bold(net)},
		},
	})

	switch s.State {
	case portal.CustomSuccess:
		doc.H2("Custom Rebalancing Complete")
		if s.Result != nil {
			doc.PlainText(s.Result.Message)
			r := s.Result.Summary
			writeTable(doc, md.TableSet{
				Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
				Header:    []string{"Executed", ""},
				Rows: [][]string{
					{fmt.Sprintf("Sells (%d)", r.NumSells), r.TotalSellAmount.String()},
					{fmt.Sprintf("Buys (%d)", r.NumBuys), r.TotalBuyAmount.String()},
					{"Net Change", r.NetChange.SignedString()},
				},
			})
		}
	case portal.CustomErrorShown:
		doc.H2("Custom Rebalancing Failed")
		doc.PlainText(portal.Message(s.Err))
	}
	return doc.String()
}

func lineItems(items []portal.LineItem, sell bool) md.TableSet {
	set := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"", "ID", "Fund", "Suggested", "Amount"},
	}
	if sell {
		set.Header = append(set.Header, "Max")
		set.Alignment = append(set.Alignment, md.AlignRight)
	}
	for _, li := range items {
		box := "[ ]"
		if li.Selected {
			box = "[x]"
		}
		line := []string{box, li.ID, fmt.Sprintf("%s (%s)", li.FundName, li.FundSymbol), li.Suggested.String(), li.Amount.String()}
		if sell {
			line = append(line, li.Max.String())
		}
		set.Rows = append(set.Rows, line)
	}
	return set
}
