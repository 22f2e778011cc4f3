package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/portal"
	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// trade is a SYM or SYM=amount flag value. A zero amount keeps the
// suggested amount.
type trade struct {
	symbol string
	amount decimal.Decimal
}

// trades collects repeated trade flags.
type trades []trade

func (t *trades) String() string {
	parts := make([]string, len(*t))
	for i, x := range *t {
		parts[i] = x.symbol
		if !x.amount.IsZero() {
			parts[i] += "=" + x.amount.String()
		}
	}
	return strings.Join(parts, ",")
}

func (t *trades) Set(v string) error {
	sym, raw, found := strings.Cut(v, "=")
	sym = strings.TrimSpace(sym)
	if sym == "" {
		return fmt.Errorf("missing fund symbol in %q", v)
	}
	x := trade{symbol: sym}
	if found {
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid amount in %q: %w", v, err)
		}
		x.amount = amount
	}
	*t = append(*t, x)
	return nil
}

// customCmd holds the flags for the 'custom' subcommand.
type customCmd struct {
	asset   string
	sells   trades
	buys    trades
	execute bool
	report  string
}

func (*customCmd) Name() string     { return "custom" }
func (*customCmd) Synopsis() string { return "pick the funds to sell and buy yourself" }
func (*customCmd) Usage() string {
	return `pmp [-user <id>] custom -asset <class> [-sell SYM[=amount]]... [-buy SYM[=amount]]... [-execute] [-report <file>|auto|-]

  Displays the sell and buy candidates of an asset class. Each -sell and -buy
  selects a candidate by fund symbol; the amount defaults to the suggested
  one and is kept between $100 and the current value of the fund.

  -report writes the selected transactions as CSV.
`
}

func (c *customCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Asset class: equities, bonds, cash or alternatives")
	f.Var(&c.sells, "sell", "Fund to sell, as SYM or SYM=amount (repeatable)")
	f.Var(&c.buys, "buy", "Fund to buy, as SYM or SYM=amount (repeatable)")
	f.BoolVar(&c.execute, "execute", false, "Execute the selection")
	f.StringVar(&c.report, "report", "", "Write the selected transactions as CSV to this file")
}

func (c *customCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		fmt.Fprintln(os.Stderr, "Error: custom requires -asset")
		return subcommands.ExitUsageError
	}

	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()

	s, err := e.controller().OpenCustom(ctx, e.cfg.User, c.asset)
	if s == nil {
		fmt.Fprintf(os.Stderr, "Error loading options: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		printMarkdown(renderer.RenderCustom(s))
		return subcommands.ExitFailure
	}

	if err := pick(s, s.Sells, c.sells); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := pick(s, s.Buys, c.buys); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var execErr error
	if c.execute {
		execErr = s.Execute(ctx, e.client)
	}
	printMarkdown(renderer.RenderCustom(s))
	if execErr != nil {
		if s.State != portal.CustomErrorShown {
			fmt.Fprintln(os.Stderr, portal.Message(execErr))
		}
		return subcommands.ExitFailure
	}

	if c.report != "" {
		if len(s.SelectedSells())+len(s.SelectedBuys()) == 0 {
			fmt.Fprintln(os.Stderr, "Error: nothing selected to report")
			return subcommands.ExitUsageError
		}
		if err := writeFile(e.filename(c.report, portal.CustomReportFilename), s.WriteReport); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// pick selects the candidates of items named by ts and sets their amounts.
func pick(s *portal.CustomSession, items []portal.LineItem, ts trades) error {
	for _, t := range ts {
		var id string
		var selected bool
		for _, li := range items {
			if strings.EqualFold(li.FundSymbol, t.symbol) {
				id, selected = li.ID, li.Selected
				break
			}
		}
		if id == "" {
			return fmt.Errorf("%s is not a candidate", t.symbol)
		}
		if !selected {
			if err := s.Toggle(id); err != nil {
				return err
			}
		}
		if !t.amount.IsZero() {
			if _, err := s.SetAmount(id, portal.USD(t.amount)); err != nil {
				return err
			}
		}
	}
	return nil
}
