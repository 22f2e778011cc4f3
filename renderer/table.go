package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/portal"
	md "github.com/nao1215/markdown"
)

// RenderScreen renders whichever view the screen holds.
func RenderScreen(s portal.Screen) string {
	switch {
	case s.Welcome != nil:
		return RenderWelcome(*s.Welcome)
	case s.Error != nil:
		return RenderError(s.Error)
	case s.Empty != nil:
		return s.Empty.Message + "\n"
	case s.Table != nil:
		return RenderTable(s.Table)
	}
	return ""
}

// RenderError renders the inline error view with its retry hint.
func RenderError(e *portal.ErrorView) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2(e.Title)
	doc.PlainText(e.Message)
	if e.Retry != "" {
		doc.PlainText(md.Italic(e.Retry))
	}
	return doc.String()
}

// RenderTable renders the title, the kind summary and the visible rows.
func RenderTable(t *portal.TableScreen) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	d := t.Dataset
	doc.H1(d.Title())
	count := d.RecordCount()
	if q := d.Query(); q != "" {
		count += fmt.Sprintf(" matching %q", q)
	}
	doc.PlainText(count)

	summary := RenderSummary(t.Summary)
	if summary != "" {
		doc.PlainText(summary)
	}

	doc.H2("Records")
	writeTable(doc, rowsTable(d.Headers(), d.Visible()))
	return doc.String()
}

// rowsTable lays rows out under the formatted keys of the first row.
func rowsTable(keys []string, rows []portal.Row) md.TableSet {
	set := md.TableSet{}
	for _, k := range keys {
		set.Header = append(set.Header, portal.FormatHeader(k))
	}
	for _, r := range rows {
		line := make([]string, len(keys))
		for i, k := range keys {
			v, _ := r.Get(k)
			line[i] = portal.FormatCell(v)
		}
		set.Rows = append(set.Rows, line)
	}
	return set
}

// writeTable adds set to doc with every header and cell escaped, so backend
// text never breaks the table layout.
func writeTable(doc *md.Markdown, set md.TableSet) {
	esc := md.TableSet{Alignment: set.Alignment, Header: escapeCells(set.Header)}
	for _, r := range set.Rows {
		esc.Rows = append(esc.Rows, escapeCells(r))
	}
	doc.Table(esc)
}

func escapeCells(cells []string) []string {
	res := make([]string, len(cells))
	for i, c := range cells {
		res[i] = escapeCell(c)
	}
	return res
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderSummary renders the digest of a table kind. The generic kind has none.
func RenderSummary(s portal.Summary) string {
	switch t := s.(type) {
	case portal.InvestorSummary:
		return investorSummary(t)
	case portal.AllocationSummary:
		return allocationSummary(t)
	case portal.MarketSummary:
		return marketSummary(t)
	case portal.ModelSummary:
		return modelSummary(t)
	case portal.RebalancingSummary:
		return rebalancingSummary(t)
	}
	return ""
}

func countsTable(label string, counts []portal.Count) md.TableSet {
	set := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{label, "Clients"},
	}
	for _, c := range counts {
		set.Rows = append(set.Rows, []string{c.Label, strconv.Itoa(c.N)})
	}
	return set
}

func investorSummary(s portal.InvestorSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2("Client Overview")
	writeTable(doc, md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Investors"), md.Bold(portal.FormatCount(s.Total))},
		Rows: [][]string{
			{"Assets Under Management", s.AUM.String()},
			{"Average Portfolio", s.Average.String()},
		},
	})
	doc.H3("Risk Capacity")
	writeTable(doc, countsTable("Risk Capacity", s.RiskCapacity))
	doc.H3("Age Groups")
	writeTable(doc, countsTable("Age Group", s.AgeGroups))

	if len(s.Top) > 0 {
		doc.H3("Top Clients")
		top := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft},
			Header:    []string{"Client", "City", "Portfolio", "Status"},
		}
		for _, c := range s.Top {
			top.Rows = append(top.Rows, []string{c.Name, c.City, c.Value.String(), c.Status})
		}
		writeTable(doc, top)
	}
	return doc.String()
}

func allocationSummary(s portal.AllocationSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2("Allocation Overview")
	doc.PlainText(fmt.Sprintf("%d portfolios, %s invested.", len(s.Cards), s.Total))

	avg := md.TableSet{Header: []string{"Average"}, Alignment: []md.TableAlignment{md.AlignLeft}}
	row := []string{"All portfolios"}
	for _, sl := range s.Average {
		avg.Header = append(avg.Header, portal.TitleCase(sl.Asset))
		avg.Alignment = append(avg.Alignment, md.AlignRight)
		row = append(row, sl.Percent.Short())
	}
	avg.Rows = [][]string{row}
	writeTable(doc, avg)

	cards := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Client", "Total"},
	}
	for _, a := range portal.AssetClasses {
		cards.Header = append(cards.Header, portal.TitleCase(a))
		cards.Alignment = append(cards.Alignment, md.AlignRight)
	}
	cards.Header = append(cards.Header, "Risk")
	cards.Alignment = append(cards.Alignment, md.AlignLeft)
	for _, c := range s.Cards {
		line := []string{fmt.Sprintf("%s (%s)", c.Name, c.UserID), c.Total.String()}
		for _, sl := range c.Slices {
			line = append(line, fmt.Sprintf("%s %s", sl.Percent.Short(), sl.Amount.Whole()))
		}
		cards.Rows = append(cards.Rows, append(line, c.Risk))
	}
	writeTable(doc, cards)
	return doc.String()
}

func marketSummary(s portal.MarketSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2("Market Overview")
	writeTable(doc, md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Products"), md.Bold(portal.FormatCount(s.Count))},
		Rows: [][]string{
			{"Average Price", s.Average.String()},
			{"Price Range", fmt.Sprintf("%s - %s", s.Low, s.High)},
			{"Sectors", strconv.Itoa(s.Sectors)},
		},
	})

	doc.H3("By Investment Type")
	types := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Type", "Products", "Total Value", "Sectors"},
	}
	for _, t := range s.Types {
		types.Rows = append(types.Rows, []string{t.Type, strconv.Itoa(t.Count), t.Total.String(), strings.Join(t.Sectors, ", ")})
	}
	writeTable(doc, types)

	doc.H3("By Sector")
	sectors := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Sector", "Products", "Average Price", "Share"},
	}
	for _, t := range s.BySector {
		sectors.Rows = append(sectors.Rows, []string{t.Sector, strconv.Itoa(t.Count), t.Average.String(), t.Share.Short()})
	}
	writeTable(doc, sectors)
	return doc.String()
}

func modelSummary(s portal.ModelSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2("Allocation Models")
	doc.PlainText(fmt.Sprintf("%d models, average equities %s, average bonds %s.",
		s.Total, s.AverageEquities.Short(), s.AverageBonds.Short()))
	for _, g := range s.Groups {
		doc.H3(fmt.Sprintf("%s (risk: %s)", g.Category, g.Risk))
		set := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Model", "Type", "Equities", "Bonds", "Cash", "Alternatives"},
		}
		for _, m := range g.Models {
			set.Rows = append(set.Rows, []string{
				m.No, m.Type, m.Equities.Short(), m.Bonds.Short(), m.Cash.Short(), m.Alternatives.Short(),
			})
		}
		writeTable(doc, set)
	}
	return doc.String()
}

func rebalancingSummary(s portal.RebalancingSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2("Rebalancing Priorities")
	writeTable(doc, md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Clients"), md.Bold(strconv.Itoa(s.Total))},
		Rows: [][]string{
			{"High Priority", strconv.Itoa(s.High)},
			{"Medium Priority", strconv.Itoa(s.Medium)},
			{"Low Priority", strconv.Itoa(s.Low)},
			{"Portfolio Value", s.Value.String()},
		},
	})
	cards := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Client", "Priority", "Value", "Avg Return", "Equity Drift", "Equity (Current/Target)"},
	}
	for _, c := range s.Cards {
		cards.Rows = append(cards.Rows, []string{
			fmt.Sprintf("%s (%s)", c.Name, c.UserID),
			c.Priority,
			c.Value.String(),
			c.AvgReturn.Short(),
			c.EquityDrift.Short(),
			fmt.Sprintf("%s / %s", c.CurrentEquity.Short(), c.TargetEquity.Short()),
		})
	}
	writeTable(doc, cards)
	return doc.String()
}
