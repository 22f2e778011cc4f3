package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/portal"
	md "github.com/nao1215/markdown"
)

// RenderDashboard renders a user's dashboard. Charts are rendered as their
// data tables.
func RenderDashboard(d *portal.Dashboard) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(d.Title)

	if asset, ok := d.QuickRebalance(); ok {
		doc.Blockquote(fmt.Sprintf("Your %s allocation drifted from its target. Quick rebalance: %s.", asset, asset))
	}

	p := d.Profile
	age := "-"
	if p.Age > 0 {
		age = strconv.Itoa(p.Age)
	}
	doc.H2(fmt.Sprintf("%s %s", p.Initials, p.Name))
	writeTable(doc, md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Profile", ""},
		Rows: [][]string{
			{"Category", p.Category},
			{"Risk Capacity", fmt.Sprintf("%s (%s)", p.Risk, p.RiskIndicator)},
			{"City", p.City},
			{"Age", age},
			{"Rebalancing", p.Frequency},
			{"Last Rebalanced", p.LastRebalance},
			{"Total Investment", d.Total.String()},
		},
	})

	doc.H2("Allocation")
	alloc := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Asset Class", "Current", "Amount", "Target", "Drift", ""},
	}
	for _, a := range d.Breakdown {
		flag := ""
		if portal.NeedsRebalancing(a) {
			flag = "⚠️ rebalance"
		}
		alloc.Rows = append(alloc.Rows, []string{
			portal.TitleCase(a.Asset),
			a.CurrentPercent.Short(),
			a.CurrentAmount.String(),
			a.TargetPercent.Short(),
			a.Drift().SignedString(),
			flag,
		})
	}
	writeTable(doc, alloc)

	doc.H2("Recommendations")
	for _, r := range d.Recommendations {
		doc.PlainText(md.Bold(r.Title) + ": " + r.Description)
	}

	if len(d.Charts) > 0 {
		doc.H2("Charts")
		for _, c := range d.Charts {
			doc.H3(fmt.Sprintf("%s (%s)", c.Title, c.Type))
			writeTable(doc, chartTable(c))
		}
	}
	return doc.String()
}

// chartTable lays a chart spec out as one row per label.
func chartTable(c portal.ChartSpec) md.TableSet {
	set := md.TableSet{Header: []string{""}, Alignment: []md.TableAlignment{md.AlignLeft}}
	for _, s := range c.Series {
		set.Header = append(set.Header, s.Label)
		set.Alignment = append(set.Alignment, md.AlignRight)
	}
	for i, l := range c.Labels {
		line := []string{l}
		for _, s := range c.Series {
			v := ""
			if i < len(s.Values) {
				v = strings.TrimSuffix(strconv.FormatFloat(s.Values[i], 'f', 1, 64), ".0")
			}
			line = append(line, v)
		}
		set.Rows = append(set.Rows, line)
	}
	return set
}
