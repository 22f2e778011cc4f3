package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/portal"
	"github.com/etnz/portal/assistant"
	"github.com/etnz/portal/store"
	md "github.com/nao1215/markdown"
)

var panelTitles = map[assistant.Panel]string{
	assistant.ChatPanel:       "AI Chat",
	assistant.AnalysisPanel:   "Portfolio Analysis",
	assistant.RiskPanel:       "Risk Alerts",
	assistant.MarketPanel:     "Market Intelligence",
	assistant.GoalsPanel:      "Goals & Planning",
	assistant.MonitoringPanel: "Monitoring",
}

// RenderPanel renders the cards of a loaded panel, or its failure message.
func RenderPanel(v *assistant.PanelView) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(panelTitles[v.Panel])
	if v.Message != "" {
		doc.PlainText(v.Message)
		return doc.String()
	}
	for _, c := range v.Cards {
		card(doc, c)
	}
	return doc.String()
}

func card(doc *md.Markdown, c assistant.Card) {
	title := c.Title
	if c.Badge != "" {
		title += " [" + strings.ToUpper(c.Badge) + "]"
	}
	doc.H2(title)
	if c.Body != "" {
		doc.PlainText(c.Body)
	}
	if len(c.Facts) > 0 {
		set := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
			Header:    []string{"", ""},
		}
		for _, f := range c.Facts {
			set.Rows = append(set.Rows, []string{md.Bold(f.Label), f.Value})
		}
		writeTable(doc, set)
	}
	if len(c.List) > 0 {
		if c.ListTitle != "" {
			doc.PlainText(md.Bold(c.ListTitle))
		}
		doc.BulletList(c.List...)
	}
}

// RenderStatus is the one-line agent status.
func RenderStatus(s *assistant.AgentStatus) string {
	if s == nil {
		return "Agents offline"
	}
	return fmt.Sprintf("%d agents active (%s), %d insights", len(s.Active), strings.Join(s.Active, ", "), s.TotalInsights)
}

// RenderCustomers renders the customer directory.
func RenderCustomers(customers []assistant.Customer) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Customers")
	if len(customers) == 0 {
		doc.PlainText("No customers found.")
		return doc.String()
	}
	set := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft,
		},
		Header: []string{"ID", "Name", "Age", "Category", "Portfolio", "Avg Return", "Equity Drift", "Priority"},
	}
	for _, c := range customers {
		set.Rows = append(set.Rows, []string{
			c.UserID, c.Name, strconv.Itoa(c.Age), c.Category, c.PortfolioValue.String(),
			c.AvgReturn.Short(), c.EquityDrift.Short(), c.RebalancingPriority,
		})
	}
	writeTable(doc, set)
	return doc.String()
}

// RenderCustomerScenarios renders the personalized analysis of a customer.
func RenderCustomerScenarios(cs *assistant.CustomerScenarios) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	p := cs.Profile
	doc.H1(fmt.Sprintf("%s (%s)", p.Name, cs.UserID))
	doc.PlainText(fmt.Sprintf("%s, age %d. Portfolio %s, average return %s, equity drift %s.",
		p.Category, p.Age, p.PortfolioValue, p.AvgReturn.Short(), p.EquityDrift.Short()))
	if !p.CurrentAllocation.IsEmpty() {
		writeTable(doc, allocationComparison(p.CurrentAllocation, p.TargetAllocation))
	}

	doc.H2("Personalized Scenarios")
	scenarios(doc, cs.PersonalizedScenarios)
	doc.H2("General Scenarios")
	scenarios(doc, cs.GeneralScenarios)
	return doc.String()
}

func allocationComparison(current, target portal.Row) md.TableSet {
	set := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Asset Class", "Current", "Target"},
	}
	for _, k := range current.Keys() {
		cur, _ := current.Float(k)
		line := []string{portal.TitleCase(k), portal.Percent(cur).Short(), "-"}
		if t, ok := target.Float(k); ok {
			line[2] = portal.Percent(t).Short()
		}
		set.Rows = append(set.Rows, line)
	}
	return set
}

func scenarios(doc *md.Markdown, list []assistant.Scenario) {
	if len(list) == 0 {
		doc.PlainText("No scenarios available.")
		return
	}
	for _, s := range list {
		title := s.Title
		if s.ScenarioID != "" {
			title = fmt.Sprintf("%s (%s)", s.Title, s.ScenarioID)
		}
		doc.H3(title)
		doc.PlainText(s.Description)
		var facts []string
		for _, f := range []struct{ label, value string }{
			{"Impact", s.PortfolioImpact},
			{"Risk", s.RiskLevel},
			{"Horizon", s.TimeHorizon},
			{"Urgency", s.Urgency},
		} {
			if f.value != "" {
				facts = append(facts, f.label+": "+f.value)
			}
		}
		if len(facts) > 0 {
			doc.PlainText(md.Italic(strings.Join(facts, ", ")))
		}
		if s.Recommendation != "" {
			doc.PlainText(md.Bold("Recommendation") + ": " + s.Recommendation)
		}
		if len(s.ActionItems) > 0 {
			doc.OrderedList(s.ActionItems...)
		}
		if s.ExpectedOutcome != "" {
			doc.PlainText(md.Bold("Expected outcome") + ": " + s.ExpectedOutcome)
		}
	}
}

// RenderLibrary renders the general scenario catalog.
func RenderLibrary(lib *assistant.ScenarioLibrary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Scenario Library")
	scenarios(doc, lib.Scenarios)
	if len(lib.QuickScenarios) > 0 {
		doc.H2("Quick Questions")
		var titles []string
		for _, q := range lib.QuickScenarios {
			titles = append(titles, assistant.TellMeMore(q.Title))
		}
		doc.BulletList(titles...)
	}
	return doc.String()
}

// RenderSaved lists the local snapshots.
func RenderSaved(entries []store.Entry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Saved Snapshots")
	if len(entries) == 0 {
		doc.PlainText("Nothing saved yet.")
		return doc.String()
	}
	set := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Key", "Saved", "Bytes"},
	}
	for _, e := range entries {
		set.Rows = append(set.Rows, []string{e.Key, e.SavedAt.Format(time.DateTime), strconv.Itoa(e.Size)})
	}
	writeTable(doc, set)
	return doc.String()
}
