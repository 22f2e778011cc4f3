package renderer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/etnz/portal"
)

// Welcome is the landing screen: record counts and the dataset names.
type Welcome struct {
	Stats  portal.Stats
	Tables []string
}

// RenderWelcome renders the landing screen.
func RenderWelcome(stats portal.Stats) string {
	partials := map[string]string{
		"welcome_stats": "welcome_stats.md",
	}
	return renderTemplate("welcome", "welcome.md", partials, Welcome{Stats: stats, Tables: portal.TableNames()})
}

// Report is the downloadable text summary of a guided execution.
type Report struct {
	Strategy       string
	Date           string
	ExpectedReturn string
	RiskLevel      string
	Actions        []portal.Action
	Changes        []string
}

// NewReport builds the report of the selected scenario, dated on day.
func NewReport(sc portal.Scenario, day time.Time) *Report {
	r := &Report{
		Strategy:       sc.Name,
		Date:           day.Format("1/2/2006"),
		ExpectedReturn: sc.ExpectedReturn,
		RiskLevel:      sc.RiskLevel,
		Actions:        sc.Actions,
	}
	for _, c := range []struct {
		label string
		v     float64
	}{
		{"Equities", sc.AllocationChange.EquityChange},
		{"Bonds", sc.AllocationChange.BondChange},
		{"Cash", sc.AllocationChange.CashChange},
	} {
		if c.v == 0 {
			continue
		}
		sign := ""
		if c.v > 0 {
			sign = "+"
		}
		r.Changes = append(r.Changes, fmt.Sprintf("%s: %s%s%%", c.label, sign, strconv.FormatFloat(c.v, 'f', -1, 64)))
	}
	return r
}

// RenderReport renders the plain text report.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_actions": "report_actions.txt",
		"report_changes": "report_changes.txt",
	}
	return renderTemplate("report", "report.txt", partials, r)
}

// allocationLine is a "asset: percent" pair of an allocation map.
type allocationLine struct {
	Key   string
	Value string
}

func allocationLines(r portal.Row) []allocationLine {
	var res []allocationLine
	for _, k := range r.Keys() {
		f, _ := r.Float(k)
		res = append(res, allocationLine{portal.TitleCase(k), portal.Percent(f).Short()})
	}
	return res
}

type implementationOption struct {
	portal.Implementation
	Selected bool
}

// Coach is the view model of the behavioral coach page.
type Coach struct {
	Message         string
	Analysis        *portal.CoachAnalysis
	Allocation      []allocationLine
	Implementations []implementationOption
	Result          *portal.CoachImplementResult
	NewAllocation   []allocationLine
}

// NewCoach builds the view of the session in its current state.
func NewCoach(s *portal.CoachSession) *Coach {
	c := &Coach{
		Message:  portal.Message(s.Err),
		Analysis: s.Analysis,
		Result:   s.Result,
	}
	if s.Analysis != nil {
		c.Allocation = allocationLines(s.Analysis.Recommendations.AllocationChanges)
		for _, i := range portal.Implementations() {
			c.Implementations = append(c.Implementations, implementationOption{
				Implementation: i,
				Selected:       s.Selected != nil && s.Selected.Tag == i.Tag,
			})
		}
	}
	if s.Result != nil {
		c.NewAllocation = allocationLines(s.Result.NewAllocation)
	}
	return c
}

// RenderCoach renders the coach page.
func RenderCoach(c *Coach) string {
	partials := map[string]string{
		"coach_insights":        "coach_insights.md",
		"coach_recommendations": "coach_recommendations.md",
		"coach_implementations": "coach_implementations.md",
	}
	return renderTemplate("coach", "coach.md", partials, c)
}
