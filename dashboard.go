package portal

import (
	"fmt"
	"strings"
)

// DriftThreshold is the allocation drift, in percentage points, above which
// an asset class needs rebalancing.
const DriftThreshold Percent = 5

// NeedsRebalancing reports whether a's drift exceeds DriftThreshold.
func NeedsRebalancing(a AssetAllocation) bool {
	return a.Drift().Abs() > DriftThreshold
}

// Flagged returns the asset classes that need rebalancing, in breakdown order.
func Flagged(b AllocationBreakdown) []AssetAllocation {
	var res []AssetAllocation
	for _, a := range b {
		if NeedsRebalancing(a) {
			res = append(res, a)
		}
	}
	return res
}

// Recommendation is a card of the dashboard.
type Recommendation struct {
	Title       string
	Description string
	Asset       string // empty for general advice
}

// Profile is the investor card of the dashboard.
type Profile struct {
	Initials      string
	Name          string
	Category      string
	Risk          string
	RiskIndicator string // low, medium or high
	City          string
	Age           int
	Frequency     string
	LastRebalance string
}

// Dashboard is the view model of a user's portfolio snapshot.
type Dashboard struct {
	UserID          string
	Title           string
	Profile         Profile
	Total           Money
	Breakdown       AllocationBreakdown
	Flagged         []AssetAllocation
	Recommendations []Recommendation
	Charts          []ChartSpec
}

// NeedsRebalancing reports whether any asset class is flagged.
func (d *Dashboard) NeedsRebalancing() bool { return len(d.Flagged) > 0 }

// QuickRebalance returns the asset class the alert banner targets: the first
// flagged one.
func (d *Dashboard) QuickRebalance() (string, bool) {
	if len(d.Flagged) == 0 {
		return "", false
	}
	return d.Flagged[0].Asset, true
}

// NewDashboard builds the dashboard view model.
func NewDashboard(userID string, u *UserData) *Dashboard {
	name := u.Portfolio.String("full_name")
	d := &Dashboard{
		UserID:    userID,
		Title:     "Portfolio Dashboard - " + name,
		Profile:   NewProfile(name, u.Profile),
		Total:     u.TotalInvestment,
		Breakdown: u.Breakdown,
		Flagged:   Flagged(u.Breakdown),
		Charts:    DashboardCharts(u.Breakdown),
	}
	if d.NeedsRebalancing() {
		d.Title += " ⚠️ REBALANCING NEEDED"
	}
	d.Recommendations = Recommendations(d.Flagged)
	return d
}

// NewProfile builds the investor card with the portal defaults.
func NewProfile(fullName string, p Row) Profile {
	or := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	risk := or(p.String("risk_capacity"), "Moderate")
	return Profile{
		Initials:      Initials(fullName),
		Name:          fullName,
		Category:      or(p.String("investor_category"), "Standard"),
		Risk:          risk,
		RiskIndicator: RiskIndicator(risk),
		City:          or(p.String("city"), "Not specified"),
		Age:           p.Int("age"),
		Frequency:     or(p.String("rebalancing_frequency"), "Quarterly"),
		LastRebalance: FormatCell(nilIfEmpty(p.String("last_rebalancing_date"))),
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RiskIndicator maps a risk label to low, medium or high.
func RiskIndicator(risk string) string {
	l := strings.ToLower(risk)
	switch {
	case strings.Contains(l, "low"):
		return "low"
	case strings.Contains(l, "high"):
		return "high"
	default:
		return "medium"
	}
}

// Recommendations turns flagged asset classes into advice cards.
func Recommendations(flagged []AssetAllocation) []Recommendation {
	if len(flagged) == 0 {
		return []Recommendation{
			{Title: "Portfolio Well Balanced", Description: "Your current allocation is within 5% of your target allocation."},
			{Title: "Regular Review", Description: "Continue monitoring your portfolio and review your allocation quarterly."},
		}
	}
	var res []Recommendation
	for _, a := range flagged {
		verb := "increasing"
		if a.Drift() > 0 {
			verb = "reducing"
		}
		res = append(res, Recommendation{
			Title: "Rebalance " + TitleCase(a.Asset),
			Description: fmt.Sprintf("Consider %s your %s allocation by %.1f%% to match your target allocation.",
				verb, a.Asset, float64(a.Drift().Abs())),
			Asset: a.Asset,
		})
	}
	return res
}
