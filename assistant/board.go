package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/etnz/portal"
)

// Panel is one tab of the assistant.
type Panel string

const (
	ChatPanel       Panel = "chat"
	AnalysisPanel   Panel = "analysis"
	RiskPanel       Panel = "risk"
	MarketPanel     Panel = "market"
	GoalsPanel      Panel = "goals"
	MonitoringPanel Panel = "monitoring"
)

// Panels lists the tabs in display order.
var Panels = []Panel{ChatPanel, AnalysisPanel, RiskPanel, MarketPanel, GoalsPanel, MonitoringPanel}

// ParsePanel returns the panel named name.
func ParsePanel(name string) (Panel, error) {
	for _, p := range Panels {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown panel %q", name)
}

// noun is the word of the panel in its load failure messages.
func (p Panel) noun() string {
	switch p {
	case AnalysisPanel:
		return "analysis"
	case GoalsPanel:
		return "goals"
	}
	return string(p)
}

// Fact is a labelled value of a card.
type Fact struct {
	Label string
	Value string
}

// Card is one block of a panel.
type Card struct {
	Title     string
	Badge     string // level or impact, empty if none
	Body      string // markdown
	Facts     []Fact
	ListTitle string
	List      []string
}

// PanelView is the content of a loaded panel. Message is set instead of
// Cards when the load failed.
type PanelView struct {
	Panel    Panel
	Cards    []Card
	Fallback bool // the server reported nothing, Cards holds the fixed copy
	Message  string
	Err      error
}

// Board is the assistant page of one user: the active panel and the
// content of every panel loaded so far.
type Board struct {
	backend Backend
	UserID  string
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	active    Panel
	views     map[Panel]*PanelView
	observers []func(context.Context, Panel)
}

// NewBoard returns a board on the chat panel. Activating any other panel
// loads it.
func NewBoard(backend Backend, userID string, log *slog.Logger) *Board {
	if log == nil {
		log = slog.Default()
	}
	b := &Board{
		backend: backend,
		UserID:  userID,
		log:     log,
		now:     time.Now,
		active:  ChatPanel,
		views:   map[Panel]*PanelView{},
	}
	b.Observe(func(ctx context.Context, p Panel) {
		if p != ChatPanel {
			b.Load(ctx, p)
		}
	})
	return b
}

// Observe registers fn to be called whenever a panel becomes active.
func (b *Board) Observe(fn func(context.Context, Panel)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Switch makes p the active panel and notifies the observers.
func (b *Board) Switch(ctx context.Context, p Panel) {
	b.mu.Lock()
	b.active = p
	observers := append([]func(context.Context, Panel){}, b.observers...)
	b.mu.Unlock()
	for _, fn := range observers {
		fn(ctx, p)
	}
}

// Active returns the active panel.
func (b *Board) Active() Panel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// View returns the last content of p, nil if it was never loaded.
func (b *Board) View(p Panel) *PanelView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.views[p]
}

// Load fetches the content of p. A failure only affects p.
func (b *Board) Load(ctx context.Context, p Panel) *PanelView {
	v := &PanelView{Panel: p}
	var err error
	switch p {
	case AnalysisPanel:
		err = b.loadAnalysis(ctx, v)
	case RiskPanel:
		err = b.loadRisk(ctx, v)
	case MarketPanel:
		err = b.loadMarket(ctx, v)
	case GoalsPanel:
		err = b.loadGoals(ctx, v)
	case MonitoringPanel:
		err = b.loadMonitoring(ctx, v)
	default:
		return v
	}
	if err != nil {
		b.log.Warn("panel load failed", "panel", p, "user", b.UserID, "err", err)
		v.Cards, v.Err = nil, err
		if portal.IsTransport(err) {
			v.Message = fmt.Sprintf("Error loading %s data", p.noun())
		} else {
			v.Message = fmt.Sprintf("Unable to load %s data", p.noun())
		}
	}
	b.mu.Lock()
	b.views[p] = v
	b.mu.Unlock()
	return v
}

func (b *Board) loadAnalysis(ctx context.Context, v *PanelView) error {
	a, err := b.backend.PortfolioAnalysis(ctx, b.UserID)
	if err != nil {
		return err
	}
	if a.PortfolioAnalysis == "" && a.RiskAnalysis == "" && a.RebalancingSuggestions == "" {
		v.Cards, v.Fallback = []Card{{Title: "Portfolio Analysis", Body: "No analysis available for this portfolio yet."}}, true
		return nil
	}
	v.Cards = []Card{
		{Title: "Portfolio Overview", Body: a.PortfolioAnalysis},
		{Title: "Risk Analysis", Body: a.RiskAnalysis},
		{Title: "Rebalancing", Body: a.RebalancingSuggestions},
	}
	return nil
}

func (b *Board) loadRisk(ctx context.Context, v *PanelView) error {
	alerts, err := b.backend.RiskAlerts(ctx, b.UserID)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		v.Cards, v.Fallback = []Card{{
			Title:     "Portfolio Risk Status",
			Badge:     "low",
			Body:      "Your portfolio appears to be within acceptable risk parameters.",
			ListTitle: "Recommendations",
			List:      []string{"Continue regular monitoring", "Review allocation quarterly", "Consider diversification opportunities"},
		}}, true
		return nil
	}
	for _, a := range alerts {
		v.Cards = append(v.Cards, Card{
			Title:     strings.ToUpper(strings.Replace(a.Type, "_", " ", 1)),
			Badge:     a.Level,
			Facts:     []Fact{{"Level", strings.ToUpper(a.Level)}, {"Issue", a.Message}},
			ListTitle: "Recommendations",
			List:      a.Recommendations,
		})
	}
	return nil
}

func (b *Board) loadMarket(ctx context.Context, v *PanelView) error {
	insights, err := b.backend.MarketIntelligence(ctx)
	if err != nil {
		return err
	}
	if len(insights) == 0 {
		v.Cards, v.Fallback = []Card{{Title: "Market Intelligence", Body: "No market insights available at this time."}}, true
		return nil
	}
	for _, in := range insights {
		v.Cards = append(v.Cards, Card{
			Title: in.Title,
			Badge: in.Type,
			Body:  in.Content,
			Facts: []Fact{
				{"Impact", in.Impact},
				{"Relevance", fmt.Sprintf("%.0f%%", in.RelevanceScore*100)},
			},
		})
	}
	return nil
}

func (b *Board) loadGoals(ctx context.Context, v *PanelView) error {
	g, err := b.backend.Goals(ctx, b.UserID)
	if err != nil {
		return err
	}
	body, fallback := g.PlanningAnalysis, false
	if body == "" {
		body, fallback = "No planning analysis available yet.", true
	}
	v.Cards, v.Fallback = []Card{{Title: "Financial Planning Analysis", Body: body}}, fallback
	return nil
}

func (b *Board) loadMonitoring(ctx context.Context, v *PanelView) error {
	alerts, err := b.backend.MonitoringAlerts(ctx)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		v.Cards, v.Fallback = []Card{{
			Title: "Monitoring Status",
			Body:  "All portfolios are being monitored successfully.\n\nNo alerts or actions required at this time.",
			Facts: []Fact{{"Status", "Active"}, {"Last Check", b.now().Format("Jan 2, 2006 15:04:05")}},
		}}, true
		return nil
	}
	for _, a := range alerts {
		v.Cards = append(v.Cards, Card{
			Title:     strings.ToUpper(a.Type),
			Facts:     []Fact{{"User", a.UserID}, {"Priority", a.Priority}, {"Message", a.Message}},
			ListTitle: "Recommendations",
			List:      a.Recommendations,
		})
	}
	return nil
}
