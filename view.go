package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ViewKind is the top-level screen showing.
type ViewKind int

const (
	WelcomeView ViewKind = iota
	TableView
	UserDashboardView
	RebalancingView
	BehavioralCoachView
)

func (v ViewKind) String() string {
	switch v {
	case WelcomeView:
		return "welcome"
	case TableView:
		return "table"
	case UserDashboardView:
		return "userDashboard"
	case RebalancingView:
		return "rebalancing"
	case BehavioralCoachView:
		return "behavioralCoach"
	}
	return "unknown"
}

// ViewState is the navigation state of the portal.
type ViewState struct {
	Active     ViewKind
	Table      string
	UserID     string
	AssetClass string
	Generation uint64
}

// ErrorView is the inline error with its retry affordance.
type ErrorView struct {
	Title   string
	Message string
	Retry   string // label of the retry action
	Err     error
}

// EmptyView is shown when a fetch succeeds with no rows.
type EmptyView struct {
	Message string
}

// Screen is the content of a table view. Exactly one field is set.
type Screen struct {
	Table   *TableScreen
	Error   *ErrorView
	Empty   *EmptyView
	Welcome *Stats
}

// TableScreen is a populated table view.
type TableScreen struct {
	Dataset *TableDataset
	Summary Summary
}

// Visible counts the views set, which is always one for a rendered screen.
func (s Screen) Visible() int {
	n := 0
	if s.Table != nil {
		n++
	}
	if s.Error != nil {
		n++
	}
	if s.Empty != nil {
		n++
	}
	if s.Welcome != nil {
		n++
	}
	return n
}

// Store keeps best-effort snapshots. Nothing reads them back.
type Store interface {
	Save(ctx context.Context, key string, value any) error
}

// RecommendationsKey is the snapshot key of a user's coach recommendations.
func RecommendationsKey(userID string) string { return "recommendations_" + userID }

// RebalancingKey is the snapshot key of an execution.
func RebalancingKey(at time.Time) string { return fmt.Sprintf("rebalancing_%d", at.UnixMilli()) }

// SelectedCustomerKey is the hand-off key of the customer opened in the assistant.
const SelectedCustomerKey = "selectedCustomer"

// Controller owns the navigation state and performs every view transition
// as a full reset followed by a fresh fetch.
type Controller struct {
	src    Source
	charts *ChartRegistry
	store  Store
	log    *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     ViewState
	dataset   *TableDataset
	dashboard *Dashboard
	guided    *RebalancingSession
	custom    *CustomSession
	coach     *CoachSession
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore sets the snapshot store.
func WithStore(s Store) Option { return func(c *Controller) { c.store = s } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithClock sets the time source.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// NewController returns a controller on the welcome view.
func NewController(src Source, charts *ChartRegistry, opts ...Option) *Controller {
	if charts == nil {
		charts = NewChartRegistry(nil)
	}
	c := &Controller{src: src, charts: charts, log: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns a copy of the navigation state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Charts returns the chart registry.
func (c *Controller) Charts() *ChartRegistry { return c.charts }

// ResetAllStates clears the selection, the cached data and the search query,
// destroys every chart and returns to the welcome view. It returns the
// number of charts destroyed. It is idempotent.
func (c *Controller) ResetAllStates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resetLocked()
}

func (c *Controller) resetLocked() int {
	gen := c.state.Generation + 1
	c.state = ViewState{Active: WelcomeView, Generation: gen}
	c.dataset, c.dashboard, c.guided, c.custom, c.coach = nil, nil, nil, nil, nil
	return c.charts.DestroyAll()
}

// begin resets and enters view, returning the generation of the transition.
func (c *Controller) begin(view ViewKind, table, user, asset string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked(view, table, user, asset)
}

func (c *Controller) beginLocked(view ViewKind, table, user, asset string) uint64 {
	n := c.resetLocked()
	if n > 0 {
		c.log.Debug("charts destroyed", "count", n)
	}
	c.state.Active, c.state.Table, c.state.UserID, c.state.AssetClass = view, table, user, asset
	return c.state.Generation
}

// commit runs apply if gen is still the current generation.
func (c *Controller) commit(gen uint64, apply func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Generation != gen {
		c.log.Debug("stale response discarded", "generation", gen, "current", c.state.Generation)
		return ErrStale
	}
	apply()
	return nil
}

// Welcome resets and loads the record counts.
func (c *Controller) Welcome(ctx context.Context) (Screen, error) {
	gen := c.begin(WelcomeView, "", "", "")
	stats, err := c.src.Stats(ctx)
	var screen Screen
	if err != nil {
		screen.Error = &ErrorView{Title: "Error Loading Data", Message: LoadMessage(err), Retry: "Reload Page", Err: err}
	} else {
		screen.Welcome = &stats
	}
	if err := c.commit(gen, func() {}); err != nil {
		return Screen{}, err
	}
	return screen, nil
}

// LoadTable resets, fetches the table and returns exactly one of the table,
// error or empty views. It returns ErrStale if another navigation happened
// while fetching.
func (c *Controller) LoadTable(ctx context.Context, name string) (Screen, error) {
	gen := c.begin(TableView, name, "", "")
	rows, fetchErr := c.src.Table(ctx, name)

	var screen Screen
	err := c.commit(gen, func() {
		switch {
		case fetchErr != nil:
			c.log.Warn("table load failed", "table", name, "err", fetchErr)
			screen.Error = &ErrorView{Title: "Error Loading Data", Message: LoadMessage(fetchErr), Retry: "Reload Page", Err: fetchErr}
		case len(rows) == 0:
			c.dataset = NewTableDataset(name, nil)
			screen.Empty = &EmptyView{Message: "No data available"}
		default:
			c.dataset = NewTableDataset(name, rows)
			screen.Table = &TableScreen{Dataset: c.dataset, Summary: Summarize(c.dataset.Kind, c.dataset.Visible())}
		}
	})
	if err != nil {
		return Screen{}, err
	}
	return screen, nil
}

// Search filters the current table against its last fetch.
func (c *Controller) Search(term string) (Screen, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dataset == nil {
		return Screen{}, fmt.Errorf("no table loaded")
	}
	rows := c.dataset.Filter(term)
	if len(rows) == 0 {
		return Screen{Empty: &EmptyView{Message: "No data available"}}, nil
	}
	return Screen{Table: &TableScreen{Dataset: c.dataset, Summary: Summarize(c.dataset.Kind, rows)}}, nil
}

// Dataset returns the current table dataset, if any.
func (c *Controller) Dataset() *TableDataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataset
}

// LoadDashboard resets, fetches the user snapshot and draws its charts.
func (c *Controller) LoadDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	gen := c.begin(UserDashboardView, "", userID, "")
	u, err := c.src.User(ctx, userID)
	if err != nil {
		if cerr := c.commit(gen, func() {}); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	d := NewDashboard(userID, u)
	err = c.commit(gen, func() {
		c.dashboard = d
		for _, spec := range d.Charts {
			c.charts.Draw(spec)
		}
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// OpenRebalancing resets and enters the guided rebalancing page.
func (c *Controller) OpenRebalancing(ctx context.Context, userID, asset string) (*RebalancingSession, error) {
	gen := c.begin(RebalancingView, "", userID, asset)
	s := NewRebalancingSession(userID, asset)
	s.Load(ctx, c.src)
	if err := c.commit(gen, func() { c.guided = s }); err != nil {
		return nil, err
	}
	return s, nil
}

// ExecuteScenario executes the selected scenario of s, which must be the
// current guided session, and keeps a snapshot of the execution. It returns
// ErrStale when the page was left before or while executing.
func (c *Controller) ExecuteScenario(ctx context.Context, s *RebalancingSession) error {
	c.mu.Lock()
	current, gen := c.guided, c.state.Generation
	c.mu.Unlock()
	if s == nil {
		return fmt.Errorf("no rebalancing in progress")
	}
	if s != current {
		return ErrStale
	}
	if err := s.Execute(ctx, c.src, c.now()); err != nil {
		return err
	}
	if err := c.commit(gen, func() {}); err != nil {
		return err
	}
	c.save(ctx, RebalancingKey(s.ExecutedAt), s.Record())
	return nil
}

// Dashboard returns the current dashboard, if any.
func (c *Controller) Dashboard() *Dashboard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dashboard
}

// Custom returns the current custom session, if any.
func (c *Controller) Custom() *CustomSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.custom
}

// Guided returns the current guided session, if any.
func (c *Controller) Guided() *RebalancingSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guided
}

// Coach returns the current coach session, if any.
func (c *Controller) Coach() *CoachSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coach
}

// OpenCustom resets and enters the custom rebalancing page.
func (c *Controller) OpenCustom(ctx context.Context, userID, asset string) (*CustomSession, error) {
	gen := c.begin(RebalancingView, "", userID, asset)
	s := NewCustomSession(userID, asset)
	loadErr := s.Load(ctx, c.src)
	if err := c.commit(gen, func() { c.custom = s }); err != nil {
		return nil, err
	}
	return s, loadErr
}

// OpenCoach resets and enters the behavioral coach.
func (c *Controller) OpenCoach(userID string) *CoachSession {
	s := NewCoachSession(userID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beginLocked(BehavioralCoachView, "", userID, "")
	c.coach = s
	return s
}

// Analyze submits the questionnaire of the current coach session and keeps a
// snapshot of the recommendations.
func (c *Controller) Analyze(ctx context.Context, q Questionnaire) (*CoachSession, error) {
	c.mu.Lock()
	s, gen := c.coach, c.state.Generation
	c.mu.Unlock()
	if s == nil {
		return nil, fmt.Errorf("coach not open")
	}
	err := s.Analyze(ctx, c.src, q)
	if cerr := c.commit(gen, func() {}); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return s, err
	}
	c.save(ctx, RecommendationsKey(s.UserID), s.Snapshot(c.now()))
	return s, nil
}

// Implement executes the selected cadence of the current coach session. It
// returns ErrStale, saving nothing, when the coach was left meanwhile.
func (c *Controller) Implement(ctx context.Context, tag string) (*CoachSession, error) {
	c.mu.Lock()
	s, gen := c.coach, c.state.Generation
	c.mu.Unlock()
	if s == nil {
		return nil, fmt.Errorf("coach not open")
	}
	if err := s.Select(tag); err != nil {
		return s, err
	}
	if err := s.Implement(ctx, c.src); err != nil {
		return s, err
	}
	if err := c.commit(gen, func() {}); err != nil {
		return nil, err
	}
	now := c.now()
	c.save(ctx, RecommendationsKey(s.UserID), s.Snapshot(now))
	c.save(ctx, RebalancingKey(now), ExecutionRecord{
		Timestamp: now.UTC(), UserID: s.UserID, Scenario: tag, Status: "completed",
	})
	return s, nil
}

// save is best effort: a failure is logged and never surfaces.
func (c *Controller) save(ctx context.Context, key string, v any) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, key, v); err != nil {
		c.log.Warn("snapshot not saved", "key", key, "err", err)
	}
}

// IsStale reports whether err is a discarded stale response.
func IsStale(err error) bool { return errors.Is(err, ErrStale) }
