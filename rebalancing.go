package portal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// RebalancingState is the position in the guided rebalancing page.
type RebalancingState int

const (
	RebalancingLoading RebalancingState = iota
	HoldingsAndScenariosShown
	ScenarioSelected
	Executing
	RebalancingSuccess
	RebalancingErrorShown
)

func (s RebalancingState) String() string {
	switch s {
	case RebalancingLoading:
		return "loading"
	case HoldingsAndScenariosShown:
		return "shown"
	case ScenarioSelected:
		return "selected"
	case Executing:
		return "executing"
	case RebalancingSuccess:
		return "success"
	case RebalancingErrorShown:
		return "error"
	}
	return "unknown"
}

// RebalancingSession is the guided rebalancing page of one user and asset class.
type RebalancingSession struct {
	UserID     string
	AssetClass string

	Holdings     []Holding // filtered to AssetClass
	HoldingsErr  error
	Scenarios    []Scenario
	ScenariosErr error

	State      RebalancingState
	Result     *ExecuteResult
	Err        error
	ExecutedAt time.Time

	selected int // index in Scenarios, -1 when none
}

// NewRebalancingSession returns a session in the loading state.
func NewRebalancingSession(userID, assetClass string) *RebalancingSession {
	return &RebalancingSession{UserID: userID, AssetClass: assetClass, selected: -1}
}

// Load fetches holdings and scenarios in parallel. A failure in one is kept
// for its own section and does not cancel the other.
func (s *RebalancingSession) Load(ctx context.Context, src Source) {
	s.State, s.selected = RebalancingLoading, -1

	var wg sync.WaitGroup
	var holdings []Holding
	var set *ScenarioSet
	wg.Add(2)
	go func() {
		defer wg.Done()
		holdings, s.HoldingsErr = src.Holdings(ctx, s.UserID)
	}()
	go func() {
		defer wg.Done()
		set, s.ScenariosErr = src.Scenarios(ctx, s.UserID, s.AssetClass)
	}()
	wg.Wait()

	s.Holdings = FilterHoldings(holdings, s.AssetClass)
	s.Scenarios = nil
	if set != nil {
		s.Scenarios = set.Scenarios
	}
	s.State = HoldingsAndScenariosShown
}

// FilterHoldings keeps the holdings of asset, ignoring case.
func FilterHoldings(holdings []Holding, asset string) []Holding {
	var res []Holding
	for _, h := range holdings {
		if strings.EqualFold(h.AssetClass, asset) {
			res = append(res, h)
		}
	}
	return res
}

// Select marks the scenario with id as the only selected one.
func (s *RebalancingSession) Select(id int) error {
	switch s.State {
	case HoldingsAndScenariosShown, ScenarioSelected:
	default:
		return fmt.Errorf("cannot select a scenario while %v", s.State)
	}
	for i, sc := range s.Scenarios {
		if sc.ID == id {
			s.selected, s.State = i, ScenarioSelected
			return nil
		}
	}
	return fmt.Errorf("no scenario %d", id)
}

// Selected returns the selected scenario.
func (s *RebalancingSession) Selected() (Scenario, bool) {
	if s.selected < 0 || s.selected >= len(s.Scenarios) {
		return Scenario{}, false
	}
	return s.Scenarios[s.selected], true
}

// IsSelected reports whether the scenario with id is selected.
func (s *RebalancingSession) IsSelected(id int) bool {
	sc, ok := s.Selected()
	return ok && sc.ID == id
}

// CanExecute reports whether the execute action is armed.
func (s *RebalancingSession) CanExecute() bool { return s.State == ScenarioSelected }

// Execute posts the selected scenario back to the server.
func (s *RebalancingSession) Execute(ctx context.Context, src Source, now time.Time) error {
	sc, ok := s.Selected()
	if !ok || s.State != ScenarioSelected {
		return ErrNoSelection
	}
	s.State = Executing
	res, err := src.ExecuteScenario(ctx, ExecuteRequest{
		UserID:     s.UserID,
		ScenarioID: sc.ID,
		AssetClass: s.AssetClass,
		Actions:    sc.Actions,
	})
	if err != nil {
		s.State, s.Err = RebalancingErrorShown, err
		return err
	}
	s.State, s.Result, s.Err, s.ExecutedAt = RebalancingSuccess, res, nil, now
	return nil
}

// Retry goes back to the holdings and scenarios after an error, with no
// scenario selected.
func (s *RebalancingSession) Retry() {
	if s.State != RebalancingErrorShown {
		return
	}
	s.State, s.Err, s.selected = HoldingsAndScenariosShown, nil, -1
}

// ReportFilename is the download name of the text report made on day.
func ReportFilename(day time.Time) string {
	return fmt.Sprintf("rebalancing-report-%s.txt", day.Format("2006-01-02"))
}

// ExecutionRecord is the snapshot kept under RebalancingKey.
type ExecutionRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"userId"`
	Scenario   string    `json:"scenario"`
	AssetClass string    `json:"assetClass,omitempty"`
	Status     string    `json:"status"`
}

// Record returns the snapshot of a successful execution.
func (s *RebalancingSession) Record() ExecutionRecord {
	sc, _ := s.Selected()
	return ExecutionRecord{
		Timestamp:  s.ExecutedAt.UTC(),
		UserID:     s.UserID,
		Scenario:   sc.Name,
		AssetClass: s.AssetClass,
		Status:     "completed",
	}
}
