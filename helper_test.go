package portal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

// fakeSource is an in-memory backend. Unset fields answer with errFake.
type fakeSource struct {
	mu    sync.Mutex
	calls []string

	stats     Stats
	tables    map[string][]Row
	tableErr  error
	tableHook func(name string) // called before answering Table
	user      *UserData
	holdings  []Holding
	holdErr   error
	scenarios *ScenarioSet
	scenErr   error
	execErr   error
	execHook  func() // called before answering ExecuteScenario
	executed  []ExecuteRequest
	options   *RebalanceOptions
	custom    []CustomRequest
	analysis  *CoachAnalysis
	implement []CoachImplementRequest
	implHook  func() // called before answering ImplementCoach
}

var errFake = &TransportError{Op: "GET /fake", Err: errors.New("connection refused")}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) Stats(context.Context) (Stats, error) {
	f.record("stats")
	return f.stats, nil
}

func (f *fakeSource) Table(_ context.Context, name string) ([]Row, error) {
	f.record("table " + name)
	if f.tableHook != nil {
		f.tableHook(name)
	}
	if f.tableErr != nil {
		return nil, f.tableErr
	}
	return f.tables[name], nil
}

func (f *fakeSource) User(_ context.Context, id string) (*UserData, error) {
	f.record("user " + id)
	if f.user == nil {
		return nil, &AppError{Status: 404, Message: "User not found"}
	}
	return f.user, nil
}

func (f *fakeSource) Holdings(_ context.Context, id string) ([]Holding, error) {
	f.record("holdings " + id)
	return f.holdings, f.holdErr
}

func (f *fakeSource) Scenarios(_ context.Context, id, asset string) (*ScenarioSet, error) {
	f.record("scenarios " + id + " " + asset)
	if f.scenErr != nil {
		return nil, f.scenErr
	}
	return f.scenarios, nil
}

func (f *fakeSource) ExecuteScenario(_ context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	f.record("execute")
	if f.execHook != nil {
		f.execHook()
	}
	if f.execErr != nil {
		return nil, f.execErr
	}
	f.executed = append(f.executed, req)
	return &ExecuteResult{Message: "Rebalancing executed successfully"}, nil
}

func (f *fakeSource) RebalanceOptions(_ context.Context, id, asset string) (*RebalanceOptions, error) {
	f.record("options " + id + " " + asset)
	if f.options == nil {
		return nil, errFake
	}
	return f.options, nil
}

func (f *fakeSource) ExecuteCustom(_ context.Context, req CustomRequest) (*CustomResult, error) {
	f.record("custom")
	f.custom = append(f.custom, req)
	t := Totals(req.SelectedSells, req.SelectedBuys)
	return &CustomResult{Message: "ok", Summary: CustomSummary{
		TotalSellAmount: t.Sell, TotalBuyAmount: t.Buy, NetChange: t.Net,
		NumSells: len(req.SelectedSells), NumBuys: len(req.SelectedBuys),
	}}, nil
}

func (f *fakeSource) AnalyzeBehavior(_ context.Context, req CoachRequest) (*CoachAnalysis, error) {
	f.record("analyze")
	if f.analysis == nil {
		return nil, errFake
	}
	return f.analysis, nil
}

func (f *fakeSource) ImplementCoach(_ context.Context, req CoachImplementRequest) (*CoachImplementResult, error) {
	f.record("implement")
	if f.implHook != nil {
		f.implHook()
	}
	f.implement = append(f.implement, req)
	return &CoachImplementResult{Message: "Portfolio rebalanced using " + req.Scenario + " strategy"}, nil
}

func (f *fakeSource) CoachHistory(context.Context, string) ([]CoachRecord, error) {
	f.record("history")
	return nil, nil
}

// rows decodes a JSON array of objects.
func rows(t *testing.T, s string) []Row {
	t.Helper()
	var res []Row
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		t.Fatalf("cannot decode rows: %v", err)
	}
	return res
}

// fakeStore records snapshots.
type fakeStore struct {
	keys []string
	err  error
}

func (s *fakeStore) Save(_ context.Context, key string, _ any) error {
	s.keys = append(s.keys, key)
	return s.err
}

// countingHandle counts Destroy calls.
type countingHandle struct{ destroyed *int }

func (h countingHandle) Destroy() { *h.destroyed++ }
