package assistant

import (
	"context"
	"errors"
	"sync"

	"github.com/etnz/portal"
)

var (
	errOffline = &portal.TransportError{Op: "POST /api/ai/chat", Err: errors.New("connection refused")}
	errServer  = &portal.AppError{Status: 500, Message: "AI system not available"}
)

// fakeBackend answers from its fields and records the calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	reply      *ChatReply
	chatErr    error
	analysis   *PortfolioAnalysis
	risk       []RiskAlert
	riskErr    error
	market     []MarketInsight
	marketErr  error
	goals      *GoalsAnalysis
	monitoring []MonitoringAlert
	status     *AgentStatus
	library    *ScenarioLibrary
	customers  []Customer
	scenarios  *CustomerScenarios
}

func (f *fakeBackend) record(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeBackend) Chat(_ context.Context, req ChatRequest) (*ChatReply, error) {
	f.record("chat " + req.Message)
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.reply, nil
}

func (f *fakeBackend) PortfolioAnalysis(context.Context, string) (*PortfolioAnalysis, error) {
	f.record("analysis")
	if f.analysis == nil {
		return nil, errServer
	}
	return f.analysis, nil
}

func (f *fakeBackend) RiskAlerts(context.Context, string) ([]RiskAlert, error) {
	f.record("risk")
	return f.risk, f.riskErr
}

func (f *fakeBackend) MarketIntelligence(context.Context) ([]MarketInsight, error) {
	f.record("market")
	return f.market, f.marketErr
}

func (f *fakeBackend) Goals(context.Context, string) (*GoalsAnalysis, error) {
	f.record("goals")
	if f.goals == nil {
		return &GoalsAnalysis{}, nil
	}
	return f.goals, nil
}

func (f *fakeBackend) MonitoringAlerts(context.Context) ([]MonitoringAlert, error) {
	f.record("monitoring")
	return f.monitoring, nil
}

func (f *fakeBackend) AgentStatus(context.Context) (*AgentStatus, error) {
	f.record("status")
	if f.status == nil {
		return nil, errOffline
	}
	return f.status, nil
}

func (f *fakeBackend) ScenarioLibrary(context.Context) (*ScenarioLibrary, error) {
	f.record("library")
	if f.library == nil {
		return nil, errOffline
	}
	return f.library, nil
}

func (f *fakeBackend) Customers(context.Context) ([]Customer, error) {
	f.record("customers")
	return f.customers, nil
}

func (f *fakeBackend) CustomerScenarios(_ context.Context, id string) (*CustomerScenarios, error) {
	f.record("scenarios " + id)
	if f.scenarios == nil {
		return nil, &portal.AppError{Status: 404, Message: "Customer not found"}
	}
	return f.scenarios, nil
}

// memStore keeps the last value per key.
type memStore struct {
	values map[string]any
}

func (s *memStore) Save(_ context.Context, key string, v any) error {
	if s.values == nil {
		s.values = map[string]any{}
	}
	s.values[key] = v
	return nil
}
