package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LifeEvent is the first half of the behavioral questionnaire.
type LifeEvent struct {
	PrimaryLifeEvent string `json:"primaryLifeEvent"`
	EventTimeline    string `json:"eventTimeline"`
	FinancialImpact  string `json:"financialImpact"`
	RiskChange       string `json:"riskChange"`
	EventDetails     string `json:"eventDetails"`
}

// BehavioralProfile is the second half of the behavioral questionnaire.
type BehavioralProfile struct {
	CurrentEmotion string `json:"currentEmotion"`
	MarketOutlook  string `json:"marketOutlook"`
	DecisionStyle  string `json:"decisionStyle"`
	RecentBehavior string `json:"recentBehavior"`
}

// Questionnaire is the coach form.
type Questionnaire struct {
	LifeEvent LifeEvent
	Behavior  BehavioralProfile
}

// Validate checks that every required field is filled in, in form order.
func (q Questionnaire) Validate() error {
	required := []struct{ name, value string }{
		{"primaryLifeEvent", q.LifeEvent.PrimaryLifeEvent},
		{"eventTimeline", q.LifeEvent.EventTimeline},
		{"financialImpact", q.LifeEvent.FinancialImpact},
		{"currentEmotion", q.Behavior.CurrentEmotion},
		{"marketOutlook", q.Behavior.MarketOutlook},
		{"decisionStyle", q.Behavior.DecisionStyle},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// CoachRequest is posted to the analysis endpoint.
type CoachRequest struct {
	UserID    string            `json:"user_id"`
	LifeEvent LifeEvent         `json:"life_event_data"`
	Behavior  BehavioralProfile `json:"behavioral_data"`
}

type EmotionalState struct {
	Level           string   `json:"level"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

type DecisionPattern struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

type RiskTolerance struct {
	SuggestedLevel string   `json:"suggested_level"`
	Reasoning      string   `json:"reasoning"`
	Adjustments    []string `json:"adjustments"`
}

type BiasWarning struct {
	Type       string `json:"type"`
	Warning    string `json:"warning"`
	Mitigation string `json:"mitigation"`
}

// Insights is the behavioral reading of the questionnaire.
type Insights struct {
	EmotionalState  EmotionalState  `json:"emotional_state"`
	DecisionPattern DecisionPattern `json:"decision_pattern"`
	RiskTolerance   RiskTolerance   `json:"risk_tolerance"`
	BiasWarnings    []BiasWarning   `json:"bias_warnings"`
}

type TimelineStrategy struct {
	Priority string   `json:"priority"`
	Actions  []string `json:"actions"`
}

// CoachRecommendations is the portfolio side of the analysis.
type CoachRecommendations struct {
	ImmediateActions  []string         `json:"immediate_actions"`
	AllocationChanges Row              `json:"allocation_changes"` // asset -> target percent
	TimelineStrategy  TimelineStrategy `json:"timeline_strategy"`
	EmergencyFund     int              `json:"emergency_fund"` // months
}

// CoachAnalysis is the answer of the analysis endpoint. Raw keeps the
// recommendations exactly as received so that they can be posted back.
type CoachAnalysis struct {
	Insights        Insights
	Recommendations CoachRecommendations
	Raw             json.RawMessage
	AnalysisID      int
}

func (a *CoachAnalysis) UnmarshalJSON(data []byte) error {
	var wire struct {
		Insights        Insights        `json:"insights"`
		Recommendations json.RawMessage `json:"recommendations"`
		AnalysisID      int             `json:"analysis_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	a.Insights = wire.Insights
	a.Raw = wire.Recommendations
	a.AnalysisID = wire.AnalysisID
	a.Recommendations = CoachRecommendations{}
	if len(wire.Recommendations) > 0 {
		if err := json.Unmarshal(wire.Recommendations, &a.Recommendations); err != nil {
			return fmt.Errorf("recommendations: %w", err)
		}
	}
	return nil
}

// CoachImplementRequest posts the chosen cadence with the recommendations received.
type CoachImplementRequest struct {
	UserID          string          `json:"user_id"`
	Scenario        string          `json:"scenario"`
	Recommendations json.RawMessage `json:"recommendations"`
}

// CoachImplementResult is the server's answer to an implementation.
type CoachImplementResult struct {
	Message       string `json:"message"`
	NewAllocation Row    `json:"new_allocation"`
	ExecutionID   int    `json:"execution_id"`
}

// CoachRecord is a past analysis kept by the server.
type CoachRecord struct {
	ID              int    `json:"id"`
	AnalysisDate    string `json:"analysis_date"`
	LifeEvent       string `json:"life_event"`
	Timeline        string `json:"timeline"`
	FinancialImpact string `json:"financial_impact"`
	CurrentEmotion  string `json:"current_emotion"`
	MarketOutlook   string `json:"market_outlook"`
	DecisionStyle   string `json:"decision_style"`
}

// Implementation is a cadence for applying the coach recommendations.
type Implementation struct {
	Tag             string
	Title           string
	Description     string
	Timeline        string
	EmotionalImpact string
}

var implementations = []Implementation{
	{"gradual", "Gradual Transition", "Move toward the recommended allocation in steps to limit emotional stress.", "3-6 months", "Low"},
	{"immediate", "Immediate Rebalancing", "Apply the recommended allocation at once.", "1-2 weeks", "Medium"},
	{"selective", "Selective Adjustment", "Only change the asset classes that deviate by more than 10% from the recommendation.", "As needed", "Very Low"},
}

// Implementations returns the three cadences offered after an analysis.
func Implementations() []Implementation { return implementations }

// ParseImplementation returns the cadence named tag.
func ParseImplementation(tag string) (Implementation, error) {
	for _, i := range implementations {
		if i.Tag == tag {
			return i, nil
		}
	}
	return Implementation{}, fmt.Errorf("unknown implementation %q, want gradual, immediate or selective", tag)
}

// CoachState is the position in the coach flow.
type CoachState int

const (
	CoachEditing CoachState = iota
	CoachInsightsShown
	CoachScenarioSelected
	CoachImplementing
	CoachImplemented
	CoachErrorShown
)

func (s CoachState) String() string {
	switch s {
	case CoachEditing:
		return "editing"
	case CoachInsightsShown:
		return "insights"
	case CoachScenarioSelected:
		return "selected"
	case CoachImplementing:
		return "implementing"
	case CoachImplemented:
		return "implemented"
	case CoachErrorShown:
		return "error"
	}
	return "unknown"
}

// CoachSession drives the behavioral coach for one user.
type CoachSession struct {
	UserID        string
	Questionnaire Questionnaire
	Analysis      *CoachAnalysis
	Selected      *Implementation
	Result        *CoachImplementResult
	State         CoachState
	Err           error
}

// NewCoachSession starts an empty questionnaire.
func NewCoachSession(userID string) *CoachSession {
	return &CoachSession{UserID: userID}
}

// Analyze validates the questionnaire and submits it. A validation failure
// never reaches the server.
func (s *CoachSession) Analyze(ctx context.Context, src Source, q Questionnaire) error {
	s.Questionnaire = q
	s.Analysis, s.Selected, s.Result, s.Err = nil, nil, nil, nil
	if err := q.Validate(); err != nil {
		s.State, s.Err = CoachErrorShown, err
		return err
	}
	a, err := src.AnalyzeBehavior(ctx, CoachRequest{UserID: s.UserID, LifeEvent: q.LifeEvent, Behavior: q.Behavior})
	if err != nil {
		s.State, s.Err = CoachErrorShown, err
		return err
	}
	s.Analysis, s.State = a, CoachInsightsShown
	return nil
}

// Select arms the implement action with the cadence tag.
func (s *CoachSession) Select(tag string) error {
	if s.Analysis == nil {
		return fmt.Errorf("no analysis to implement")
	}
	i, err := ParseImplementation(tag)
	if err != nil {
		return err
	}
	s.Selected, s.State = &i, CoachScenarioSelected
	return nil
}

// Implement posts the selected cadence and the raw recommendations.
func (s *CoachSession) Implement(ctx context.Context, src Source) error {
	if s.Selected == nil {
		s.Err = ErrNoSelection
		return ErrNoSelection
	}
	s.State = CoachImplementing
	res, err := src.ImplementCoach(ctx, CoachImplementRequest{
		UserID:          s.UserID,
		Scenario:        s.Selected.Tag,
		Recommendations: s.Analysis.Raw,
	})
	if err != nil {
		s.State, s.Err = CoachErrorShown, err
		return err
	}
	s.Result, s.State, s.Err = res, CoachImplemented, nil
	return nil
}

// SavedRecommendations is the snapshot kept under RecommendationsKey.
type SavedRecommendations struct {
	Timestamp             time.Time         `json:"timestamp"`
	LifeEvent             string            `json:"lifeEvent"`
	BehavioralProfile     BehavioralProfile `json:"behavioralProfile"`
	RecommendedAllocation Row               `json:"recommendedAllocation"`
	SelectedScenario      string            `json:"selectedScenario,omitempty"`
}

// Snapshot returns what the session would save for later reference.
func (s *CoachSession) Snapshot(now time.Time) SavedRecommendations {
	saved := SavedRecommendations{
		Timestamp:         now.UTC(),
		LifeEvent:         s.Questionnaire.LifeEvent.PrimaryLifeEvent,
		BehavioralProfile: s.Questionnaire.Behavior,
	}
	if s.Analysis != nil {
		saved.RecommendedAllocation = s.Analysis.Recommendations.AllocationChanges
	}
	if s.Selected != nil {
		saved.SelectedScenario = s.Selected.Tag
	}
	return saved
}
