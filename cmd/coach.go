package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portal"
	"github.com/etnz/portal/renderer"
	"github.com/google/subcommands"
)

// coachCmd holds the flags for the 'coach' subcommand.
type coachCmd struct {
	q         portal.Questionnaire
	implement string
	history   bool
}

func (*coachCmd) Name() string     { return "coach" }
func (*coachCmd) Synopsis() string { return "get behavioral coaching for a life event" }
func (*coachCmd) Usage() string {
	return `pmp [-user <id>] coach -event <e> -timeline <t> -impact <i> -emotion <e> -outlook <o> -style <s> [-implement gradual|immediate|selective]
pmp [-user <id>] coach -history

  Submits the behavioral questionnaire and displays the insights and the
  recommended allocation. With -implement, the recommendation is then
  applied at the chosen cadence.

  -history lists the previous analyses of the user instead.
`
}

func (c *coachCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.q.LifeEvent.PrimaryLifeEvent, "event", "", "Primary life event, e.g. job_change, marriage, retirement")
	f.StringVar(&c.q.LifeEvent.EventTimeline, "timeline", "", "When the event happens, e.g. within_6_months")
	f.StringVar(&c.q.LifeEvent.FinancialImpact, "impact", "", "Financial impact of the event, e.g. positive, negative")
	f.StringVar(&c.q.LifeEvent.RiskChange, "risk-change", "", "How your risk tolerance changed")
	f.StringVar(&c.q.LifeEvent.EventDetails, "details", "", "Free text details about the event")
	f.StringVar(&c.q.Behavior.CurrentEmotion, "emotion", "", "Current emotion about the markets, e.g. anxious, confident")
	f.StringVar(&c.q.Behavior.MarketOutlook, "outlook", "", "Market outlook, e.g. bullish, bearish")
	f.StringVar(&c.q.Behavior.DecisionStyle, "style", "", "Decision style, e.g. analytical, intuitive")
	f.StringVar(&c.q.Behavior.RecentBehavior, "behavior", "", "Recent investing behavior")
	f.StringVar(&c.implement, "implement", "", "Apply the recommendation: gradual, immediate or selective")
	f.BoolVar(&c.history, "history", false, "List the previous analyses")
}

func (c *coachCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.implement != "" {
		if _, err := portal.ParseImplementation(c.implement); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	e, status := open()
	if e == nil {
		return status
	}
	defer e.Close()

	if c.history {
		records, err := e.client.CoachHistory(ctx, e.cfg.User)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading previous analyses: %v\n", portal.Message(err))
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderCoachHistory(records))
		return subcommands.ExitSuccess
	}

	ctrl := e.controller()
	ctrl.OpenCoach(e.cfg.User)
	s, err := ctrl.Analyze(ctx, c.q)
	if s == nil {
		fmt.Fprintf(os.Stderr, "Error analyzing: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		printMarkdown(renderer.RenderCoach(renderer.NewCoach(s)))
		var val *portal.ValidationError
		if errors.As(err, &val) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}

	if c.implement != "" {
		if _, err = ctrl.Implement(ctx, c.implement); err != nil && s.Err == nil {
			s.Err = err
		}
	}
	printMarkdown(renderer.RenderCoach(renderer.NewCoach(s)))
	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
