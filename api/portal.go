package api

import (
	"context"

	"github.com/etnz/portal"
)

func (c *Client) Stats(ctx context.Context) (portal.Stats, error) {
	var s portal.Stats
	err := c.member(ctx, path("stats"), nil, "stats", &s)
	return s, err
}

// Table fetches the rows of a table, bypassing any cache.
func (c *Client) Table(ctx context.Context, name string) ([]portal.Row, error) {
	var rows []portal.Row
	err := c.member(ctx, path(name), c.cacheBust(), "data", &rows)
	return rows, err
}

func (c *Client) User(ctx context.Context, userID string) (*portal.UserData, error) {
	var u portal.UserData
	if err := c.member(ctx, path("user", userID), nil, "user_data", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Holdings(ctx context.Context, userID string) ([]portal.Holding, error) {
	var h []portal.Holding
	err := c.member(ctx, path("user", userID, "holdings"), nil, "holdings", &h)
	return h, err
}

func (c *Client) Scenarios(ctx context.Context, userID, assetClass string) (*portal.ScenarioSet, error) {
	var s portal.ScenarioSet
	if _, err := c.get(ctx, path("rebalance", userID, assetClass), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ExecuteScenario(ctx context.Context, req portal.ExecuteRequest) (*portal.ExecuteResult, error) {
	var res portal.ExecuteResult
	if err := c.post(ctx, path("rebalance", "execute"), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RebalanceOptions(ctx context.Context, userID, assetClass string) (*portal.RebalanceOptions, error) {
	var o portal.RebalanceOptions
	if _, err := c.get(ctx, path("rebalance-options", userID, assetClass), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ExecuteCustom(ctx context.Context, req portal.CustomRequest) (*portal.CustomResult, error) {
	var res portal.CustomResult
	if err := c.post(ctx, path("execute-custom-rebalance"), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AnalyzeBehavior(ctx context.Context, req portal.CoachRequest) (*portal.CoachAnalysis, error) {
	var a portal.CoachAnalysis
	if err := c.post(ctx, path("behavioral-coach", "analyze"), req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ImplementCoach(ctx context.Context, req portal.CoachImplementRequest) (*portal.CoachImplementResult, error) {
	var res portal.CoachImplementResult
	if err := c.post(ctx, path("behavioral-coach", "rebalance"), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CoachHistory lists the past analyses of userID, most recent first.
func (c *Client) CoachHistory(ctx context.Context, userID string) ([]portal.CoachRecord, error) {
	var r []portal.CoachRecord
	err := c.member(ctx, path("behavioral-coach", "recommendations", userID), nil, "recommendations", &r)
	return r, err
}
