package assistant

import (
	"context"
	"fmt"

	"github.com/etnz/portal"
)

// SelectCustomer loads the personalized analysis of userID and hands it off
// under portal.SelectedCustomerKey. A failing store is logged only.
func (b *Board) SelectCustomer(ctx context.Context, store portal.Store, userID string) (*CustomerScenarios, error) {
	cs, err := b.backend.CustomerScenarios(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cannot load scenarios of %s: %w", userID, err)
	}
	if store != nil {
		var payload any = cs
		if len(cs.Raw) > 0 {
			payload = cs.Raw
		}
		if err := store.Save(ctx, portal.SelectedCustomerKey, payload); err != nil {
			b.log.Warn("customer hand-off not saved", "user", userID, "err", err)
		}
	}
	return cs, nil
}

// Customers returns the customer directory.
func (b *Board) Customers(ctx context.Context) ([]Customer, error) {
	return b.backend.Customers(ctx)
}

// Status returns the agent status line, nil when unavailable.
func (b *Board) Status(ctx context.Context) *AgentStatus {
	s, err := b.backend.AgentStatus(ctx)
	if err != nil {
		b.log.Debug("agent status not available", "err", err)
		return nil
	}
	return s
}
