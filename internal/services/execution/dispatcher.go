// Package execution is the decision execution engine: it normalizes a
// decision's tool and parameters, resolves the platform connection and
// credential, and routes to the matching adapter operation, the budget
// reallocation coordinator, or the compound action executor.
package execution

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/adapter"
)

// ConnectionDirectory looks up the active platform connection for an
// organization. A nil connection means none exists.
type ConnectionDirectory interface {
	ActiveConnection(ctx context.Context, orgID string, platform domain.Platform) (*domain.Connection, error)
}

// CredentialProvider resolves the opaque access token for a connection.
// An empty token means none is stored.
type CredentialProvider interface {
	AccessToken(ctx context.Context, connectionID string) (string, error)
}

// AdapterProvider builds the platform adapter bound to an account and
// access token.
type AdapterProvider interface {
	Adapter(platform domain.Platform, accountID, accessToken string) (adapter.Adapter, error)
}

// Dispatcher routes normalized decisions to their handlers.
type Dispatcher struct {
	connections ConnectionDirectory
	credentials CredentialProvider
	adapters    AdapterProvider
	logger      *zap.Logger
}

// NewDispatcher wires the dispatcher's collaborators.
func NewDispatcher(connections ConnectionDirectory, credentials CredentialProvider, adapters AdapterProvider, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		connections: connections,
		credentials: credentials,
		adapters:    adapters,
		logger:      logger,
	}
}

// Execute runs one decision (or ephemeral sub-action) to completion and
// returns the handler's result object verbatim, or the first error.
func (d *Dispatcher) Execute(ctx context.Context, req Request) (domain.Payload, error) {
	n, err := normalize(req)
	if err != nil {
		return nil, err
	}

	conn, err := d.connections.ActiveConnection(ctx, req.OrgID, req.Platform)
	if err != nil {
		return nil, errors.Wrap(err, "resolve platform connection")
	}
	if conn == nil || !conn.Active {
		return nil, domain.NewConnectionInactiveError(req.OrgID, req.Platform)
	}

	token, err := d.credentials.AccessToken(ctx, conn.ID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve access credential")
	}
	if token == "" {
		return nil, domain.NewConfigurationError("no access credential stored for %s connection %s", req.Platform, conn.ID)
	}

	ad, err := d.adapters.Adapter(req.Platform, conn.AccountID, token)
	if err != nil {
		return nil, domain.NewConfigurationError("no adapter for platform %s: %v", req.Platform, err)
	}

	switch n.Tool {
	case domain.ToolCompoundAction:
		return d.runCompound(ctx, req, n.Params.(CompoundParams))
	case domain.ToolReallocateBudget:
		if !adapter.Supported(req.Platform, n.Tool, n.Entity) {
			return nil, adapter.UnsupportedError(req.Platform, n.Tool, n.Entity)
		}
		return newReallocator(ad, d.logger).Execute(ctx, n.Entity, n.Params.(ReallocationParams))
	}

	if !adapter.Supported(req.Platform, n.Tool, n.Entity) {
		return nil, adapter.UnsupportedError(req.Platform, n.Tool, n.Entity)
	}

	d.logger.Debug("dispatching adapter operation",
		zap.String("platform", string(req.Platform)), zap.String("tool", string(n.Tool)),
		zap.String("entity_type", string(n.Entity)), zap.String("entity_id", n.EntityID))

	switch p := n.Params.(type) {
	case BudgetParams:
		return ad.SetBudget(ctx, n.Entity, n.EntityID, adapter.BudgetChange{AmountCents: p.AmountCents, Type: p.Type})
	case StatusParams:
		return ad.SetStatus(ctx, n.Entity, n.EntityID, p.Status)
	case BidStrategyParams:
		return ad.SetBidStrategy(ctx, n.Entity, n.EntityID, adapter.BidStrategySpec{
			Strategy:         p.Strategy,
			TargetValueCents: p.TargetValueCents,
			TargetRoas:       p.TargetRoas,
		})
	case ScheduleParams:
		return ad.SetSchedule(ctx, n.Entity, n.EntityID, p.Spec)
	case AudienceParams:
		return ad.SetTargeting(ctx, n.Entity, n.EntityID, p.Spec)
	}

	return nil, adapter.UnsupportedError(req.Platform, n.Tool, n.Entity)
}
