package execution

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/adapter"
)

// reallocator moves a fixed amount from one entity's budget to
// another's, emulating a transaction the platforms do not provide:
// validate everything first, decrease, increase, and manually
// compensate the decrease if the increase fails.
type reallocator struct {
	adapter adapter.Adapter
	logger  *zap.Logger
}

func newReallocator(a adapter.Adapter, logger *zap.Logger) *reallocator {
	return &reallocator{adapter: a, logger: logger}
}

func (r *reallocator) Execute(ctx context.Context, entity domain.EntityType, p ReallocationParams) (domain.Payload, error) {
	if p.FromEntityID == "" || p.ToEntityID == "" {
		return nil, domain.NewValidationError("reallocate_budget requires from_entity_id and to_entity_id")
	}
	if p.FromEntityID == p.ToEntityID {
		return nil, domain.NewValidationError("reallocate_budget source and destination must differ")
	}
	if p.AmountCents <= 0 {
		return nil, domain.NewValidationError("reallocate_budget requires a positive transfer amount")
	}

	fromSnap, toSnap, source, err := r.currentBudgets(ctx, entity, p)
	if err != nil {
		return nil, err
	}
	if !fromSnap.Configured {
		return nil, domain.NewValidationError("source entity %s has no budget configured", p.FromEntityID)
	}

	// the shared budget type follows the source entity
	budgetType := fromSnap.Type
	newFrom := fromSnap.AmountCents - p.AmountCents
	newTo := toSnap.AmountCents + p.AmountCents

	// the floor check must happen before any write
	if min := r.adapter.MinBudgetCents(budgetType); newFrom < min {
		return nil, domain.NewValidationError(
			"transfer of %d cents would drop %s below the %s minimum %s budget of %d cents (current: %d)",
			p.AmountCents, p.FromEntityID, r.adapter.Platform(), budgetType, min, fromSnap.AmountCents)
	}

	decrease := func(ctx context.Context) error {
		_, err := r.adapter.SetBudget(ctx, entity, p.FromEntityID, adapter.BudgetChange{AmountCents: newFrom, Type: budgetType})
		return err
	}
	increase := func(ctx context.Context) error {
		_, err := r.adapter.SetBudget(ctx, entity, p.ToEntityID, adapter.BudgetChange{AmountCents: newTo, Type: budgetType})
		return err
	}
	restore := func(ctx context.Context) error {
		_, err := r.adapter.SetBudget(ctx, entity, p.FromEntityID, adapter.BudgetChange{AmountCents: fromSnap.AmountCents, Type: budgetType})
		return err
	}

	outcome := runTwoPhase(ctx, decrease, increase, restore)
	switch outcome.Status {
	case transferFailedClean:
		return nil, domain.NewExternalAPIError(outcome.ForwardErr,
			"budget decrease of %s failed, nothing was changed", p.FromEntityID)
	case transferRolledBack:
		r.logger.Warn("budget increase failed, decrease reverted",
			zap.String("from", p.FromEntityID), zap.String("to", p.ToEntityID))
		return nil, domain.NewExternalAPIError(outcome.ForwardErr,
			"budget increase of %s failed; the decrease of %s was reverted to %d cents",
			p.ToEntityID, p.FromEntityID, fromSnap.AmountCents)
	case transferRollbackFailed:
		r.logger.Error("budget rollback failed, manual correction required",
			zap.String("entity", p.FromEntityID), zap.Int64("budget_cents", newFrom),
			zap.Error(outcome.RollbackErr))
		return nil, domain.NewRollbackFailureError(p.FromEntityID, newFrom, outcome.ForwardErr)
	}

	r.logger.Info("budget reallocated",
		zap.String("platform", string(r.adapter.Platform())),
		zap.String("from", p.FromEntityID), zap.String("to", p.ToEntityID),
		zap.Int64("amount_cents", p.AmountCents))

	return domain.Payload{
		"from_entity_id":  p.FromEntityID,
		"to_entity_id":    p.ToEntityID,
		"amount_cents":    p.AmountCents,
		"budget_type":     budgetType,
		"from_old_cents":  fromSnap.AmountCents,
		"from_new_cents":  newFrom,
		"to_old_cents":    toSnap.AmountCents,
		"to_new_cents":    newTo,
		"budget_source":   source,
	}, nil
}

// currentBudgets reads both entities' budgets in parallel, or falls
// back to caller-supplied values on platforms without a read API. The
// returned source string is carried in the result so stale
// caller-supplied values are visible rather than silently trusted.
func (r *reallocator) currentBudgets(ctx context.Context, entity domain.EntityType, p ReallocationParams) (from, to adapter.BudgetSnapshot, source string, err error) {
	if !r.adapter.SupportsBudgetRead() {
		if p.CurrentFromCents == nil || p.CurrentToCents == nil {
			return from, to, "", domain.NewValidationError(
				"%s has no budget read API: reallocate_budget requires current_from_cents and current_to_cents parameters",
				r.adapter.Platform())
		}
		from = adapter.BudgetSnapshot{AmountCents: *p.CurrentFromCents, Type: p.BudgetType, Configured: true}
		to = adapter.BudgetSnapshot{AmountCents: *p.CurrentToCents, Type: p.BudgetType, Configured: true}
		return from, to, "caller_supplied", nil
	}

	// independent reads, no ordering requirement
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := r.adapter.ReadBudget(gctx, entity, p.FromEntityID)
		if err == nil {
			from = snap
		}
		return err
	})
	g.Go(func() error {
		snap, err := r.adapter.ReadBudget(gctx, entity, p.ToEntityID)
		if err == nil {
			to = snap
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return from, to, "", err
	}
	return from, to, "platform_read", nil
}
