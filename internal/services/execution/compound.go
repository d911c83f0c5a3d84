package execution

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adkite/adkite/internal/domain"
)

// stepResult is one entry of the compound executor's per-step report.
type stepResult struct {
	Step    int            `json:"step"`
	Tool    string         `json:"tool"`
	Entity  string         `json:"entity"`
	Label   string         `json:"label,omitempty"`
	Success bool           `json:"success"`
	Result  domain.Payload `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// runCompound executes the ordered sub-actions sequentially through the
// same dispatcher entry point used for top-level decisions, stopping at
// the first failure. Completed steps are never rolled back: the
// sub-actions are heterogeneous platform mutations without a generic
// inverse, so the report states precisely how much external state
// already changed instead of attempting compensation.
func (d *Dispatcher) runCompound(ctx context.Context, parent Request, p CompoundParams) (domain.Payload, error) {
	total := len(p.Actions)
	results := make([]stepResult, 0, total)

	for i, action := range p.Actions {
		sub := Request{
			OrgID:        parent.OrgID,
			Platform:     parent.Platform,
			Tool:         action.Tool,
			EntityType:   coalesce(action.EntityType, parent.EntityType),
			EntityID:     coalesce(action.EntityID, parent.EntityID),
			EntityName:   coalesce(action.EntityName, parent.EntityName),
			Params:       action.Params,
			fromCompound: true,
		}

		res, err := d.Execute(ctx, sub)
		if err != nil {
			results = append(results, stepResult{
				Step: i + 1, Tool: action.Tool, Entity: sub.EntityID, Label: action.Label,
				Success: false, Error: err.Error(),
			})
			d.logger.Warn("compound action stopped at failed step",
				zap.String("strategy", p.Strategy), zap.Int("step", i+1),
				zap.Int("completed_steps", i), zap.Error(err))
			return domain.Payload{
				"success":         false,
				"strategy":        p.Strategy,
				"completed_steps": i,
				"total_steps":     total,
				"message": fmt.Sprintf(
					"step %d of %d (%s on %s) failed: %v; %d earlier step(s) already changed platform state and were not reverted",
					i+1, total, action.Tool, sub.EntityID, err, i),
				"steps": results,
			}, nil
		}

		results = append(results, stepResult{
			Step: i + 1, Tool: action.Tool, Entity: sub.EntityID, Label: action.Label,
			Success: true, Result: res,
		})
	}

	return domain.Payload{
		"success":         true,
		"strategy":        p.Strategy,
		"completed_steps": total,
		"total_steps":     total,
		"steps":           results,
	}, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
