package execution

import (
	"github.com/goccy/go-json"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/schedule"
	"github.com/adkite/adkite/internal/services/targeting"
)

// Request is the dispatcher's input: either a persisted Decision's
// targeting and intent fields, or an ephemeral sub-action synthesized
// by the compound executor.
type Request struct {
	OrgID      string
	Platform   domain.Platform
	Tool       string
	EntityType string
	EntityID   string
	EntityName string
	Params     domain.Params

	// fromCompound marks requests synthesized by the compound executor;
	// nested compound actions are rejected during normalization.
	fromCompound bool
}

// normalized is a Request after alias resolution and parameter typing.
type normalized struct {
	Tool       domain.Tool
	Entity     domain.EntityType
	EntityID   string
	EntityName string
	Params     ToolParams
}

// normalize resolves legacy tool aliases, backfills parameters from
// legacy alternates, and converts the opaque bag into the typed
// per-tool shape. All ValidationErrors happen here, before any
// connection or platform work.
func normalize(req Request) (normalized, error) {
	if _, err := domain.ParsePlatform(string(req.Platform)); err != nil {
		return normalized{}, domain.NewValidationError("%v", err)
	}

	tool, ok := domain.CanonicalTool(req.Tool)
	if !ok {
		return normalized{}, domain.NewValidationError("unknown tool: %q", req.Tool)
	}

	if tool == domain.ToolAccumulatedInsight {
		return normalized{}, domain.NewValidationError("accumulated_insight decisions are acknowledged, not executed")
	}
	if tool == domain.ToolCompoundAction && req.fromCompound {
		return normalized{}, domain.NewValidationError("nested compound_action is not allowed")
	}

	entityRaw := req.EntityType
	if entityRaw == "" && tool == domain.ToolCompoundAction {
		// compound parents address no entity themselves
		entityRaw = string(domain.EntityCampaign)
	}
	entity, err := domain.ParseEntityType(entityRaw)
	if err != nil {
		return normalized{}, domain.NewValidationError("%v", err)
	}

	if tool != domain.ToolCompoundAction && tool != domain.ToolReallocateBudget && req.EntityID == "" {
		return normalized{}, domain.NewValidationError("entity_id is required for %s", tool)
	}

	params, err := normalizeParams(tool, req)
	if err != nil {
		return normalized{}, err
	}

	return normalized{
		Tool:       tool,
		Entity:     entity,
		EntityID:   req.EntityID,
		EntityName: req.EntityName,
		Params:     params,
	}, nil
}

func normalizeParams(tool domain.Tool, req Request) (ToolParams, error) {
	p := req.Params
	if p == nil {
		p = domain.Params{}
	}

	switch tool {
	case domain.ToolSetStatus:
		status, ok := stringParam(p, "status", "recommended_status")
		if !ok {
			// the pause/enable aliases imply their status
			switch req.Tool {
			case "pause":
				status = "PAUSED"
			case "enable":
				status = "ENABLED"
			default:
				return nil, domain.NewValidationError("set_status requires a status or recommended_status parameter")
			}
		}
		return StatusParams{Status: status}, nil

	case domain.ToolSetBudget:
		amount, ok := intParam(p, "recommended_budget_cents", "amount_cents")
		if !ok {
			return nil, domain.NewValidationError("set_budget requires recommended_budget_cents or amount_cents")
		}
		if amount <= 0 {
			return nil, domain.NewValidationError("budget amount must be positive, got %d cents", amount)
		}
		budgetTypeRaw, _ := stringParam(p, "budget_type")
		budgetType, err := domain.ParseBudgetType(budgetTypeRaw)
		if err != nil {
			return nil, domain.NewValidationError("%v", err)
		}
		return BudgetParams{AmountCents: amount, Type: budgetType}, nil

	case domain.ToolSetBidStrategy:
		strategy, ok := stringParam(p, "strategy", "bid_strategy", "recommended_strategy")
		if !ok {
			return nil, domain.NewValidationError("set_bid_strategy requires a strategy parameter")
		}
		target, _ := intParam(p, "target_value_cents", "target_cpa_cents", "bid_amount_cents")
		roas, _ := floatParam(p, "target_roas")
		return BidStrategyParams{Strategy: strategy, TargetValueCents: target, TargetRoas: roas}, nil

	case domain.ToolSetSchedule:
		spec := schedule.Spec{
			HoursToAdd:    intSliceParam(p, "hours_to_add"),
			HoursToRemove: intSliceParam(p, "hours_to_remove"),
			DaysToAdd:     intSliceParam(p, "days_to_add"),
			DaysToRemove:  intSliceParam(p, "days_to_remove"),
		}
		if err := spec.Validate(); err != nil {
			return nil, domain.NewValidationError("%v", err)
		}
		return ScheduleParams{Spec: spec}, nil

	case domain.ToolSetAudience:
		minAge, _ := intParam(p, "min_age")
		maxAge, _ := intParam(p, "max_age")
		gender, _ := stringParam(p, "gender")
		return AudienceParams{Spec: targeting.Spec{
			AgeGroups:        stringSliceParam(p, "age_groups"),
			MinAge:           int(minAge),
			MaxAge:           int(maxAge),
			Gender:           gender,
			Locations:        stringSliceParam(p, "locations"),
			Interests:        stringSliceParam(p, "interests"),
			ExcludeInterests: stringSliceParam(p, "exclude_interests"),
		}}, nil

	case domain.ToolReallocateBudget:
		from, _ := stringParam(p, "from_entity_id")
		to, _ := stringParam(p, "to_entity_id")
		amount, _ := intParam(p, "recommended_budget_cents", "amount_cents")
		budgetTypeRaw, _ := stringParam(p, "budget_type")
		budgetType, err := domain.ParseBudgetType(budgetTypeRaw)
		if err != nil {
			return nil, domain.NewValidationError("%v", err)
		}
		return ReallocationParams{
			FromEntityID:     from,
			ToEntityID:       to,
			AmountCents:      amount,
			BudgetType:       budgetType,
			CurrentFromCents: optionalIntParam(p, "current_from_cents", "from_current_cents"),
			CurrentToCents:   optionalIntParam(p, "current_to_cents", "to_current_cents"),
		}, nil

	case domain.ToolCompoundAction:
		strategy, _ := stringParam(p, "strategy", "strategy_name")
		actions, err := subActions(p)
		if err != nil {
			return nil, err
		}
		if len(actions) == 0 {
			return nil, domain.NewValidationError("compound_action requires a non-empty actions list")
		}
		return CompoundParams{Strategy: strategy, Actions: actions}, nil
	}

	return nil, domain.NewValidationError("unknown tool: %q", tool)
}

// subActions decodes the actions list, which arrives either as typed
// SubActions (in-process producers) or as raw JSON maps.
func subActions(p domain.Params) ([]domain.SubAction, error) {
	v, ok := p["actions"]
	if !ok {
		return nil, nil
	}
	if typed, ok := v.([]domain.SubAction); ok {
		return typed, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, domain.NewValidationError("malformed actions list: %v", err)
	}
	var actions []domain.SubAction
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, domain.NewValidationError("malformed actions list: %v", err)
	}
	return actions, nil
}
