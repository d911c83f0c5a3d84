package execution

import (
	"strconv"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/schedule"
	"github.com/adkite/adkite/internal/services/targeting"
)

// ToolParams is the discriminated union of per-tool parameter shapes.
// The raw parameter bag is resolved into one of these exactly once, at
// the dispatcher boundary, so legacy field-name fallbacks never leak
// into the handlers.
type ToolParams interface {
	isToolParams()
}

// StatusParams carries the generic status for set_status.
type StatusParams struct {
	Status string
}

// BudgetParams carries the absolute budget for set_budget.
type BudgetParams struct {
	AmountCents int64
	Type        domain.BudgetType
}

// BidStrategyParams carries the generic strategy for set_bid_strategy.
type BidStrategyParams struct {
	Strategy         string
	TargetValueCents int64
	TargetRoas       float64
}

// ScheduleParams carries the dayparting diff for set_schedule.
type ScheduleParams struct {
	Spec schedule.Spec
}

// AudienceParams carries the audience spec for set_audience.
type AudienceParams struct {
	Spec targeting.Spec
}

// ReallocationParams carries the transfer request for reallocate_budget.
// CurrentFromCents/CurrentToCents are only consulted on platforms
// without a budget read API.
type ReallocationParams struct {
	FromEntityID     string
	ToEntityID       string
	AmountCents      int64
	BudgetType       domain.BudgetType
	CurrentFromCents *int64
	CurrentToCents   *int64
}

// CompoundParams carries the ordered sub-actions for compound_action.
type CompoundParams struct {
	Strategy string
	Actions  []domain.SubAction
}

func (StatusParams) isToolParams()       {}
func (BudgetParams) isToolParams()       {}
func (BidStrategyParams) isToolParams()  {}
func (ScheduleParams) isToolParams()     {}
func (AudienceParams) isToolParams()     {}
func (ReallocationParams) isToolParams() {}
func (CompoundParams) isToolParams()     {}

// Coercion helpers for the raw bag: JSON decoding yields float64 for
// numbers and []any for lists, while in-process producers pass native
// Go types, so every accessor accepts both.

func stringParam(p domain.Params, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := p[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func intParam(p domain.Params, keys ...string) (int64, bool) {
	for _, k := range keys {
		v, ok := p[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int:
			return int64(n), true
		case int64:
			return n, true
		case float64:
			return int64(n), true
		case string:
			if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func floatParam(p domain.Params, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := p[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			if parsed, err := strconv.ParseFloat(n, 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func intSliceParam(p domain.Params, key string) []int {
	v, ok := p[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []int:
		return list
	case []any:
		out := make([]int, 0, len(list))
		for _, item := range list {
			switch n := item.(type) {
			case int:
				out = append(out, n)
			case int64:
				out = append(out, int(n))
			case float64:
				out = append(out, int(n))
			}
		}
		return out
	}
	return nil
}

func stringSliceParam(p domain.Params, key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func optionalIntParam(p domain.Params, keys ...string) *int64 {
	if v, ok := intParam(p, keys...); ok {
		return &v
	}
	return nil
}
