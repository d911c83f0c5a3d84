package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adkite/adkite/internal/domain"
)

func TestNormalizePauseAliasImpliesStatus(t *testing.T) {
	n, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "pause",
		EntityType: "campaign",
		EntityID:   "c1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ToolSetStatus, n.Tool)
	require.Equal(t, StatusParams{Status: "PAUSED"}, n.Params)
}

func TestNormalizeEnableAliasImpliesStatus(t *testing.T) {
	n, err := normalize(Request{
		Platform:   domain.PlatformFacebook,
		Tool:       "enable",
		EntityType: "ad_group",
		EntityID:   "g1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ToolSetStatus, n.Tool)
	require.Equal(t, StatusParams{Status: "ENABLED"}, n.Params)
}

func TestNormalizeExplicitStatusWinsOverAliasDefault(t *testing.T) {
	n, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "pause",
		EntityType: "campaign",
		EntityID:   "c1",
		Params:     domain.Params{"status": "REMOVED"},
	})
	require.NoError(t, err)
	require.Equal(t, StatusParams{Status: "REMOVED"}, n.Params)
}

func TestNormalizeBudgetAliases(t *testing.T) {
	for _, tool := range []string{"set_budget", "adjust_budget", "update_budget"} {
		n, err := normalize(Request{
			Platform:   domain.PlatformGoogle,
			Tool:       tool,
			EntityType: "campaign",
			EntityID:   "c1",
			Params:     domain.Params{"amount_cents": 2500},
		})
		require.NoError(t, err, tool)
		require.Equal(t, domain.ToolSetBudget, n.Tool)
		require.Equal(t, BudgetParams{AmountCents: 2500, Type: domain.BudgetDaily}, n.Params)
	}
}

func TestNormalizeRecommendedBudgetWins(t *testing.T) {
	n, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "set_budget",
		EntityType: "campaign",
		EntityID:   "c1",
		Params:     domain.Params{"recommended_budget_cents": 4000, "amount_cents": 9999},
	})
	require.NoError(t, err)
	require.Equal(t, BudgetParams{AmountCents: 4000, Type: domain.BudgetDaily}, n.Params)
}

func TestNormalizeBudgetRejectsNonPositive(t *testing.T) {
	_, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "set_budget",
		EntityType: "campaign",
		EntityID:   "c1",
		Params:     domain.Params{"amount_cents": 0},
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))

	_, err = normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "set_budget",
		EntityType: "campaign",
		EntityID:   "c1",
		Params:     domain.Params{"amount_cents": -100},
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestNormalizeSetAgeRangeAlias(t *testing.T) {
	n, err := normalize(Request{
		Platform:   domain.PlatformFacebook,
		Tool:       "set_age_range",
		EntityType: "ad_group",
		EntityID:   "g1",
		Params:     domain.Params{"min_age": 21, "max_age": 45},
	})
	require.NoError(t, err)
	require.Equal(t, domain.ToolSetAudience, n.Tool)
	p, ok := n.Params.(AudienceParams)
	require.True(t, ok)
	require.Equal(t, 21, p.Spec.MinAge)
	require.Equal(t, 45, p.Spec.MaxAge)
}

func TestNormalizeFloatAmountsFromJSON(t *testing.T) {
	// json decoding yields float64 numbers
	n, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "set_budget",
		EntityType: "campaign",
		EntityID:   "c1",
		Params:     domain.Params{"recommended_budget_cents": float64(1500)},
	})
	require.NoError(t, err)
	require.Equal(t, BudgetParams{AmountCents: 1500, Type: domain.BudgetDaily}, n.Params)
}

func TestNormalizeUnknownTool(t *testing.T) {
	_, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "teleport_budget",
		EntityType: "campaign",
		EntityID:   "c1",
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
	require.Contains(t, err.Error(), "teleport_budget")
}

func TestNormalizeUnknownPlatform(t *testing.T) {
	_, err := normalize(Request{
		Platform:   domain.Platform("myspace"),
		Tool:       "set_status",
		EntityType: "campaign",
		EntityID:   "c1",
		Params:     domain.Params{"status": "PAUSED"},
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestNormalizeAccumulatedInsightNotExecutable(t *testing.T) {
	_, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "accumulated_insight",
		EntityType: "campaign",
		EntityID:   "c1",
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
	require.Contains(t, err.Error(), "acknowledged")
}

func TestNormalizeNestedCompoundRejected(t *testing.T) {
	_, err := normalize(Request{
		Platform: domain.PlatformGoogle,
		Tool:     "compound_action",
		Params: domain.Params{"actions": []domain.SubAction{
			{Tool: "set_status", EntityID: "c1", Params: domain.Params{"status": "PAUSED"}},
		}},
		fromCompound: true,
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
	require.Contains(t, err.Error(), "nested")
}

func TestNormalizeCompoundRequiresActions(t *testing.T) {
	_, err := normalize(Request{
		Platform: domain.PlatformGoogle,
		Tool:     "compound_action",
		Params:   domain.Params{"strategy": "cut_losers"},
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}

func TestNormalizeCompoundDecodesRawActions(t *testing.T) {
	// actions arrive as raw JSON maps when the decision comes off the wire
	n, err := normalize(Request{
		Platform: domain.PlatformGoogle,
		Tool:     "compound_action",
		Params: domain.Params{
			"strategy": "shift_spend",
			"actions": []any{
				map[string]any{"tool": "set_status", "entity_id": "c1", "parameters": map[string]any{"status": "PAUSED"}},
				map[string]any{"tool": "set_budget", "entity_id": "c2", "parameters": map[string]any{"amount_cents": float64(4000)}},
			},
		},
	})
	require.NoError(t, err)
	p, ok := n.Params.(CompoundParams)
	require.True(t, ok)
	require.Equal(t, "shift_spend", p.Strategy)
	require.Len(t, p.Actions, 2)
	require.Equal(t, "set_status", p.Actions[0].Tool)
	require.Equal(t, "c2", p.Actions[1].EntityID)
}

func TestNormalizeRequiresEntityID(t *testing.T) {
	_, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "set_status",
		EntityType: "campaign",
		Params:     domain.Params{"status": "PAUSED"},
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
	require.Contains(t, err.Error(), "entity_id")
}

func TestNormalizeScheduleValidatesRanges(t *testing.T) {
	_, err := normalize(Request{
		Platform:   domain.PlatformGoogle,
		Tool:       "set_schedule",
		EntityType: "campaign",
		EntityID:   "c1",
		Params:     domain.Params{"hours_to_add": []any{float64(25)}},
	})
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
}
