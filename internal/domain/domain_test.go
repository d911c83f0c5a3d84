package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalTool(t *testing.T) {
	cases := []struct {
		raw  string
		want Tool
	}{
		{"set_status", ToolSetStatus},
		{"pause", ToolSetStatus},
		{"enable", ToolSetStatus},
		{"set_budget", ToolSetBudget},
		{"adjust_budget", ToolSetBudget},
		{"update_budget", ToolSetBudget},
		{"set_age_range", ToolSetAudience},
		{"reallocate_budget", ToolReallocateBudget},
		{"compound_action", ToolCompoundAction},
		{"accumulated_insight", ToolAccumulatedInsight},
	}
	for _, c := range cases {
		got, ok := CanonicalTool(c.raw)
		require.True(t, ok, c.raw)
		require.Equal(t, c.want, got)
	}

	_, ok := CanonicalTool("launch_rocket")
	require.False(t, ok)
}

func TestParseEntityType(t *testing.T) {
	e, err := ParseEntityType("campaign")
	require.NoError(t, err)
	require.Equal(t, EntityCampaign, e)

	// meta vocabulary maps onto the generic ad_group
	for _, raw := range []string{"ad_group", "ad_set", "adset"} {
		e, err = ParseEntityType(raw)
		require.NoError(t, err, raw)
		require.Equal(t, EntityAdGroup, e)
	}

	_, err = ParseEntityType("placement")
	require.Error(t, err)
}

func TestParseBudgetType(t *testing.T) {
	b, err := ParseBudgetType("")
	require.NoError(t, err)
	require.Equal(t, BudgetDaily, b)

	b, err = ParseBudgetType("lifetime")
	require.NoError(t, err)
	require.Equal(t, BudgetLifetime, b)

	_, err = ParseBudgetType("weekly")
	require.Error(t, err)
}

func TestCodeOfDefaultsToExternalAPI(t *testing.T) {
	require.Equal(t, ErrCodeValidation, CodeOf(NewValidationError("bad")))
	require.Equal(t, ErrCodeExternalAPI, CodeOf(&plainError{}))
}

type plainError struct{}

func (*plainError) Error() string { return "plain" }

func TestRollbackFailureCarriesInconsistentState(t *testing.T) {
	err := NewRollbackFailureError("c1", 7000, nil)
	require.Equal(t, "c1", err.EntityID)
	require.Equal(t, int64(7000), err.InconsistentCents)
	require.Contains(t, err.Error(), "manual correction")
}
