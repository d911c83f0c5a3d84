package domain

// Tool is the canonical name of an executable operation.
type Tool string

const (
	ToolSetBudget        Tool = "set_budget"
	ToolSetStatus        Tool = "set_status"
	ToolSetBidStrategy   Tool = "set_bid_strategy"
	ToolSetSchedule      Tool = "set_schedule"
	ToolSetAudience      Tool = "set_audience"
	ToolReallocateBudget Tool = "reallocate_budget"
	ToolCompoundAction   Tool = "compound_action"

	// ToolAccumulatedInsight is acknowledged via a rating action, never
	// executed against a platform. The store handles its lifecycle.
	ToolAccumulatedInsight Tool = "accumulated_insight"
)

// isValidTool checks if the string is a canonical tool name.
func isValidTool(s string) bool {
	switch Tool(s) {
	case ToolSetBudget, ToolSetStatus, ToolSetBidStrategy, ToolSetSchedule,
		ToolSetAudience, ToolReallocateBudget, ToolCompoundAction,
		ToolAccumulatedInsight:
		return true
	}
	return false
}

// toolAliases maps legacy producer tool names to canonical ones.
// Parameter backfill for aliased tools happens during normalization.
var toolAliases = map[string]Tool{
	"pause":         ToolSetStatus,
	"enable":        ToolSetStatus,
	"set_age_range": ToolSetAudience,
	"adjust_budget": ToolSetBudget,
	"update_budget": ToolSetBudget,
}

// CanonicalTool resolves a raw tool string (canonical or legacy alias)
// to its canonical form. The boolean reports whether the name was known.
func CanonicalTool(raw string) (Tool, bool) {
	if t, ok := toolAliases[raw]; ok {
		return t, true
	}
	if isValidTool(raw) {
		return Tool(raw), true
	}
	return "", false
}
