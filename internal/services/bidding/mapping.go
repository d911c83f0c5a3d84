// Package bidding holds the pure lookup tables translating generic bid
// strategy and status names into each platform's native enums. Unknown
// inputs are a hard failure: silently defaulting a bidding strategy has
// real monetary consequences.
package bidding

import (
	"sort"
	"strings"

	"github.com/adkite/adkite/internal/domain"
)

// Per-platform strategy tables. Keys include cross-platform aliases;
// values are the platform's native enum.
var googleStrategies = map[string]string{
	"TARGET_CPA":                "TARGET_CPA",
	"TARGET_ROAS":               "TARGET_ROAS",
	"MAXIMIZE_CONVERSIONS":      "MAXIMIZE_CONVERSIONS",
	"MAXIMIZE_CONVERSION_VALUE": "MAXIMIZE_CONVERSION_VALUE",
	"MANUAL_CPC":                "MANUAL_CPC",
	"TARGET_SPEND":              "TARGET_SPEND",
	"LOWEST_COST":               "MAXIMIZE_CONVERSIONS",
	"COST_CAP":                  "TARGET_CPA",
}

var facebookStrategies = map[string]string{
	"LOWEST_COST_WITHOUT_CAP":   "LOWEST_COST_WITHOUT_CAP",
	"LOWEST_COST_WITH_BID_CAP":  "LOWEST_COST_WITH_BID_CAP",
	"COST_CAP":                  "COST_CAP",
	"LOWEST_COST_WITH_MIN_ROAS": "LOWEST_COST_WITH_MIN_ROAS",
	"LOWEST_COST":               "LOWEST_COST_WITHOUT_CAP",
	"MAXIMIZE_CONVERSIONS":      "LOWEST_COST_WITHOUT_CAP",
	"BID_CAP":                   "LOWEST_COST_WITH_BID_CAP",
	"TARGET_CPA":                "COST_CAP",
	"TARGET_ROAS":               "LOWEST_COST_WITH_MIN_ROAS",
}

var tiktokStrategies = map[string]string{
	"BID_TYPE_NO_BID":      "BID_TYPE_NO_BID",
	"BID_TYPE_CUSTOM":      "BID_TYPE_CUSTOM",
	"LOWEST_COST":          "BID_TYPE_NO_BID",
	"MAXIMIZE_CONVERSIONS": "BID_TYPE_NO_BID",
	"COST_CAP":             "BID_TYPE_CUSTOM",
	"BID_CAP":              "BID_TYPE_CUSTOM",
	"TARGET_CPA":           "BID_TYPE_CUSTOM",
}

// Per-platform entity status tables. Generic vocabulary is
// ENABLED / PAUSED / REMOVED.
var googleStatuses = map[string]string{
	"ENABLED": "ENABLED",
	"ACTIVE":  "ENABLED",
	"PAUSED":  "PAUSED",
	"REMOVED": "REMOVED",
	"DELETED": "REMOVED",
}

var facebookStatuses = map[string]string{
	"ENABLED": "ACTIVE",
	"ACTIVE":  "ACTIVE",
	"PAUSED":  "PAUSED",
	"REMOVED": "DELETED",
	"DELETED": "DELETED",
}

var tiktokStatuses = map[string]string{
	"ENABLED": "ENABLE",
	"ACTIVE":  "ENABLE",
	"PAUSED":  "DISABLE",
	"REMOVED": "DELETE",
	"DELETED": "DELETE",
}

func strategyTable(p domain.Platform) map[string]string {
	switch p {
	case domain.PlatformGoogle:
		return googleStrategies
	case domain.PlatformFacebook:
		return facebookStrategies
	case domain.PlatformTikTok:
		return tiktokStrategies
	}
	return nil
}

func statusTable(p domain.Platform) map[string]string {
	switch p {
	case domain.PlatformGoogle:
		return googleStatuses
	case domain.PlatformFacebook:
		return facebookStatuses
	case domain.PlatformTikTok:
		return tiktokStatuses
	}
	return nil
}

// BidStrategy maps a generic bid strategy name to the platform's native
// enum. Unknown values fail naming the offending value and listing the
// valid native enums.
func BidStrategy(p domain.Platform, generic string) (string, error) {
	table := strategyTable(p)
	if table == nil {
		return "", domain.NewUnsupportedOperationError("no bid strategy mapping for platform %s", p)
	}
	native, ok := table[strings.ToUpper(strings.TrimSpace(generic))]
	if !ok {
		return "", domain.NewValidationError("unknown bid strategy %q for %s, valid values: %s",
			generic, p, strings.Join(nativeValues(table), ", "))
	}
	return native, nil
}

// Status maps a generic entity status to the platform's native enum.
func Status(p domain.Platform, generic string) (string, error) {
	table := statusTable(p)
	if table == nil {
		return "", domain.NewUnsupportedOperationError("no status mapping for platform %s", p)
	}
	native, ok := table[strings.ToUpper(strings.TrimSpace(generic))]
	if !ok {
		return "", domain.NewValidationError("unknown status %q for %s, valid values: %s",
			generic, p, strings.Join(nativeValues(table), ", "))
	}
	return native, nil
}

func nativeValues(table map[string]string) []string {
	seen := make(map[string]bool, len(table))
	var values []string
	for _, v := range table {
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)
	return values
}
