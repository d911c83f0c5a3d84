package domain

import "fmt"

// Platform identifies an advertising platform.
type Platform string

const (
	PlatformGoogle   Platform = "google"
	PlatformFacebook Platform = "facebook"
	PlatformTikTok   Platform = "tiktok"
)

// ParsePlatform validates a raw platform string.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformGoogle, PlatformFacebook, PlatformTikTok:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unknown platform: %q", s)
}

// EntityType identifies the level of the ad hierarchy an operation targets.
type EntityType string

const (
	EntityCampaign EntityType = "campaign"
	EntityAdGroup  EntityType = "ad_group"
	EntityAd       EntityType = "ad"
)

// ParseEntityType validates a raw entity type. Meta's "ad_set" and
// "adset" are accepted as aliases for ad_group.
func ParseEntityType(s string) (EntityType, error) {
	switch s {
	case "campaign":
		return EntityCampaign, nil
	case "ad_group", "ad_set", "adset":
		return EntityAdGroup, nil
	case "ad":
		return EntityAd, nil
	}
	return "", fmt.Errorf("unknown entity type: %q", s)
}

// BudgetType distinguishes daily from lifetime budgets.
type BudgetType string

const (
	BudgetDaily    BudgetType = "daily"
	BudgetLifetime BudgetType = "lifetime"
)

// ParseBudgetType validates a raw budget type, defaulting to daily
// when the input is empty (the overwhelmingly common case).
func ParseBudgetType(s string) (BudgetType, error) {
	switch s {
	case "", "daily":
		return BudgetDaily, nil
	case "lifetime":
		return BudgetLifetime, nil
	}
	return "", fmt.Errorf("unknown budget type: %q", s)
}
