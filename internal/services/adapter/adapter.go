// Package adapter exposes a uniform operation set over each supported
// advertising platform. Each adapter translates generic parameters into
// the platform's native payloads and calls a platform session, the
// external collaborator owning HTTP transport, retries and auth refresh.
package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/schedule"
	"github.com/adkite/adkite/internal/services/targeting"
)

// BudgetSnapshot is a platform-agnostic view of an entity's budget.
type BudgetSnapshot struct {
	AmountCents int64             `json:"amount_cents"`
	Type        domain.BudgetType `json:"budget_type"`
	Configured  bool              `json:"configured"`
}

// BudgetChange sets an entity's budget to a new absolute amount.
type BudgetChange struct {
	AmountCents int64
	Type        domain.BudgetType
}

// BidStrategySpec is the generic bid strategy request. Strategy names
// are resolved through the bidding tables; the optional target value is
// interpreted per strategy (CPA cap, bid cap).
type BidStrategySpec struct {
	Strategy         string
	TargetValueCents int64
	TargetRoas       float64
}

// Adapter is the uniform operation set the dispatcher routes to.
type Adapter interface {
	Platform() domain.Platform

	// SupportsBudgetRead reports whether the platform has a budget read
	// API. When false, reallocation requires caller-supplied values.
	SupportsBudgetRead() bool

	// MinBudgetCents is the platform's minimum allowed budget for the
	// given budget type.
	MinBudgetCents(t domain.BudgetType) int64

	ReadBudget(ctx context.Context, entityType domain.EntityType, entityID string) (BudgetSnapshot, error)
	SetBudget(ctx context.Context, entityType domain.EntityType, entityID string, change BudgetChange) (domain.Payload, error)
	SetStatus(ctx context.Context, entityType domain.EntityType, entityID string, status string) (domain.Payload, error)
	SetBidStrategy(ctx context.Context, entityType domain.EntityType, entityID string, spec BidStrategySpec) (domain.Payload, error)
	SetSchedule(ctx context.Context, entityType domain.EntityType, entityID string, spec schedule.Spec) (domain.Payload, error)
	SetTargeting(ctx context.Context, entityType domain.EntityType, entityID string, spec targeting.Spec) (domain.Payload, error)
}

// routeKey identifies one supported (platform, tool, entity_type)
// combination. Unmapped keys fail closed with UnsupportedOperationError.
type routeKey struct {
	Platform domain.Platform
	Tool     domain.Tool
	Entity   domain.EntityType
}

var routes = map[routeKey]struct{}{}

func addRoute(p domain.Platform, t domain.Tool, entities ...domain.EntityType) {
	for _, e := range entities {
		routes[routeKey{p, t, e}] = struct{}{}
	}
}

func init() {
	addRoute(domain.PlatformGoogle, domain.ToolSetBudget, domain.EntityCampaign)
	addRoute(domain.PlatformGoogle, domain.ToolSetStatus, domain.EntityCampaign, domain.EntityAdGroup, domain.EntityAd)
	addRoute(domain.PlatformGoogle, domain.ToolSetBidStrategy, domain.EntityCampaign)
	addRoute(domain.PlatformGoogle, domain.ToolSetSchedule, domain.EntityCampaign)
	addRoute(domain.PlatformGoogle, domain.ToolSetAudience, domain.EntityCampaign, domain.EntityAdGroup)
	addRoute(domain.PlatformGoogle, domain.ToolReallocateBudget, domain.EntityCampaign)

	addRoute(domain.PlatformFacebook, domain.ToolSetBudget, domain.EntityCampaign, domain.EntityAdGroup)
	addRoute(domain.PlatformFacebook, domain.ToolSetStatus, domain.EntityCampaign, domain.EntityAdGroup, domain.EntityAd)
	addRoute(domain.PlatformFacebook, domain.ToolSetBidStrategy, domain.EntityCampaign, domain.EntityAdGroup)
	addRoute(domain.PlatformFacebook, domain.ToolSetSchedule, domain.EntityAdGroup)
	addRoute(domain.PlatformFacebook, domain.ToolSetAudience, domain.EntityAdGroup)
	addRoute(domain.PlatformFacebook, domain.ToolReallocateBudget, domain.EntityCampaign, domain.EntityAdGroup)

	addRoute(domain.PlatformTikTok, domain.ToolSetBudget, domain.EntityCampaign, domain.EntityAdGroup)
	addRoute(domain.PlatformTikTok, domain.ToolSetStatus, domain.EntityCampaign, domain.EntityAdGroup, domain.EntityAd)
	addRoute(domain.PlatformTikTok, domain.ToolSetBidStrategy, domain.EntityAdGroup)
	addRoute(domain.PlatformTikTok, domain.ToolSetSchedule, domain.EntityAdGroup)
	addRoute(domain.PlatformTikTok, domain.ToolSetAudience, domain.EntityAdGroup)
	addRoute(domain.PlatformTikTok, domain.ToolReallocateBudget, domain.EntityCampaign, domain.EntityAdGroup)
}

// Supported reports whether the routing triple has an adapter mapping.
func Supported(p domain.Platform, t domain.Tool, e domain.EntityType) bool {
	_, ok := routes[routeKey{p, t, e}]
	return ok
}

// SupportedOps lists the supported tool/entity combinations for one
// platform, for UnsupportedOperationError messages.
func SupportedOps(p domain.Platform) []string {
	var ops []string
	for k := range routes {
		if k.Platform == p {
			ops = append(ops, fmt.Sprintf("%s(%s)", k.Tool, k.Entity))
		}
	}
	sort.Strings(ops)
	return ops
}

// UnsupportedError builds the routing failure for an unmapped triple.
func UnsupportedError(p domain.Platform, t domain.Tool, e domain.EntityType) error {
	return domain.NewUnsupportedOperationError("%s is not supported for %s %s; supported operations: %s",
		t, p, e, strings.Join(SupportedOps(p), ", "))
}
