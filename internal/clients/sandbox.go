// Package clients holds the sandbox platform sessions: in-memory
// stand-ins for the external per-platform HTTP collaborators, used in
// dry-run mode so decisions can be exercised without touching live
// campaigns.
package clients

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/adapter"
	"github.com/adkite/adkite/internal/services/schedule"
)

type sandboxBudget struct {
	cents    int64
	lifetime bool
}

// SandboxState is the shared in-memory platform state. Entities are
// keyed by id; unseeded entities read back as having no budget
// configured, matching a fresh campaign.
type SandboxState struct {
	mu      sync.Mutex
	budgets map[string]sandboxBudget
	logger  *zap.Logger
}

// NewSandboxState builds empty sandbox state.
func NewSandboxState(logger *zap.Logger) *SandboxState {
	return &SandboxState{budgets: make(map[string]sandboxBudget), logger: logger}
}

// SeedBudget pre-creates an entity with a budget.
func (s *SandboxState) SeedBudget(entityID string, cents int64, lifetime bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[entityID] = sandboxBudget{cents: cents, lifetime: lifetime}
}

func (s *SandboxState) readBudget(entityID string) (sandboxBudget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[entityID]
	return b, ok
}

func (s *SandboxState) writeBudget(entityID string, cents int64, lifetime bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[entityID] = sandboxBudget{cents: cents, lifetime: lifetime}
}

func (s *SandboxState) log(platform string, op string, fields ...zap.Field) {
	s.logger.Info("sandbox platform call",
		append([]zap.Field{zap.String("platform", platform), zap.String("op", op)}, fields...)...)
}

// SandboxGoogleSession implements adapter.GoogleSession.
type SandboxGoogleSession struct {
	state *SandboxState
}

func NewSandboxGoogleSession(state *SandboxState) *SandboxGoogleSession {
	return &SandboxGoogleSession{state: state}
}

func (s *SandboxGoogleSession) CampaignBudget(ctx context.Context, campaignID string) (adapter.GoogleBudget, error) {
	b, ok := s.state.readBudget(campaignID)
	if !ok {
		return adapter.GoogleBudget{}, nil
	}
	return adapter.GoogleBudget{AmountMicros: b.cents * 10_000, Lifetime: b.lifetime, Configured: true}, nil
}

func (s *SandboxGoogleSession) SetCampaignBudget(ctx context.Context, campaignID string, b adapter.GoogleBudget) error {
	s.state.writeBudget(campaignID, b.AmountMicros/10_000, b.Lifetime)
	s.state.log("google", "set_campaign_budget", zap.String("campaign", campaignID), zap.Int64("micros", b.AmountMicros))
	return nil
}

func (s *SandboxGoogleSession) SetStatus(ctx context.Context, entityType domain.EntityType, entityID, nativeStatus string) error {
	s.state.log("google", "set_status", zap.String("entity", entityID), zap.String("status", nativeStatus))
	return nil
}

func (s *SandboxGoogleSession) SetBidStrategy(ctx context.Context, campaignID string, spec adapter.GoogleBidStrategy) error {
	s.state.log("google", "set_bid_strategy", zap.String("campaign", campaignID), zap.String("type", spec.Type))
	return nil
}

func (s *SandboxGoogleSession) SetAdSchedule(ctx context.Context, campaignID string, ranges []schedule.MinuteRange) error {
	s.state.log("google", "set_ad_schedule", zap.String("campaign", campaignID), zap.Int("entries", len(ranges)))
	return nil
}

func (s *SandboxGoogleSession) SetTargeting(ctx context.Context, entityType domain.EntityType, entityID string, t adapter.GoogleTargeting) error {
	s.state.log("google", "set_targeting", zap.String("entity", entityID))
	return nil
}

// SandboxMetaSession implements adapter.MetaSession.
type SandboxMetaSession struct {
	state *SandboxState
}

func NewSandboxMetaSession(state *SandboxState) *SandboxMetaSession {
	return &SandboxMetaSession{state: state}
}

func (s *SandboxMetaSession) EntityBudget(ctx context.Context, entityType domain.EntityType, entityID string) (adapter.MetaBudget, error) {
	b, ok := s.state.readBudget(entityID)
	if !ok {
		return adapter.MetaBudget{}, nil
	}
	return adapter.MetaBudget{AmountCents: b.cents, Lifetime: b.lifetime, Configured: true}, nil
}

func (s *SandboxMetaSession) SetEntityBudget(ctx context.Context, entityType domain.EntityType, entityID string, b adapter.MetaBudget) error {
	s.state.writeBudget(entityID, b.AmountCents, b.Lifetime)
	s.state.log("facebook", "set_budget", zap.String("entity", entityID), zap.Int64("cents", b.AmountCents))
	return nil
}

func (s *SandboxMetaSession) SetStatus(ctx context.Context, entityType domain.EntityType, entityID, nativeStatus string) error {
	s.state.log("facebook", "set_status", zap.String("entity", entityID), zap.String("status", nativeStatus))
	return nil
}

func (s *SandboxMetaSession) SetBidStrategy(ctx context.Context, entityType domain.EntityType, entityID, strategy string, bidAmountCents int64) error {
	s.state.log("facebook", "set_bid_strategy", zap.String("entity", entityID), zap.String("strategy", strategy))
	return nil
}

func (s *SandboxMetaSession) SetAdSetSchedule(ctx context.Context, adSetID string, ranges []schedule.MinuteRange) error {
	s.state.log("facebook", "set_schedule", zap.String("ad_set", adSetID), zap.Int("entries", len(ranges)))
	return nil
}

func (s *SandboxMetaSession) SetAdSetTargeting(ctx context.Context, adSetID string, t adapter.MetaTargeting) error {
	s.state.log("facebook", "set_targeting", zap.String("ad_set", adSetID))
	return nil
}

// SandboxTikTokSession implements adapter.TikTokSession. Like the real
// API it offers no budget read.
type SandboxTikTokSession struct {
	state *SandboxState
}

func NewSandboxTikTokSession(state *SandboxState) *SandboxTikTokSession {
	return &SandboxTikTokSession{state: state}
}

func (s *SandboxTikTokSession) SetBudget(ctx context.Context, entityType domain.EntityType, entityID string, b adapter.TikTokBudget) error {
	cents := b.Amount.Mul(decimal.NewFromInt(100)).IntPart()
	s.state.writeBudget(entityID, cents, b.Mode == "BUDGET_MODE_TOTAL")
	s.state.log("tiktok", "set_budget", zap.String("entity", entityID), zap.String("amount", b.Amount.String()))
	return nil
}

func (s *SandboxTikTokSession) SetOperationStatus(ctx context.Context, entityType domain.EntityType, entityID, operation string) error {
	if operation == "" {
		return errors.New("empty operation")
	}
	s.state.log("tiktok", "set_operation_status", zap.String("entity", entityID), zap.String("operation", operation))
	return nil
}

func (s *SandboxTikTokSession) SetBidStrategy(ctx context.Context, adGroupID, bidType string, bidPrice decimal.Decimal) error {
	s.state.log("tiktok", "set_bid_strategy", zap.String("ad_group", adGroupID), zap.String("bid_type", bidType))
	return nil
}

func (s *SandboxTikTokSession) SetDayparting(ctx context.Context, adGroupID string, dayparting [7]string) error {
	s.state.log("tiktok", "set_dayparting", zap.String("ad_group", adGroupID))
	return nil
}

func (s *SandboxTikTokSession) SetTargeting(ctx context.Context, adGroupID string, t adapter.TikTokTargeting) error {
	s.state.log("tiktok", "set_targeting", zap.String("ad_group", adGroupID))
	return nil
}
