package adapter

import (
	"context"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/bidding"
	"github.com/adkite/adkite/internal/services/schedule"
	"github.com/adkite/adkite/internal/services/targeting"
)

// Google budgets are expressed in micros (1 unit = 1,000,000 micros,
// so 1 cent = 10,000 micros). Age targeting is clamped to 18-65.
const (
	googleMicrosPerCent = 10_000
	googleAgeFloor      = 18
	googleAgeCeil       = 65

	googleMinDailyCents    = 100
	googleMinLifetimeCents = 100
)

// GoogleBudget is the native budget representation.
type GoogleBudget struct {
	AmountMicros int64
	Lifetime     bool
	Configured   bool
}

// GoogleBidStrategy is the native bidding payload.
type GoogleBidStrategy struct {
	Type            string
	TargetCPAMicros int64
	TargetRoas      float64
}

// GoogleTargeting is the native audience payload.
type GoogleTargeting struct {
	AgeRanges         []targeting.AgeRange
	Gender            string // GENDER_MALE / GENDER_FEMALE, empty = untargeted
	CountryCodes      []string
	GeoTargetIDs      []string
	Interests         []string
	ExcludedInterests []string
}

// GoogleSession is the external Google Ads collaborator: one HTTP
// request per call, transport concerns handled by the session owner.
type GoogleSession interface {
	CampaignBudget(ctx context.Context, campaignID string) (GoogleBudget, error)
	SetCampaignBudget(ctx context.Context, campaignID string, b GoogleBudget) error
	SetStatus(ctx context.Context, entityType domain.EntityType, entityID, nativeStatus string) error
	SetBidStrategy(ctx context.Context, campaignID string, spec GoogleBidStrategy) error
	SetAdSchedule(ctx context.Context, campaignID string, ranges []schedule.MinuteRange) error
	SetTargeting(ctx context.Context, entityType domain.EntityType, entityID string, t GoogleTargeting) error
}

type googleAdapter struct {
	session GoogleSession
}

// NewGoogle builds the Google Ads adapter over a platform session.
func NewGoogle(session GoogleSession) Adapter {
	return &googleAdapter{session: session}
}

func (a *googleAdapter) Platform() domain.Platform { return domain.PlatformGoogle }

func (a *googleAdapter) SupportsBudgetRead() bool { return true }

func (a *googleAdapter) MinBudgetCents(t domain.BudgetType) int64 {
	if t == domain.BudgetLifetime {
		return googleMinLifetimeCents
	}
	return googleMinDailyCents
}

func (a *googleAdapter) ReadBudget(ctx context.Context, entityType domain.EntityType, entityID string) (BudgetSnapshot, error) {
	if entityType != domain.EntityCampaign {
		return BudgetSnapshot{}, UnsupportedError(domain.PlatformGoogle, domain.ToolSetBudget, entityType)
	}
	b, err := a.session.CampaignBudget(ctx, entityID)
	if err != nil {
		return BudgetSnapshot{}, domain.NewExternalAPIError(err, "google: read budget of campaign %s", entityID)
	}
	budgetType := domain.BudgetDaily
	if b.Lifetime {
		budgetType = domain.BudgetLifetime
	}
	return BudgetSnapshot{
		AmountCents: b.AmountMicros / googleMicrosPerCent,
		Type:        budgetType,
		Configured:  b.Configured,
	}, nil
}

func (a *googleAdapter) SetBudget(ctx context.Context, entityType domain.EntityType, entityID string, change BudgetChange) (domain.Payload, error) {
	if entityType != domain.EntityCampaign {
		return nil, UnsupportedError(domain.PlatformGoogle, domain.ToolSetBudget, entityType)
	}
	b := GoogleBudget{
		AmountMicros: change.AmountCents * googleMicrosPerCent,
		Lifetime:     change.Type == domain.BudgetLifetime,
	}
	if err := a.session.SetCampaignBudget(ctx, entityID, b); err != nil {
		return nil, domain.NewExternalAPIError(err, "google: set budget of campaign %s", entityID)
	}
	return domain.Payload{
		"entity_id":     entityID,
		"budget_cents":  change.AmountCents,
		"budget_micros": b.AmountMicros,
		"budget_type":   change.Type,
	}, nil
}

func (a *googleAdapter) SetStatus(ctx context.Context, entityType domain.EntityType, entityID string, status string) (domain.Payload, error) {
	native, err := bidding.Status(domain.PlatformGoogle, status)
	if err != nil {
		return nil, err
	}
	if err := a.session.SetStatus(ctx, entityType, entityID, native); err != nil {
		return nil, domain.NewExternalAPIError(err, "google: set status of %s %s", entityType, entityID)
	}
	return domain.Payload{"entity_id": entityID, "status": native}, nil
}

func (a *googleAdapter) SetBidStrategy(ctx context.Context, entityType domain.EntityType, entityID string, spec BidStrategySpec) (domain.Payload, error) {
	native, err := bidding.BidStrategy(domain.PlatformGoogle, spec.Strategy)
	if err != nil {
		return nil, err
	}
	payload := GoogleBidStrategy{
		Type:            native,
		TargetCPAMicros: spec.TargetValueCents * googleMicrosPerCent,
		TargetRoas:      spec.TargetRoas,
	}
	if err := a.session.SetBidStrategy(ctx, entityID, payload); err != nil {
		return nil, domain.NewExternalAPIError(err, "google: set bid strategy of campaign %s", entityID)
	}
	return domain.Payload{"entity_id": entityID, "bid_strategy": native}, nil
}

func (a *googleAdapter) SetSchedule(ctx context.Context, entityType domain.EntityType, entityID string, spec schedule.Spec) (domain.Payload, error) {
	ranges := schedule.MinuteRanges(spec)
	if err := a.session.SetAdSchedule(ctx, entityID, ranges); err != nil {
		return nil, domain.NewExternalAPIError(err, "google: set ad schedule of campaign %s", entityID)
	}
	return domain.Payload{"entity_id": entityID, "schedule_entries": len(ranges), "schedule": ranges}, nil
}

func (a *googleAdapter) SetTargeting(ctx context.Context, entityType domain.EntityType, entityID string, spec targeting.Spec) (domain.Payload, error) {
	countries, regions := targeting.SplitLocations(spec.Locations)
	payload := GoogleTargeting{
		AgeRanges:         spec.ParseAgeRanges(googleAgeFloor, googleAgeCeil),
		CountryCodes:      countries,
		GeoTargetIDs:      regions,
		Interests:         spec.Interests,
		ExcludedInterests: spec.ExcludeInterests,
	}
	if gender, ok := targeting.GenderField(spec.Gender); ok {
		payload.Gender = "GENDER_" + gender
	}
	if err := a.session.SetTargeting(ctx, entityType, entityID, payload); err != nil {
		return nil, domain.NewExternalAPIError(err, "google: set targeting of %s %s", entityType, entityID)
	}
	return domain.Payload{"entity_id": entityID, "age_ranges": payload.AgeRanges, "countries": countries, "regions": regions}, nil
}
