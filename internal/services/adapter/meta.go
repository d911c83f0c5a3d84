package adapter

import (
	"context"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/bidding"
	"github.com/adkite/adkite/internal/services/schedule"
	"github.com/adkite/adkite/internal/services/targeting"
)

// Meta budgets are expressed in cents. Gender targeting uses numeric
// codes (1 = male, 2 = female); an absent genders field means all.
const (
	metaAgeFloor = 18
	metaAgeCeil  = 65

	metaGenderMale   = 1
	metaGenderFemale = 2

	metaMinDailyCents    = 100
	metaMinLifetimeCents = 100
)

// MetaBudget is the native budget representation.
type MetaBudget struct {
	AmountCents int64
	Lifetime    bool
	Configured  bool
}

// MetaTargeting is the native audience payload. Meta takes a single
// age band, so parsed ranges are merged into their envelope.
type MetaTargeting struct {
	AgeMin            int
	AgeMax            int
	Genders           []int
	Countries         []string
	RegionKeys        []string
	Interests         []string
	ExcludedInterests []string
}

// MetaSession is the external Marketing API collaborator.
type MetaSession interface {
	EntityBudget(ctx context.Context, entityType domain.EntityType, entityID string) (MetaBudget, error)
	SetEntityBudget(ctx context.Context, entityType domain.EntityType, entityID string, b MetaBudget) error
	SetStatus(ctx context.Context, entityType domain.EntityType, entityID, nativeStatus string) error
	SetBidStrategy(ctx context.Context, entityType domain.EntityType, entityID, strategy string, bidAmountCents int64) error
	SetAdSetSchedule(ctx context.Context, adSetID string, ranges []schedule.MinuteRange) error
	SetAdSetTargeting(ctx context.Context, adSetID string, t MetaTargeting) error
}

type metaAdapter struct {
	session MetaSession
}

// NewMeta builds the Meta (Facebook) adapter over a platform session.
func NewMeta(session MetaSession) Adapter {
	return &metaAdapter{session: session}
}

func (a *metaAdapter) Platform() domain.Platform { return domain.PlatformFacebook }

func (a *metaAdapter) SupportsBudgetRead() bool { return true }

func (a *metaAdapter) MinBudgetCents(t domain.BudgetType) int64 {
	if t == domain.BudgetLifetime {
		return metaMinLifetimeCents
	}
	return metaMinDailyCents
}

func (a *metaAdapter) ReadBudget(ctx context.Context, entityType domain.EntityType, entityID string) (BudgetSnapshot, error) {
	b, err := a.session.EntityBudget(ctx, entityType, entityID)
	if err != nil {
		return BudgetSnapshot{}, domain.NewExternalAPIError(err, "facebook: read budget of %s %s", entityType, entityID)
	}
	budgetType := domain.BudgetDaily
	if b.Lifetime {
		budgetType = domain.BudgetLifetime
	}
	return BudgetSnapshot{AmountCents: b.AmountCents, Type: budgetType, Configured: b.Configured}, nil
}

func (a *metaAdapter) SetBudget(ctx context.Context, entityType domain.EntityType, entityID string, change BudgetChange) (domain.Payload, error) {
	b := MetaBudget{AmountCents: change.AmountCents, Lifetime: change.Type == domain.BudgetLifetime}
	if err := a.session.SetEntityBudget(ctx, entityType, entityID, b); err != nil {
		return nil, domain.NewExternalAPIError(err, "facebook: set budget of %s %s", entityType, entityID)
	}
	return domain.Payload{
		"entity_id":    entityID,
		"budget_cents": change.AmountCents,
		"budget_type":  change.Type,
	}, nil
}

func (a *metaAdapter) SetStatus(ctx context.Context, entityType domain.EntityType, entityID string, status string) (domain.Payload, error) {
	native, err := bidding.Status(domain.PlatformFacebook, status)
	if err != nil {
		return nil, err
	}
	if err := a.session.SetStatus(ctx, entityType, entityID, native); err != nil {
		return nil, domain.NewExternalAPIError(err, "facebook: set status of %s %s", entityType, entityID)
	}
	return domain.Payload{"entity_id": entityID, "status": native}, nil
}

func (a *metaAdapter) SetBidStrategy(ctx context.Context, entityType domain.EntityType, entityID string, spec BidStrategySpec) (domain.Payload, error) {
	native, err := bidding.BidStrategy(domain.PlatformFacebook, spec.Strategy)
	if err != nil {
		return nil, err
	}
	if err := a.session.SetBidStrategy(ctx, entityType, entityID, native, spec.TargetValueCents); err != nil {
		return nil, domain.NewExternalAPIError(err, "facebook: set bid strategy of %s %s", entityType, entityID)
	}
	return domain.Payload{"entity_id": entityID, "bid_strategy": native}, nil
}

func (a *metaAdapter) SetSchedule(ctx context.Context, entityType domain.EntityType, entityID string, spec schedule.Spec) (domain.Payload, error) {
	ranges := schedule.MinuteRanges(spec)
	if err := a.session.SetAdSetSchedule(ctx, entityID, ranges); err != nil {
		return nil, domain.NewExternalAPIError(err, "facebook: set schedule of ad set %s", entityID)
	}
	return domain.Payload{"entity_id": entityID, "schedule_entries": len(ranges), "schedule": ranges}, nil
}

func (a *metaAdapter) SetTargeting(ctx context.Context, entityType domain.EntityType, entityID string, spec targeting.Spec) (domain.Payload, error) {
	countries, regions := targeting.SplitLocations(spec.Locations)
	payload := MetaTargeting{
		Countries:         countries,
		RegionKeys:        regions,
		Interests:         spec.Interests,
		ExcludedInterests: spec.ExcludeInterests,
	}
	for i, r := range spec.ParseAgeRanges(metaAgeFloor, metaAgeCeil) {
		if i == 0 {
			payload.AgeMin, payload.AgeMax = r.Min, r.Max
			continue
		}
		if r.Min < payload.AgeMin {
			payload.AgeMin = r.Min
		}
		if r.Max > payload.AgeMax {
			payload.AgeMax = r.Max
		}
	}
	if gender, ok := targeting.GenderField(spec.Gender); ok {
		if gender == "MALE" {
			payload.Genders = []int{metaGenderMale}
		} else {
			payload.Genders = []int{metaGenderFemale}
		}
	}
	if err := a.session.SetAdSetTargeting(ctx, entityID, payload); err != nil {
		return nil, domain.NewExternalAPIError(err, "facebook: set targeting of ad set %s", entityID)
	}
	return domain.Payload{
		"entity_id": entityID,
		"age_min":   payload.AgeMin,
		"age_max":   payload.AgeMax,
		"countries": countries,
		"regions":   regions,
	}, nil
}
