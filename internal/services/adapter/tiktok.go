package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/bidding"
	"github.com/adkite/adkite/internal/services/schedule"
	"github.com/adkite/adkite/internal/services/targeting"
)

// TikTok budgets are fractional currency units with two decimal places,
// converted from cents through decimal math. The platform offers no
// budget read API, so reallocations need caller-supplied values, and it
// enforces far higher budget minimums than the other platforms.
const (
	tiktokMinDailyCents    = 2000
	tiktokMinLifetimeCents = 5000

	tiktokBudgetModeDay   = "BUDGET_MODE_DAY"
	tiktokBudgetModeTotal = "BUDGET_MODE_TOTAL"
)

var tiktokCentsPerUnit = decimal.NewFromInt(100)

// tiktokAgeBuckets maps the platform's fixed age bucket enums to the
// band each one covers.
var tiktokAgeBuckets = []struct {
	Name     string
	Min, Max int
}{
	{"AGE_18_24", 18, 24},
	{"AGE_25_34", 25, 34},
	{"AGE_35_44", 35, 44},
	{"AGE_45_54", 45, 54},
	{"AGE_55_100", 55, 100},
}

// TikTokBudget is the native budget representation.
type TikTokBudget struct {
	Amount decimal.Decimal
	Mode   string
}

// TikTokTargeting is the native audience payload.
type TikTokTargeting struct {
	AgeGroups           []string
	Gender              string // GENDER_MALE / GENDER_FEMALE, empty = unlimited
	LocationIDs         []string
	InterestCategoryIDs []string
	ExcludedInterestIDs []string
}

// TikTokSession is the external TikTok Ads collaborator. There is no
// budget read operation: the API does not expose one.
type TikTokSession interface {
	SetBudget(ctx context.Context, entityType domain.EntityType, entityID string, b TikTokBudget) error
	SetOperationStatus(ctx context.Context, entityType domain.EntityType, entityID, operation string) error
	SetBidStrategy(ctx context.Context, adGroupID, bidType string, bidPrice decimal.Decimal) error
	SetDayparting(ctx context.Context, adGroupID string, dayparting [7]string) error
	SetTargeting(ctx context.Context, adGroupID string, t TikTokTargeting) error
}

type tiktokAdapter struct {
	session TikTokSession
}

// NewTikTok builds the TikTok Ads adapter over a platform session.
func NewTikTok(session TikTokSession) Adapter {
	return &tiktokAdapter{session: session}
}

func (a *tiktokAdapter) Platform() domain.Platform { return domain.PlatformTikTok }

func (a *tiktokAdapter) SupportsBudgetRead() bool { return false }

func (a *tiktokAdapter) MinBudgetCents(t domain.BudgetType) int64 {
	if t == domain.BudgetLifetime {
		return tiktokMinLifetimeCents
	}
	return tiktokMinDailyCents
}

func (a *tiktokAdapter) ReadBudget(ctx context.Context, entityType domain.EntityType, entityID string) (BudgetSnapshot, error) {
	return BudgetSnapshot{}, domain.NewUnsupportedOperationError(
		"tiktok does not expose a budget read API; supply current budget values in the decision parameters")
}

func (a *tiktokAdapter) SetBudget(ctx context.Context, entityType domain.EntityType, entityID string, change BudgetChange) (domain.Payload, error) {
	mode := tiktokBudgetModeDay
	if change.Type == domain.BudgetLifetime {
		mode = tiktokBudgetModeTotal
	}
	amount := decimal.NewFromInt(change.AmountCents).Div(tiktokCentsPerUnit).Round(2)
	b := TikTokBudget{Amount: amount, Mode: mode}
	if err := a.session.SetBudget(ctx, entityType, entityID, b); err != nil {
		return nil, domain.NewExternalAPIError(err, "tiktok: set budget of %s %s", entityType, entityID)
	}
	return domain.Payload{
		"entity_id":    entityID,
		"budget_cents": change.AmountCents,
		"budget":       amount.String(),
		"budget_mode":  mode,
	}, nil
}

func (a *tiktokAdapter) SetStatus(ctx context.Context, entityType domain.EntityType, entityID string, status string) (domain.Payload, error) {
	native, err := bidding.Status(domain.PlatformTikTok, status)
	if err != nil {
		return nil, err
	}
	if err := a.session.SetOperationStatus(ctx, entityType, entityID, native); err != nil {
		return nil, domain.NewExternalAPIError(err, "tiktok: set status of %s %s", entityType, entityID)
	}
	return domain.Payload{"entity_id": entityID, "status": native}, nil
}

func (a *tiktokAdapter) SetBidStrategy(ctx context.Context, entityType domain.EntityType, entityID string, spec BidStrategySpec) (domain.Payload, error) {
	native, err := bidding.BidStrategy(domain.PlatformTikTok, spec.Strategy)
	if err != nil {
		return nil, err
	}
	bidPrice := decimal.NewFromInt(spec.TargetValueCents).Div(tiktokCentsPerUnit).Round(2)
	if err := a.session.SetBidStrategy(ctx, entityID, native, bidPrice); err != nil {
		return nil, domain.NewExternalAPIError(err, "tiktok: set bid strategy of ad group %s", entityID)
	}
	return domain.Payload{"entity_id": entityID, "bid_type": native}, nil
}

func (a *tiktokAdapter) SetSchedule(ctx context.Context, entityType domain.EntityType, entityID string, spec schedule.Spec) (domain.Payload, error) {
	dayparting := schedule.DayBitstrings(spec)
	if err := a.session.SetDayparting(ctx, entityID, dayparting); err != nil {
		return nil, domain.NewExternalAPIError(err, "tiktok: set dayparting of ad group %s", entityID)
	}
	return domain.Payload{"entity_id": entityID, "dayparting": dayparting[:]}, nil
}

func (a *tiktokAdapter) SetTargeting(ctx context.Context, entityType domain.EntityType, entityID string, spec targeting.Spec) (domain.Payload, error) {
	countries, regions := targeting.SplitLocations(spec.Locations)
	payload := TikTokTargeting{
		// TikTok addresses every location, country included, by id
		LocationIDs:         append(countries, regions...),
		InterestCategoryIDs: spec.Interests,
		ExcludedInterestIDs: spec.ExcludeInterests,
	}
	for _, r := range spec.ParseAgeRanges(18, 100) {
		for _, bucket := range tiktokAgeBuckets {
			if r.Min <= bucket.Max && r.Max >= bucket.Min && !contains(payload.AgeGroups, bucket.Name) {
				payload.AgeGroups = append(payload.AgeGroups, bucket.Name)
			}
		}
	}
	if gender, ok := targeting.GenderField(spec.Gender); ok {
		payload.Gender = "GENDER_" + gender
	}
	if err := a.session.SetTargeting(ctx, entityID, payload); err != nil {
		return nil, domain.NewExternalAPIError(err, "tiktok: set targeting of ad group %s", entityID)
	}
	return domain.Payload{"entity_id": entityID, "age_groups": payload.AgeGroups, "location_ids": payload.LocationIDs}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
