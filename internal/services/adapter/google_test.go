package adapter

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/schedule"
	"github.com/adkite/adkite/internal/services/targeting"
)

type fakeGoogleSession struct {
	budget       GoogleBudget
	budgetErr    error
	setBudget    *GoogleBudget
	setStatus    string
	bidStrategy  *GoogleBidStrategy
	adSchedule   []schedule.MinuteRange
	setTargeting *GoogleTargeting
}

func (f *fakeGoogleSession) CampaignBudget(ctx context.Context, campaignID string) (GoogleBudget, error) {
	return f.budget, f.budgetErr
}

func (f *fakeGoogleSession) SetCampaignBudget(ctx context.Context, campaignID string, b GoogleBudget) error {
	f.setBudget = &b
	return nil
}

func (f *fakeGoogleSession) SetStatus(ctx context.Context, entityType domain.EntityType, entityID, nativeStatus string) error {
	f.setStatus = nativeStatus
	return nil
}

func (f *fakeGoogleSession) SetBidStrategy(ctx context.Context, campaignID string, spec GoogleBidStrategy) error {
	f.bidStrategy = &spec
	return nil
}

func (f *fakeGoogleSession) SetAdSchedule(ctx context.Context, campaignID string, ranges []schedule.MinuteRange) error {
	f.adSchedule = ranges
	return nil
}

func (f *fakeGoogleSession) SetTargeting(ctx context.Context, entityType domain.EntityType, entityID string, t GoogleTargeting) error {
	f.setTargeting = &t
	return nil
}

func TestGoogleReadBudgetConvertsMicros(t *testing.T) {
	session := &fakeGoogleSession{budget: GoogleBudget{AmountMicros: 50_000_000, Configured: true}}
	a := NewGoogle(session)

	snap, err := a.ReadBudget(context.Background(), domain.EntityCampaign, "c1")
	require.NoError(t, err)
	require.Equal(t, int64(5000), snap.AmountCents)
	require.Equal(t, domain.BudgetDaily, snap.Type)
	require.True(t, snap.Configured)
}

func TestGoogleReadBudgetLifetime(t *testing.T) {
	session := &fakeGoogleSession{budget: GoogleBudget{AmountMicros: 10_000_000, Lifetime: true, Configured: true}}
	a := NewGoogle(session)

	snap, err := a.ReadBudget(context.Background(), domain.EntityCampaign, "c1")
	require.NoError(t, err)
	require.Equal(t, domain.BudgetLifetime, snap.Type)
}

func TestGoogleReadBudgetWrapsSessionError(t *testing.T) {
	session := &fakeGoogleSession{budgetErr: errors.New("quota exceeded")}
	a := NewGoogle(session)

	_, err := a.ReadBudget(context.Background(), domain.EntityCampaign, "c1")
	require.Error(t, err)
	require.True(t, domain.HasCode(err, domain.ErrCodeExternalAPI))
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestGoogleSetBudgetConvertsToMicros(t *testing.T) {
	session := &fakeGoogleSession{}
	a := NewGoogle(session)

	result, err := a.SetBudget(context.Background(), domain.EntityCampaign, "c1", BudgetChange{AmountCents: 2500, Type: domain.BudgetDaily})
	require.NoError(t, err)
	require.NotNil(t, session.setBudget)
	require.Equal(t, int64(25_000_000), session.setBudget.AmountMicros)
	require.False(t, session.setBudget.Lifetime)
	require.Equal(t, int64(2500), result["budget_cents"])
}

func TestGoogleBudgetCampaignOnly(t *testing.T) {
	a := NewGoogle(&fakeGoogleSession{})

	_, err := a.ReadBudget(context.Background(), domain.EntityAdGroup, "g1")
	require.True(t, domain.HasCode(err, domain.ErrCodeUnsupported))

	_, err = a.SetBudget(context.Background(), domain.EntityAd, "a1", BudgetChange{AmountCents: 1000})
	require.True(t, domain.HasCode(err, domain.ErrCodeUnsupported))
}

func TestGoogleSetStatusMapsNative(t *testing.T) {
	session := &fakeGoogleSession{}
	a := NewGoogle(session)

	result, err := a.SetStatus(context.Background(), domain.EntityCampaign, "c1", "ACTIVE")
	require.NoError(t, err)
	require.Equal(t, "ENABLED", session.setStatus)
	require.Equal(t, "ENABLED", result["status"])
}

func TestGoogleSetBidStrategyTargetCPA(t *testing.T) {
	session := &fakeGoogleSession{}
	a := NewGoogle(session)

	_, err := a.SetBidStrategy(context.Background(), domain.EntityCampaign, "c1", BidStrategySpec{Strategy: "TARGET_CPA", TargetValueCents: 500})
	require.NoError(t, err)
	require.NotNil(t, session.bidStrategy)
	require.Equal(t, "TARGET_CPA", session.bidStrategy.Type)
	require.Equal(t, int64(5_000_000), session.bidStrategy.TargetCPAMicros)
}

func TestGoogleSetScheduleBuildsRanges(t *testing.T) {
	session := &fakeGoogleSession{}
	a := NewGoogle(session)

	_, err := a.SetSchedule(context.Background(), domain.EntityCampaign, "c1", schedule.Spec{HoursToAdd: []int{9, 10, 11}})
	require.NoError(t, err)
	require.Len(t, session.adSchedule, 1)
	require.Equal(t, 540, session.adSchedule[0].StartMinute)
	require.Equal(t, 720, session.adSchedule[0].EndMinute)
}

func TestGoogleSetTargeting(t *testing.T) {
	session := &fakeGoogleSession{}
	a := NewGoogle(session)

	spec := targeting.Spec{
		AgeGroups: []string{"18-24", "65+"},
		Gender:    "FEMALE",
		Locations: []string{"US", "1014044"},
		Interests: []string{"fitness"},
	}
	_, err := a.SetTargeting(context.Background(), domain.EntityCampaign, "c1", spec)
	require.NoError(t, err)
	require.NotNil(t, session.setTargeting)
	require.Equal(t, "GENDER_FEMALE", session.setTargeting.Gender)
	require.Equal(t, []string{"US"}, session.setTargeting.CountryCodes)
	require.Equal(t, []string{"1014044"}, session.setTargeting.GeoTargetIDs)
	require.Equal(t, []targeting.AgeRange{{Min: 18, Max: 24}, {Min: 65, Max: 65}}, session.setTargeting.AgeRanges)
}

func TestGoogleFloors(t *testing.T) {
	a := NewGoogle(&fakeGoogleSession{})
	require.True(t, a.SupportsBudgetRead())
	require.Equal(t, int64(100), a.MinBudgetCents(domain.BudgetDaily))
	require.Equal(t, int64(100), a.MinBudgetCents(domain.BudgetLifetime))
}
