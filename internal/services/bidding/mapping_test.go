package bidding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adkite/adkite/internal/domain"
)

func TestBidStrategyNativePassThrough(t *testing.T) {
	native, err := BidStrategy(domain.PlatformGoogle, "TARGET_CPA")
	require.NoError(t, err)
	require.Equal(t, "TARGET_CPA", native)

	native, err = BidStrategy(domain.PlatformFacebook, "COST_CAP")
	require.NoError(t, err)
	require.Equal(t, "COST_CAP", native)

	native, err = BidStrategy(domain.PlatformTikTok, "BID_TYPE_NO_BID")
	require.NoError(t, err)
	require.Equal(t, "BID_TYPE_NO_BID", native)
}

func TestBidStrategyAliases(t *testing.T) {
	cases := []struct {
		platform domain.Platform
		generic  string
		want     string
	}{
		{domain.PlatformGoogle, "LOWEST_COST", "MAXIMIZE_CONVERSIONS"},
		{domain.PlatformGoogle, "COST_CAP", "TARGET_CPA"},
		{domain.PlatformFacebook, "LOWEST_COST", "LOWEST_COST_WITHOUT_CAP"},
		{domain.PlatformFacebook, "TARGET_ROAS", "LOWEST_COST_WITH_MIN_ROAS"},
		{domain.PlatformTikTok, "LOWEST_COST", "BID_TYPE_NO_BID"},
		{domain.PlatformTikTok, "TARGET_CPA", "BID_TYPE_CUSTOM"},
	}
	for _, c := range cases {
		native, err := BidStrategy(c.platform, c.generic)
		require.NoError(t, err, "%s/%s", c.platform, c.generic)
		require.Equal(t, c.want, native)
	}
}

func TestBidStrategyCaseInsensitive(t *testing.T) {
	native, err := BidStrategy(domain.PlatformGoogle, " target_roas ")
	require.NoError(t, err)
	require.Equal(t, "TARGET_ROAS", native)
}

func TestBidStrategyUnknownListsNativeValues(t *testing.T) {
	_, err := BidStrategy(domain.PlatformGoogle, "SMART_BIDDING")
	require.Error(t, err)
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
	require.Contains(t, err.Error(), "SMART_BIDDING")
	require.Contains(t, err.Error(), "TARGET_CPA")
	require.Contains(t, err.Error(), "MAXIMIZE_CONVERSIONS")
	require.Contains(t, err.Error(), "MANUAL_CPC")
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		platform domain.Platform
		generic  string
		want     string
	}{
		{domain.PlatformGoogle, "PAUSED", "PAUSED"},
		{domain.PlatformGoogle, "ACTIVE", "ENABLED"},
		{domain.PlatformFacebook, "ENABLED", "ACTIVE"},
		{domain.PlatformFacebook, "REMOVED", "DELETED"},
		{domain.PlatformTikTok, "ENABLED", "ENABLE"},
		{domain.PlatformTikTok, "PAUSED", "DISABLE"},
	}
	for _, c := range cases {
		native, err := Status(c.platform, c.generic)
		require.NoError(t, err, "%s/%s", c.platform, c.generic)
		require.Equal(t, c.want, native)
	}
}

func TestStatusUnknownFailsHard(t *testing.T) {
	_, err := Status(domain.PlatformTikTok, "ARCHIVED")
	require.Error(t, err)
	require.True(t, domain.HasCode(err, domain.ErrCodeValidation))
	require.Contains(t, err.Error(), "ARCHIVED")
	require.Contains(t, err.Error(), "ENABLE")
	require.Contains(t, err.Error(), "DISABLE")
}

func TestUnknownPlatform(t *testing.T) {
	_, err := BidStrategy(domain.Platform("linkedin"), "LOWEST_COST")
	require.True(t, domain.HasCode(err, domain.ErrCodeUnsupported))

	_, err = Status(domain.Platform("linkedin"), "PAUSED")
	require.True(t, domain.HasCode(err, domain.ErrCodeUnsupported))
}
