package services

import (
	"errors"
	"testing"
	"time"

	"picks-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upgradeItem(tier models.Tier, hours int, cost int64) *models.RewardCatalogItem {
	return &models.RewardCatalogItem{
		ID:            "reward-" + string(tier),
		Title:         "Temporary Upgrade",
		Type:          models.RewardTypeTemporaryUpgrade,
		PointsCost:    cost,
		UpgradeTier:   &tier,
		DurationHours: hours,
		IsActive:      true,
	}
}

func TestRedeemInsufficientPointsLeavesRecordUntouched(t *testing.T) {
	ent := freeEntitlement()
	ent.RewardPointsBalance = 100
	ent.RewardPointsLifetime = 100
	before := *ent

	claim, err := applyRedemption(ent, upgradeItem(models.TierPro, 72, 125), testNow)

	require.Error(t, err)
	assert.Nil(t, claim)

	var insufficient *InsufficientPointsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(125), insufficient.Required)
	assert.Equal(t, int64(100), insufficient.Available)

	// Byte-for-byte as before the call.
	assert.Equal(t, before, *ent)
}

func TestRedeemThreeDayProScenario(t *testing.T) {
	// free user, 150 points, redeems a 125-point "3 Day Pro Access" reward.
	ent := freeEntitlement()
	ent.RewardPointsBalance = 150
	ent.RewardPointsLifetime = 150

	t0 := testNow
	claim, err := applyRedemption(ent, upgradeItem(models.TierPro, 72, 125), t0)
	require.NoError(t, err)
	require.NotNil(t, claim)

	assert.Equal(t, int64(25), ent.RewardPointsBalance)
	assert.True(t, ent.TemporaryTierActive)
	require.NotNil(t, ent.TemporaryTier)
	assert.Equal(t, models.TierPro, *ent.TemporaryTier)
	require.NotNil(t, ent.TemporaryTierExpiresAt)
	assert.Equal(t, t0.Add(72*time.Hour), *ent.TemporaryTierExpiresAt)
	require.NotNil(t, ent.OriginalTier)
	assert.Equal(t, models.TierFree, *ent.OriginalTier)

	assert.Equal(t, int64(125), claim.PointsSpent)
	assert.True(t, claim.IsActive)
	require.NotNil(t, claim.ExpiresAt)
	assert.Equal(t, t0.Add(72*time.Hour), *claim.ExpiresAt)

	// An hour in: pro via temporary upgrade.
	resolved := ResolveEntitlement(ent, t0.Add(1*time.Hour))
	assert.Equal(t, models.TierPro, resolved.Tier)
	assert.Equal(t, SourceTemporaryUpgrade, resolved.Source)
	assert.Equal(t, t0.Add(72*time.Hour), *resolved.ExpiresAt)

	// At t0+73h: back to free.
	resolved = ResolveEntitlement(ent, t0.Add(73*time.Hour))
	assert.Equal(t, models.TierFree, resolved.Tier)
	assert.Equal(t, SourceFree, resolved.Source)
	assert.Nil(t, resolved.ExpiresAt)
}

func TestRedeemStackingNeverDowngrades(t *testing.T) {
	// base pro, active elite upgrade expiring in 2 hours; redeeming a pro
	// reward extends the elite window by 24 hours instead of downgrading.
	ent := freeEntitlement()
	ent.BaseTier = models.TierPro
	ent.RewardPointsBalance = 500
	ent.RewardPointsLifetime = 500
	ent.TemporaryTierActive = true
	ent.TemporaryTier = tierPtr(models.TierElite)
	priorExpiry := testNow.Add(2 * time.Hour)
	ent.TemporaryTierExpiresAt = &priorExpiry
	ent.OriginalTier = tierPtr(models.TierPro)

	claim, err := applyRedemption(ent, upgradeItem(models.TierPro, 24, 100), testNow)
	require.NoError(t, err)

	assert.Equal(t, models.TierElite, *ent.TemporaryTier, "tier must not downgrade")
	assert.Equal(t, priorExpiry.Add(24*time.Hour), *ent.TemporaryTierExpiresAt,
		"expiry extends from the prior value, not from now")
	assert.Equal(t, models.TierPro, *ent.OriginalTier, "original tier preserved")
	assert.Equal(t, priorExpiry.Add(24*time.Hour), *claim.ExpiresAt)
}

func TestRedeemHigherTierReplacesButKeepsOriginal(t *testing.T) {
	// pro upgrade in flight over a free base; an elite redemption takes over
	// with a fresh window, and the chain still reverts to free.
	ent := freeEntitlement()
	ent.RewardPointsBalance = 1000
	ent.RewardPointsLifetime = 1000

	_, err := applyRedemption(ent, upgradeItem(models.TierPro, 48, 100), testNow)
	require.NoError(t, err)
	require.Equal(t, models.TierFree, *ent.OriginalTier)

	later := testNow.Add(1 * time.Hour)
	_, err = applyRedemption(ent, upgradeItem(models.TierElite, 24, 300), later)
	require.NoError(t, err)

	assert.Equal(t, models.TierElite, *ent.TemporaryTier)
	assert.Equal(t, later.Add(24*time.Hour), *ent.TemporaryTierExpiresAt)
	assert.Equal(t, models.TierFree, *ent.OriginalTier,
		"original tier is the true pre-upgrade base, not the intermediate pro")
	assert.Equal(t, int64(600), ent.RewardPointsBalance)
}

func TestRedeemExtensionAfterLapseStartsFresh(t *testing.T) {
	// A lapsed upgrade is not extended: a new redemption opens a fresh window
	// and re-captures the base tier.
	ent := freeEntitlement()
	ent.BaseTier = models.TierPro
	ent.RewardPointsBalance = 200
	ent.RewardPointsLifetime = 200
	ent.TemporaryTierActive = true
	ent.TemporaryTier = tierPtr(models.TierElite)
	ent.TemporaryTierExpiresAt = timePtr(testNow.Add(-1 * time.Minute))
	ent.OriginalTier = tierPtr(models.TierFree)

	_, err := applyRedemption(ent, upgradeItem(models.TierPro, 24, 100), testNow)
	require.NoError(t, err)

	assert.Equal(t, models.TierPro, *ent.TemporaryTier)
	assert.Equal(t, testNow.Add(24*time.Hour), *ent.TemporaryTierExpiresAt)
	assert.Equal(t, models.TierPro, *ent.OriginalTier, "base re-captured after lapse")
}

func TestRedeemOtherRewardChangesNoTier(t *testing.T) {
	ent := freeEntitlement()
	ent.RewardPointsBalance = 50
	ent.RewardPointsLifetime = 50

	item := &models.RewardCatalogItem{
		ID:         "reward-merch",
		Title:      "Team Hat",
		Type:       models.RewardTypeOther,
		PointsCost: 40,
		IsActive:   true,
	}

	claim, err := applyRedemption(ent, item, testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(10), ent.RewardPointsBalance)
	assert.False(t, ent.TemporaryTierActive)
	assert.Nil(t, ent.TemporaryTier)
	assert.Nil(t, claim.ExpiresAt)
	assert.Nil(t, claim.OriginalTier)
	assert.Equal(t, models.TierFree, ResolveEntitlement(ent, testNow).Tier)
}

func TestRedeemClearsWelcomeBonus(t *testing.T) {
	ent := freeEntitlement()
	ent.RewardPointsBalance = 200
	ent.RewardPointsLifetime = 200
	ent.WelcomeBonusClaimed = true
	ent.WelcomeBonusExpiresAt = timePtr(testNow.Add(48 * time.Hour))

	_, err := applyRedemption(ent, upgradeItem(models.TierPro, 24, 100), testNow)
	require.NoError(t, err)

	assert.False(t, ent.WelcomeBonusActive(testNow), "redemption supersedes the bonus")
	assert.True(t, ent.WelcomeBonusClaimed, "claimed flag stays — the bonus is one-time")
}

func TestRedeemMisconfiguredUpgradeReward(t *testing.T) {
	ent := freeEntitlement()
	ent.RewardPointsBalance = 200
	ent.RewardPointsLifetime = 200
	before := *ent

	item := upgradeItem(models.TierPro, 24, 100)
	item.UpgradeTier = nil

	_, err := applyRedemption(ent, item, testNow)
	assert.ErrorIs(t, err, ErrDataIntegrity)
	assert.Equal(t, before, *ent)
}

func TestRedeemUpdatesTierCache(t *testing.T) {
	ent := freeEntitlement()
	ent.RewardPointsBalance = 200
	ent.RewardPointsLifetime = 200

	_, err := applyRedemption(ent, upgradeItem(models.TierElite, 24, 150), testNow)
	require.NoError(t, err)
	assert.Equal(t, models.TierElite, ent.CurrentTier)
}
