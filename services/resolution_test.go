package services

import (
	"testing"
	"time"

	"picks-backend/models"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func tierPtr(t models.Tier) *models.Tier { return &t }

func freeEntitlement() *models.Entitlement {
	return &models.Entitlement{
		ID:             "ent-1",
		ExternalUserID: "user-1",
		BaseTier:       models.TierFree,
		CurrentTier:    models.TierFree,
	}
}

func TestResolveFreeRecord(t *testing.T) {
	got := ResolveEntitlement(freeEntitlement(), testNow)

	assert.Equal(t, models.TierFree, got.Tier)
	assert.Equal(t, SourceFree, got.Source)
	assert.Nil(t, got.ExpiresAt)
}

func TestResolveBaseSubscription(t *testing.T) {
	ent := freeEntitlement()
	ent.BaseTier = models.TierPro
	ent.BaseTierExpiresAt = timePtr(testNow.Add(30 * 24 * time.Hour))

	got := ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierPro, got.Tier)
	assert.Equal(t, SourceSubscription, got.Source)
	assert.Equal(t, ent.BaseTierExpiresAt, got.ExpiresAt)
}

func TestResolveLifetimeSubscription(t *testing.T) {
	ent := freeEntitlement()
	ent.BaseTier = models.TierElite
	ent.BaseTierExpiresAt = nil // lifetime

	got := ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierElite, got.Tier)
	assert.Equal(t, SourceSubscription, got.Source)
	assert.Nil(t, got.ExpiresAt)
}

func TestResolveDayPassPrecedence(t *testing.T) {
	// base free + active elite day pass resolves to elite regardless of the
	// temporary state.
	ent := freeEntitlement()
	ent.DayPassTier = tierPtr(models.TierElite)
	ent.DayPassExpiresAt = timePtr(testNow.Add(12 * time.Hour))
	ent.TemporaryTierActive = true
	ent.TemporaryTier = tierPtr(models.TierPro)
	ent.TemporaryTierExpiresAt = timePtr(testNow.Add(48 * time.Hour))
	ent.OriginalTier = tierPtr(models.TierFree)

	got := ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierElite, got.Tier)
	assert.Equal(t, SourceDayPass, got.Source)
	assert.Equal(t, ent.DayPassExpiresAt, got.ExpiresAt)
}

func TestResolveExpiryBoundary(t *testing.T) {
	ent := freeEntitlement()
	ent.TemporaryTierActive = true
	ent.TemporaryTier = tierPtr(models.TierPro)
	ent.OriginalTier = tierPtr(models.TierFree)

	// One second in the future: still counts.
	ent.TemporaryTierExpiresAt = timePtr(testNow.Add(1 * time.Second))
	got := ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierPro, got.Tier)
	assert.Equal(t, SourceTemporaryUpgrade, got.Source)

	// Exactly now: expired.
	ent.TemporaryTierExpiresAt = timePtr(testNow)
	got = ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierFree, got.Tier)
	assert.Equal(t, SourceFree, got.Source)

	// One second in the past: expired.
	ent.TemporaryTierExpiresAt = timePtr(testNow.Add(-1 * time.Second))
	got = ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierFree, got.Tier)
}

func TestResolveTieLabelPreference(t *testing.T) {
	// Equal tiers from every source: the label prefers temporary_upgrade,
	// then day_pass, then subscription.
	ent := freeEntitlement()
	ent.BaseTier = models.TierPro
	ent.DayPassTier = tierPtr(models.TierPro)
	ent.DayPassExpiresAt = timePtr(testNow.Add(6 * time.Hour))
	ent.TemporaryTierActive = true
	ent.TemporaryTier = tierPtr(models.TierPro)
	ent.TemporaryTierExpiresAt = timePtr(testNow.Add(2 * time.Hour))
	ent.OriginalTier = tierPtr(models.TierPro)

	got := ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierPro, got.Tier)
	assert.Equal(t, SourceTemporaryUpgrade, got.Source)
	assert.Equal(t, ent.TemporaryTierExpiresAt, got.ExpiresAt)

	ent.TemporaryTierActive = false
	got = ResolveEntitlement(ent, testNow)
	assert.Equal(t, SourceDayPass, got.Source)

	ent.DayPassTier = nil
	ent.DayPassExpiresAt = nil
	got = ResolveEntitlement(ent, testNow)
	assert.Equal(t, SourceSubscription, got.Source)
}

func TestResolveExpiredBaseFallsToFree(t *testing.T) {
	ent := freeEntitlement()
	ent.BaseTier = models.TierElite
	ent.BaseTierExpiresAt = timePtr(testNow.Add(-1 * time.Hour))

	got := ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierFree, got.Tier)
	assert.Equal(t, SourceFree, got.Source)
}

func TestResolveMalformedTemporaryExcluded(t *testing.T) {
	// Active flag without paired fields must never over-grant.
	ent := freeEntitlement()
	ent.TemporaryTierActive = true
	ent.TemporaryTier = nil
	ent.TemporaryTierExpiresAt = timePtr(testNow.Add(1 * time.Hour))

	got := ResolveEntitlement(ent, testNow)
	assert.Equal(t, models.TierFree, got.Tier)
	assert.False(t, EntitlementIntegrityOK(ent))
}

func TestResolveIsDeterministic(t *testing.T) {
	ent := freeEntitlement()
	ent.DayPassTier = tierPtr(models.TierPro)
	ent.DayPassExpiresAt = timePtr(testNow.Add(time.Hour))

	first := ResolveEntitlement(ent, testNow)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ResolveEntitlement(ent, testNow))
	}
}

func TestEntitlementIntegrity(t *testing.T) {
	ent := freeEntitlement()
	assert.True(t, EntitlementIntegrityOK(ent))

	ent.RewardPointsBalance = 10
	ent.RewardPointsLifetime = 5
	assert.False(t, EntitlementIntegrityOK(ent))

	ent = freeEntitlement()
	ent.DayPassTier = tierPtr(models.TierPro)
	assert.False(t, EntitlementIntegrityOK(ent), "day pass tier without expiry")

	ent = freeEntitlement()
	ent.TemporaryTierActive = true
	ent.TemporaryTier = tierPtr(models.TierPro)
	ent.TemporaryTierExpiresAt = timePtr(testNow.Add(time.Hour))
	assert.False(t, EntitlementIntegrityOK(ent), "active upgrade without original tier")

	ent.OriginalTier = tierPtr(models.TierFree)
	assert.True(t, EntitlementIntegrityOK(ent))
}
