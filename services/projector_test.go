package services

import (
	"testing"

	"picks-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestProjectTierLimits(t *testing.T) {
	tests := []struct {
		tier  models.Tier
		limit int
	}{
		{models.TierFree, 2},
		{models.TierPro, 10},
		{models.TierElite, 15},
		{models.Tier("unknown"), 2},
	}

	for _, tt := range tests {
		got := ProjectTier(tt.tier)
		assert.Equal(t, tt.limit, got.DailyPickLimit, "tier %q", tt.tier)
	}
}

func TestProjectTierFlags(t *testing.T) {
	free := ProjectTier(models.TierFree)
	assert.False(t, free.ParlaySuggestions)
	assert.False(t, free.PremiumInsights)
	assert.False(t, free.VideoBreakdowns)
	assert.False(t, free.EliteChat)

	pro := ProjectTier(models.TierPro)
	assert.True(t, pro.ParlaySuggestions)
	assert.True(t, pro.PremiumInsights)
	assert.False(t, pro.VideoBreakdowns)
	assert.False(t, pro.EliteChat)

	elite := ProjectTier(models.TierElite)
	assert.True(t, elite.ParlaySuggestions)
	assert.True(t, elite.PremiumInsights)
	assert.True(t, elite.VideoBreakdowns)
	assert.True(t, elite.EliteChat)
}
