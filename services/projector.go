// services/projector.go
package services

import "picks-backend/models"

// WelcomeBonusExtraPicks is added on top of the projected daily limit while
// the welcome bonus is active.
const WelcomeBonusExtraPicks = 2

// TierFeatures is what the rest of the app consumes: the daily pick quota and
// the feature gates for a resolved tier.
type TierFeatures struct {
	DailyPickLimit    int  `json:"daily_pick_limit"`
	ParlaySuggestions bool `json:"parlay_suggestions"`
	PremiumInsights   bool `json:"premium_insights"`
	VideoBreakdowns   bool `json:"video_breakdowns"`
	EliteChat         bool `json:"elite_chat"`
}

// ProjectTier maps a resolved tier to limits and flags. Pure lookup; unknown
// tiers project as free.
func ProjectTier(t models.Tier) TierFeatures {
	switch t {
	case models.TierElite:
		return TierFeatures{
			DailyPickLimit:    15,
			ParlaySuggestions: true,
			PremiumInsights:   true,
			VideoBreakdowns:   true,
			EliteChat:         true,
		}
	case models.TierPro:
		return TierFeatures{
			DailyPickLimit:    10,
			ParlaySuggestions: true,
			PremiumInsights:   true,
		}
	default:
		return TierFeatures{DailyPickLimit: 2}
	}
}
