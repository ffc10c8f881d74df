// services/resolution.go
package services

import (
	"time"

	"picks-backend/models"
)

// TierSource labels which entitlement source produced the effective tier.
type TierSource string

const (
	SourceSubscription     TierSource = "subscription"
	SourceDayPass          TierSource = "day_pass"
	SourceTemporaryUpgrade TierSource = "temporary_upgrade"
	SourceFree             TierSource = "free"
)

// ResolvedTier is the single effective tier for a user at one instant.
type ResolvedTier struct {
	Tier      models.Tier `json:"tier"`
	Source    TierSource  `json:"source"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

type tierCandidate struct {
	tier      models.Tier
	source    TierSource
	expiresAt *time.Time
}

// ResolveEntitlement computes the effective tier from the stored record.
// Pure function of the record and now: expired sources are excluded before
// comparison, then the highest valid tier wins. Equal tiers prefer the label
// temporary_upgrade > day_pass > subscription. An expiry exactly equal to now
// counts as expired. A malformed temporary candidate (active flag without its
// paired fields) is excluded rather than guessed at, so a broken row can only
// under-grant.
func ResolveEntitlement(ent *models.Entitlement, now time.Time) ResolvedTier {
	// Candidates in label-precedence order.
	var candidates []tierCandidate

	if ent.TemporaryTierActive &&
		ent.TemporaryTier != nil &&
		ent.TemporaryTierExpiresAt != nil &&
		ent.TemporaryTierExpiresAt.After(now) {
		candidates = append(candidates, tierCandidate{
			tier:      *ent.TemporaryTier,
			source:    SourceTemporaryUpgrade,
			expiresAt: ent.TemporaryTierExpiresAt,
		})
	}

	if ent.DayPassTier != nil &&
		ent.DayPassExpiresAt != nil &&
		ent.DayPassExpiresAt.After(now) {
		candidates = append(candidates, tierCandidate{
			tier:      *ent.DayPassTier,
			source:    SourceDayPass,
			expiresAt: ent.DayPassExpiresAt,
		})
	}

	if ent.BaseTierExpiresAt == nil || ent.BaseTierExpiresAt.After(now) {
		candidates = append(candidates, tierCandidate{
			tier:      ent.BaseTier,
			source:    SourceSubscription,
			expiresAt: ent.BaseTierExpiresAt,
		})
	}

	best := ResolvedTier{Tier: models.TierFree, Source: SourceFree}
	bestRank := -1
	for _, c := range candidates {
		// Strictly greater keeps the earlier (higher-precedence) label on ties.
		if r := models.TierRank(c.tier); r > bestRank {
			best = ResolvedTier{Tier: c.tier, Source: c.source, ExpiresAt: c.expiresAt}
			bestRank = r
		}
	}

	if best.Tier == models.TierFree {
		// No valid candidate, or everything valid is free.
		return ResolvedTier{Tier: models.TierFree, Source: SourceFree}
	}
	return best
}

// EntitlementIntegrityOK checks the record invariants: paired temporary
// fields, paired day-pass fields, balance never above lifetime. Violations
// are logged by the caller as data-integrity bugs, never repaired silently.
func EntitlementIntegrityOK(ent *models.Entitlement) bool {
	if ent.TemporaryTierActive {
		if ent.TemporaryTier == nil || ent.TemporaryTierExpiresAt == nil || ent.OriginalTier == nil {
			return false
		}
		if !models.IsUpgradeTier(*ent.TemporaryTier) {
			return false
		}
	}
	if ent.DayPassTier != nil && ent.DayPassExpiresAt == nil {
		return false
	}
	if ent.DayPassTier != nil && !models.IsUpgradeTier(*ent.DayPassTier) {
		return false
	}
	if ent.RewardPointsBalance < 0 || ent.RewardPointsBalance > ent.RewardPointsLifetime {
		return false
	}
	return true
}
