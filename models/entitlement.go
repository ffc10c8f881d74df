// models/entitlement.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Entitlement holds every source of subscription access for one user:
// the persistent base subscription, a 24h day pass, a points-funded temporary
// upgrade and the one-time welcome bonus, plus the reward points wallet.
// One row per user, created at first touch, never deleted — only reset.
type Entitlement struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // profile service UUID

	// Persistent subscription (payment-processor sourced).
	BaseTier          Tier       `gorm:"type:varchar(16);not null;default:'free'" json:"base_tier"`
	BaseTierExpiresAt *time.Time `json:"base_tier_expires_at,omitempty"` // nil = lifetime or free

	// 24-hour day pass. ExpiresAt is always set alongside the tier.
	DayPassTier      *Tier      `gorm:"type:varchar(16)" json:"day_pass_tier,omitempty"`
	DayPassExpiresAt *time.Time `json:"day_pass_expires_at,omitempty"`

	// Temporary upgrade from a reward redemption. OriginalTier is the tier to
	// fall back to when it lapses; captured on the first redemption of a chain
	// and never overwritten while an upgrade is in flight.
	TemporaryTierActive    bool       `gorm:"not null;default:false;index" json:"temporary_tier_active"`
	TemporaryTier          *Tier      `gorm:"type:varchar(16)" json:"temporary_tier,omitempty"`
	TemporaryTierExpiresAt *time.Time `json:"temporary_tier_expires_at,omitempty"`
	OriginalTier           *Tier      `gorm:"type:varchar(16)" json:"original_tier,omitempty"`

	WelcomeBonusClaimed   bool       `gorm:"not null;default:false" json:"welcome_bonus_claimed"`
	WelcomeBonusExpiresAt *time.Time `json:"welcome_bonus_expires_at,omitempty"`

	// Reward points wallet. Balance never exceeds lifetime; lifetime only grows.
	RewardPointsBalance  int64 `gorm:"not null;default:0" json:"reward_points_balance"`
	RewardPointsLifetime int64 `gorm:"not null;default:0" json:"reward_points_lifetime"`

	// CurrentTier is a denormalized cache of the resolved tier, refreshed on
	// every mutation and by the sweeper. Never a source of truth.
	CurrentTier Tier `gorm:"type:varchar(16);not null;default:'free'" json:"current_tier"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WelcomeBonusActive reports whether the welcome bonus is claimed and unexpired.
func (e *Entitlement) WelcomeBonusActive(now time.Time) bool {
	return e.WelcomeBonusClaimed && e.WelcomeBonusExpiresAt != nil && e.WelcomeBonusExpiresAt.After(now)
}
