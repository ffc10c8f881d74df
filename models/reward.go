// models/reward.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// RewardType indicates what redeeming the reward grants
type RewardType string

const (
	RewardTypeTemporaryUpgrade RewardType = "temporary_upgrade"
	RewardTypeOther            RewardType = "other" // merch, shoutouts, etc. — no tier change
)

// RewardCatalogItem is a points-purchasable entry in the rewards catalog.
// PointsCost on the catalog row is authoritative; there is no shadow price
// table anywhere else.
type RewardCatalogItem struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	Title      string     `gorm:"not null" json:"title"`
	Slug       string     `gorm:"uniqueIndex;not null" json:"slug"`
	Type       RewardType `gorm:"not null" json:"type"`
	ImageURL   string     `gorm:"type:text" json:"image_url"`
	Excerpt    string     `gorm:"type:text" json:"excerpt"`
	PointsCost int64      `gorm:"not null" json:"points_cost"`

	// Set only for temporary_upgrade rewards.
	UpgradeTier   *Tier `gorm:"type:varchar(16)" json:"upgrade_tier,omitempty"`
	DurationHours int   `json:"duration_hours"`

	IsActive  bool           `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RewardClaim is the append-only redemption ledger: one row per redemption,
// created atomically with the points debit. The expiry sweeper flips IsActive
// off once ExpiresAt has passed.
type RewardClaim struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string     `gorm:"index;not null" json:"external_user_id"`
	RewardID       string     `gorm:"index;not null" json:"reward_id"`
	PointsSpent    int64      `gorm:"not null" json:"points_spent"`
	ClaimedAt      time.Time  `gorm:"not null" json:"claimed_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	OriginalTier   *Tier      `gorm:"type:varchar(16)" json:"original_tier,omitempty"`
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
