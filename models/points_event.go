// models/points_event.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// PointsEvent mirrors a points-earning event from the rewards-earning service
// (referrals, shares, streaks). EventID is the upstream identifier and the
// dedupe key: a row is inserted at most once, and the balance credit happens
// in the same transaction as the insert.
// Table name: points_events
type PointsEvent struct {
	ID             string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	EventID        string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"event_id"`
	ExternalUserID string    `gorm:"type:uuid;not null;index" json:"external_user_id"`
	Points         int64     `gorm:"not null" json:"points"`
	Reason         string    `gorm:"type:varchar(64);not null" json:"reason"` // referral | share | streak | admin_grant
	OccurredAt     time.Time `gorm:"not null" json:"occurred_at"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index"`
}
