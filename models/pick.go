// models/pick.go
package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PickStatusDraft     = "draft"
	PickStatusScheduled = "scheduled"
	PickStatusPublished = "published"
	PickStatusSettled   = "settled"
)

// Pick is a generated betting pick served to users through their daily quota.
// Generation happens upstream; this service only stores and serves them.
type Pick struct {
	ID         string  `json:"id" gorm:"primaryKey"`
	Sport      string  `json:"sport" gorm:"index;not null"` // e.g. "nba", "nfl", "mlb"
	Matchup    string  `json:"matchup" gorm:"not null"`
	Market     string  `json:"market"` // spread | moneyline | total | prop
	Selection  string  `json:"selection" gorm:"not null"`
	Odds       string  `json:"odds"`
	Confidence float64 `json:"confidence" gorm:"index"` // 0..1
	Analysis   string  `json:"analysis" gorm:"type:text"`
	IsPremium  bool    `json:"is_premium" gorm:"default:false"` // only surfaced with premium insights

	Status    string     `json:"status" gorm:"default:'draft';index"` // draft | scheduled | published | settled
	PublishAt *time.Time `json:"publish_at"`
	GameTime  *time.Time `json:"game_time"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
