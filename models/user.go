package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// AppUser is a local snapshot of user profile data needed for pick serving.
// Owned and managed solely by this service; populated via sync worker from
// the profile service's user table.
type AppUser struct {
	ID                string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID    string     `gorm:"uniqueIndex;not null" json:"external_user_id"` // profile service UUID
	Username          string     `gorm:"index;not null" json:"username"`
	Email             string     `json:"email,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	PreferredSports   string     `gorm:"type:text" json:"preferred_sports"` // comma-separated, e.g. "nba,nfl"
	LastSeen          *time.Time `json:"last_seen,omitempty"`
	IsBanned          bool       `json:"is_banned" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SportList splits PreferredSports into normalized sport keys.
func (u *AppUser) SportList() []string {
	var sports []string
	for _, s := range strings.Split(u.PreferredSports, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			sports = append(sports, s)
		}
	}
	return sports
}
