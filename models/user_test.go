package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSportList(t *testing.T) {
	u := AppUser{PreferredSports: "NBA, nfl ,mlb"}
	assert.Equal(t, []string{"nba", "nfl", "mlb"}, u.SportList())

	u.PreferredSports = ""
	assert.Nil(t, u.SportList())

	u.PreferredSports = " , ,"
	assert.Nil(t, u.SportList())
}

func TestWelcomeBonusActive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var ent Entitlement
	assert.False(t, ent.WelcomeBonusActive(now))

	expires := now.Add(time.Hour)
	ent.WelcomeBonusClaimed = true
	ent.WelcomeBonusExpiresAt = &expires
	assert.True(t, ent.WelcomeBonusActive(now))

	// Cleared expiry (after a redemption) means inactive even if claimed.
	ent.WelcomeBonusExpiresAt = nil
	assert.False(t, ent.WelcomeBonusActive(now))

	expired := now.Add(-time.Hour)
	ent.WelcomeBonusExpiresAt = &expired
	assert.False(t, ent.WelcomeBonusActive(now))
}
