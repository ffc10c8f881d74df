// services/sweeper.go
package services

import (
	"log"
	"time"

	"picks-backend/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// temporaryLapsed reports whether a temporary upgrade is in flight and its
// window has closed. An expiry exactly equal to now counts as lapsed.
func temporaryLapsed(ent *models.Entitlement, now time.Time) bool {
	return ent.TemporaryTierActive &&
		ent.TemporaryTierExpiresAt != nil &&
		!ent.TemporaryTierExpiresAt.After(now)
}

// revertTemporary clears the lapsed upgrade. Resolution falls through to the
// base tier on its own; only the denormalized cache needs the explicit reset.
func revertTemporary(ent *models.Entitlement, now time.Time) {
	ent.TemporaryTierActive = false
	ent.TemporaryTier = nil
	ent.TemporaryTierExpiresAt = nil
	ent.OriginalTier = nil
	ent.CurrentTier = ResolveEntitlement(ent, now).Tier
}

func (s *EntitlementService) StartExpirySweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: revert lapsed temporary upgrades and fix stale caches
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			reverted, err := s.SweepExpired(time.Now().UTC())
			if err != nil {
				log.Printf("[Sweeper] scan error: %v", err)
				return
			}
			if reverted > 0 {
				log.Printf("✅ [Sweeper] reverted %d lapsed temporary upgrade(s)", reverted)
			}
		}),
	)
}

// SweepExpired reverts every user whose temporary upgrade has lapsed and
// deactivates their expired claim rows, then corrects the cached tier for
// lapsed day passes. Each user is an independent transaction: one failure is
// logged and retried on the next pass, since the condition (active && expired)
// is re-evaluated fresh every time. Safe to run concurrently with redemptions:
// the expiry is re-read under lock, so a just-extended upgrade is skipped.
func (s *EntitlementService) SweepExpired(now time.Time) (int, error) {
	var userIDs []string
	err := s.DB.Model(&models.Entitlement{}).
		Where("temporary_tier_active = ? AND temporary_tier_expires_at <= ?", true, now).
		Pluck("external_user_id", &userIDs).Error
	if err != nil {
		return 0, err
	}

	reverted := 0
	for _, userID := range userIDs {
		didRevert := false
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			var ent models.Entitlement
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("external_user_id = ?", userID).
				First(&ent).Error; err != nil {
				return err
			}

			// Re-check under lock: a redemption may have extended the window
			// between the scan and this revert.
			if !temporaryLapsed(&ent, now) {
				return nil
			}

			revertTemporary(&ent, now)
			if err := tx.Save(&ent).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.RewardClaim{}).
				Where("external_user_id = ? AND is_active = ? AND expires_at <= ?", userID, true, now).
				Update("is_active", false).Error; err != nil {
				return err
			}

			didRevert = true
			return nil
		})
		if err != nil {
			log.Printf("[Sweeper] Failed to revert user %s: %v", userID, err)
			continue
		}
		if didRevert {
			reverted++
		}
	}

	if err := s.sweepDayPasses(now); err != nil {
		log.Printf("[Sweeper] day pass cleanup error: %v", err)
	}

	return reverted, nil
}

// sweepDayPasses clears lapsed day passes. Resolution already excludes them,
// so this only keeps rows from being rescanned and corrects CurrentTier.
func (s *EntitlementService) sweepDayPasses(now time.Time) error {
	var userIDs []string
	err := s.DB.Model(&models.Entitlement{}).
		Where("day_pass_tier IS NOT NULL AND day_pass_expires_at <= ?", now).
		Pluck("external_user_id", &userIDs).Error
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			var ent models.Entitlement
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("external_user_id = ?", userID).
				First(&ent).Error; err != nil {
				return err
			}
			if ent.DayPassExpiresAt == nil || ent.DayPassExpiresAt.After(now) {
				return nil
			}
			ent.DayPassTier = nil
			ent.DayPassExpiresAt = nil
			ent.CurrentTier = ResolveEntitlement(&ent, now).Tier
			return tx.Save(&ent).Error
		})
		if err != nil {
			log.Printf("[Sweeper] Failed to clear day pass for user %s: %v", userID, err)
		}
	}
	return nil
}
