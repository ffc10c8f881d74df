// services/entitlement_service.go
package services

import (
	"errors"
	"log"
	"time"

	"picks-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DayPassDuration      = 24 * time.Hour
	WelcomeBonusDuration = 7 * 24 * time.Hour
)

var (
	ErrUserNotFound        = errors.New("user entitlement not found")
	ErrInvalidTier         = errors.New("tier must be pro or elite")
	ErrBonusAlreadyClaimed = errors.New("welcome bonus already claimed")
	ErrDataIntegrity       = errors.New("entitlement data integrity violation")
)

type EntitlementService struct {
	DB *gorm.DB
}

func NewEntitlementService(db *gorm.DB) *EntitlementService {
	return &EntitlementService{DB: db}
}

// EnsureEntitlement ensures an Entitlement row exists for the user (idempotent)
func (s *EntitlementService) EnsureEntitlement(externalUserID string) (*models.Entitlement, error) {
	var ent models.Entitlement
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&ent).Error
	if err == gorm.ErrRecordNotFound {
		ent = models.Entitlement{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			BaseTier:       models.TierFree,
			CurrentTier:    models.TierFree,
		}
		if err := s.DB.Create(&ent).Error; err != nil {
			return nil, err
		}
		return &ent, nil
	}
	if err != nil {
		return nil, err
	}
	return &ent, nil
}

// Resolve loads the user's record and computes the effective tier at now.
// Creates the row on first touch so every gated endpoint can call this.
func (s *EntitlementService) Resolve(externalUserID string, now time.Time) (ResolvedTier, *models.Entitlement, error) {
	ent, err := s.EnsureEntitlement(externalUserID)
	if err != nil {
		return ResolvedTier{}, nil, err
	}
	if !EntitlementIntegrityOK(ent) {
		// Fatal data bug: log it loudly, serve the safe floor, fix upstream.
		log.Printf("❌ [ENTITLEMENT] integrity violation for user %s — resolving defensively", externalUserID)
	}
	return ResolveEntitlement(ent, now), ent, nil
}

// ApplySubscriptionEvent records a base-tier change pushed by the payment
// webhook handler, which has already verified the event and mapped the
// product to a tier. expiresAt nil means lifetime. Day-pass and temporary
// state are left untouched; only the base source moves.
func (s *EntitlementService) ApplySubscriptionEvent(externalUserID string, tier models.Tier, expiresAt *time.Time, now time.Time) error {
	if _, err := s.EnsureEntitlement(externalUserID); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var ent models.Entitlement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).
			First(&ent).Error; err != nil {
			return err
		}
		ent.BaseTier = tier
		ent.BaseTierExpiresAt = expiresAt
		ent.CurrentTier = ResolveEntitlement(&ent, now).Tier
		return tx.Save(&ent).Error
	})
}

// GrantDayPass activates a 24-hour tier override from a one-time purchase.
// A repeat purchase resets the window to now+24h; day passes never stack.
func (s *EntitlementService) GrantDayPass(externalUserID string, tier models.Tier, now time.Time) (time.Time, error) {
	if !models.IsUpgradeTier(tier) {
		return time.Time{}, ErrInvalidTier
	}
	if _, err := s.EnsureEntitlement(externalUserID); err != nil {
		return time.Time{}, err
	}
	expiresAt := now.Add(DayPassDuration)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var ent models.Entitlement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).
			First(&ent).Error; err != nil {
			return err
		}
		ent.DayPassTier = &tier
		ent.DayPassExpiresAt = &expiresAt
		ent.CurrentTier = ResolveEntitlement(&ent, now).Tier
		return tx.Save(&ent).Error
	})
	if err != nil {
		return time.Time{}, err
	}
	return expiresAt, nil
}

// ClaimWelcomeBonus is the one-time signup perk: extra daily picks for a
// week. It never changes the resolved tier.
func (s *EntitlementService) ClaimWelcomeBonus(externalUserID string, now time.Time) (time.Time, error) {
	if _, err := s.EnsureEntitlement(externalUserID); err != nil {
		return time.Time{}, err
	}
	expiresAt := now.Add(WelcomeBonusDuration)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var ent models.Entitlement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).
			First(&ent).Error; err != nil {
			return err
		}
		if ent.WelcomeBonusClaimed {
			return ErrBonusAlreadyClaimed
		}
		ent.WelcomeBonusClaimed = true
		ent.WelcomeBonusExpiresAt = &expiresAt
		return tx.Save(&ent).Error
	})
	if err != nil {
		return time.Time{}, err
	}
	return expiresAt, nil
}

// CreditPoints increments the reward points wallet and records the earn event
// in the points ledger. The entitlement core only ever debits; credits arrive
// here from the sync worker and admin grants.
func (s *EntitlementService) CreditPoints(externalUserID string, points int64, reason string, occurredAt time.Time) error {
	if points <= 0 {
		return errors.New("points credit must be positive")
	}
	if _, err := s.EnsureEntitlement(externalUserID); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var ent models.Entitlement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).
			First(&ent).Error; err != nil {
			return err
		}
		ent.RewardPointsBalance += points
		ent.RewardPointsLifetime += points
		if err := tx.Save(&ent).Error; err != nil {
			return err
		}
		event := models.PointsEvent{
			ID:             uuid.NewString(),
			EventID:        "local-" + uuid.NewString(),
			ExternalUserID: externalUserID,
			Points:         points,
			Reason:         reason,
			OccurredAt:     occurredAt,
		}
		return tx.Create(&event).Error
	})
}
