// services/reward_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"picks-backend/models"
	"picks-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRewardNotFound = errors.New("reward not found")

// InsufficientPointsError carries what the caller needs to render a
// user-facing message: cost vs. what the user actually holds.
type InsufficientPointsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: need %d, have %d", e.Required, e.Available)
}

type RewardService struct {
	DB *gorm.DB
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{DB: db}
}

// applyRedemption mutates the entitlement in memory for one redemption and
// builds the claim row. Callers persist both inside a single transaction, so
// a failure here leaves the stored record untouched.
//
// Temporary-upgrade stacking: an active upgrade of tier >= the reward's tier
// is extended additively (expiry += duration, tier kept — redeeming pro while
// elite never downgrades). Otherwise the reward's tier takes over with a
// fresh now+duration window, and OriginalTier is captured only when no
// upgrade was in flight, so a chain of redemptions reverts to the true
// pre-upgrade base.
func applyRedemption(ent *models.Entitlement, item *models.RewardCatalogItem, now time.Time) (*models.RewardClaim, error) {
	if ent.RewardPointsBalance < item.PointsCost {
		return nil, &InsufficientPointsError{Required: item.PointsCost, Available: ent.RewardPointsBalance}
	}

	claim := &models.RewardClaim{
		ID:             uuid.NewString(),
		ExternalUserID: ent.ExternalUserID,
		RewardID:       item.ID,
		PointsSpent:    item.PointsCost,
		ClaimedAt:      now,
		IsActive:       true,
	}

	if item.Type == models.RewardTypeTemporaryUpgrade {
		if item.UpgradeTier == nil || !models.IsUpgradeTier(*item.UpgradeTier) || item.DurationHours <= 0 {
			return nil, ErrDataIntegrity
		}
		duration := time.Duration(item.DurationHours) * time.Hour

		upgradeActive := ent.TemporaryTierActive &&
			ent.TemporaryTier != nil &&
			ent.TemporaryTierExpiresAt != nil &&
			ent.TemporaryTierExpiresAt.After(now)

		var expiresAt time.Time
		switch {
		case upgradeActive && models.TierRank(*ent.TemporaryTier) >= models.TierRank(*item.UpgradeTier):
			// Extend, never replace: keep the higher tier, push the window out.
			expiresAt = ent.TemporaryTierExpiresAt.Add(duration)
			ent.TemporaryTierExpiresAt = &expiresAt
		default:
			if !upgradeActive {
				original := ent.BaseTier
				ent.OriginalTier = &original
			}
			// else: a lower-tier upgrade was in flight — OriginalTier stays.
			tier := *item.UpgradeTier
			expiresAt = now.Add(duration)
			ent.TemporaryTier = &tier
			ent.TemporaryTierExpiresAt = &expiresAt
			ent.TemporaryTierActive = true
		}

		// Redemption supersedes the welcome bonus.
		ent.WelcomeBonusExpiresAt = nil

		claim.ExpiresAt = &expiresAt
		claim.OriginalTier = ent.OriginalTier
	}

	ent.RewardPointsBalance -= item.PointsCost
	ent.CurrentTier = ResolveEntitlement(ent, now).Tier
	return claim, nil
}

// Redeem spends points for a catalog entry and applies its effect. The whole
// read/modify/write runs as one transaction with the user's row locked, so a
// concurrent base-tier webhook or sweep cannot interleave a half-applied
// record, and any failure rolls everything back.
func (s *RewardService) Redeem(externalUserID, rewardID string, now time.Time) (*models.RewardClaim, ResolvedTier, error) {
	var claim *models.RewardClaim
	var ent models.Entitlement

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.RewardCatalogItem
		if err := tx.Where("id = ? AND is_active = ?", rewardID, true).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_user_id = ?", externalUserID).
			First(&ent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		c, err := applyRedemption(&ent, &item, now)
		if err != nil {
			return err
		}
		claim = c

		if err := tx.Create(claim).Error; err != nil {
			return err
		}
		return tx.Save(&ent).Error
	})
	if err != nil {
		return nil, ResolvedTier{}, err
	}
	return claim, ResolveEntitlement(&ent, now), nil
}

// --- Fiber handlers ---

// GetCatalog returns active catalog entries for the rewards screen
func (s *RewardService) GetCatalog(c *fiber.Ctx) error {
	var items []models.RewardCatalogItem
	if err := s.DB.Where("is_active = ?", true).Order("points_cost ASC").Find(&items).Error; err != nil {
		log.Printf("DB Error fetching reward catalog: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch catalog"})
	}
	return c.JSON(items)
}

// RedeemReward handles POST /user/rewards/redeem for the authenticated user
func (s *RewardService) RedeemReward(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		RewardID string `json:"reward_id" validate:"required,uuid"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if _, err := uuid.Parse(req.RewardID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	}

	claim, resolved, err := s.Redeem(userID, req.RewardID, time.Now().UTC())
	if err != nil {
		var insufficient *InsufficientPointsError
		switch {
		case errors.As(err, &insufficient):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error":            "Not enough points",
				"points_required":  insufficient.Required,
				"points_available": insufficient.Available,
			})
		case errors.Is(err, ErrRewardNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reward not found"})
		case errors.Is(err, ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		case errors.Is(err, ErrDataIntegrity):
			log.Printf("❌ [REWARDS] catalog integrity violation on reward %s", req.RewardID)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Reward is misconfigured"})
		default:
			log.Printf("DB Error redeeming reward: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to redeem reward"})
		}
	}

	return c.JSON(fiber.Map{
		"message":    "Reward redeemed successfully",
		"claim":      claim,
		"tier":       resolved.Tier,
		"source":     resolved.Source,
		"expires_at": resolved.ExpiresAt,
	})
}

// GetUserClaims lists the authenticated user's redemption ledger, newest first
func (s *RewardService) GetUserClaims(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.DB.Where("external_user_id = ?", userID)
	if activeStr := strings.ToLower(c.Query("active")); activeStr == "true" || activeStr == "false" {
		query = query.Where("is_active = ?", activeStr == "true")
	}

	var claims []models.RewardClaim
	if err := query.Order("claimed_at DESC").Limit(limit).Find(&claims).Error; err != nil {
		log.Printf("DB Error fetching user claims: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch claims"})
	}
	return c.JSON(claims)
}

// --- Admin Handlers ---

// CreateCatalogItem creates a new reward catalog entry (Admin only)
func (s *RewardService) CreateCatalogItem(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}

	rewardType := models.RewardType(c.FormValue("type"))
	if rewardType != models.RewardTypeTemporaryUpgrade && rewardType != models.RewardTypeOther {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward type"})
	}

	pointsCost, err := strconv.ParseInt(c.FormValue("points_cost"), 10, 64)
	if err != nil || pointsCost <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "points_cost must be a positive integer"})
	}

	item := models.RewardCatalogItem{
		ID:         uuid.NewString(),
		Title:      title,
		Type:       rewardType,
		Excerpt:    c.FormValue("excerpt"),
		PointsCost: pointsCost,
		IsActive:   true,
	}

	if rewardType == models.RewardTypeTemporaryUpgrade {
		tier := models.ParseTier(c.FormValue("upgrade_tier"))
		if !models.IsUpgradeTier(tier) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "upgrade_tier must be pro or elite"})
		}
		hours, err := strconv.Atoi(c.FormValue("duration_hours"))
		if err != nil || hours <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_hours must be a positive integer"})
		}
		item.UpgradeTier = &tier
		item.DurationHours = hours
	}

	item.Slug = slug.Make(title)
	var existing models.RewardCatalogItem
	if err := s.DB.Where("slug = ?", item.Slug).First(&existing).Error; err == nil {
		item.Slug = item.Slug + "-" + item.ID[:8]
	}

	if artFile, err := c.FormFile("artwork"); err == nil && artFile.Size > 0 {
		artKey := "rewards/" + uuid.NewString() + filepath.Ext(artFile.Filename)
		artURL, err := utils.UploadFileToR2(artFile, artKey)
		if err != nil {
			log.Printf("R2 upload failed for reward artwork: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload artwork"})
		}
		item.ImageURL = artURL
	}

	if err := s.DB.Create(&item).Error; err != nil {
		log.Printf("DB Error creating catalog item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create catalog item"})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateCatalogItem updates an existing catalog entry (Admin only)
func (s *RewardService) UpdateCatalogItem(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	}

	var item models.RewardCatalogItem
	if err := s.DB.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reward not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Title         *string `json:"title"`
		Excerpt       *string `json:"excerpt"`
		PointsCost    *int64  `json:"points_cost"`
		UpgradeTier   *string `json:"upgrade_tier"`
		DurationHours *int    `json:"duration_hours"`
		IsActive      *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Excerpt != nil {
		item.Excerpt = *req.Excerpt
	}
	if req.PointsCost != nil {
		if *req.PointsCost <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "points_cost must be positive"})
		}
		item.PointsCost = *req.PointsCost
	}
	if req.UpgradeTier != nil {
		tier := models.ParseTier(*req.UpgradeTier)
		if !models.IsUpgradeTier(tier) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "upgrade_tier must be pro or elite"})
		}
		item.UpgradeTier = &tier
	}
	if req.DurationHours != nil {
		if *req.DurationHours <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_hours must be positive"})
		}
		item.DurationHours = *req.DurationHours
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.DB.Save(&item).Error; err != nil {
		log.Printf("DB Error updating catalog item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update catalog item"})
	}
	return c.JSON(item)
}

// DeactivateCatalogItem pulls an entry from the catalog without touching the
// claim ledger (Admin only)
func (s *RewardService) DeactivateCatalogItem(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	}

	result := s.DB.Model(&models.RewardCatalogItem{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		log.Printf("DB Error deactivating catalog item: %v", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate catalog item"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reward not found"})
	}
	return c.JSON(fiber.Map{"message": "Catalog item deactivated"})
}
