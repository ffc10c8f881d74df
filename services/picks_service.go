// services/picks_service.go
package services

import (
	"errors"
	"log"
	"time"

	"picks-backend/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PickService struct {
	DB           *gorm.DB
	Entitlements *EntitlementService
}

func NewPickService(db *gorm.DB, entitlements *EntitlementService) *PickService {
	return &PickService{DB: db, Entitlements: entitlements}
}

// fillPickSlots fills up to limit slots from the user's preferred sports
// first, then backfills from everything else. Both inputs arrive already
// ordered (confidence, then recency); the merge preserves that order and
// never duplicates a pick already taken from the preferred set.
func fillPickSlots(preferred, others []models.Pick, limit int) []models.Pick {
	if limit <= 0 {
		return []models.Pick{}
	}

	selected := make([]models.Pick, 0, limit)
	taken := make(map[string]bool, limit)

	for _, p := range preferred {
		if len(selected) >= limit {
			return selected
		}
		if taken[p.ID] {
			continue
		}
		selected = append(selected, p)
		taken[p.ID] = true
	}

	for _, p := range others {
		if len(selected) >= limit {
			break
		}
		if taken[p.ID] {
			continue
		}
		selected = append(selected, p)
		taken[p.ID] = true
	}
	return selected
}

// partitionBySport splits picks into (preferred, others), keeping order.
func partitionBySport(picks []models.Pick, sports []string) (preferred, others []models.Pick) {
	wanted := make(map[string]bool, len(sports))
	for _, s := range sports {
		wanted[s] = true
	}
	for _, p := range picks {
		if wanted[p.Sport] {
			preferred = append(preferred, p)
		} else {
			others = append(others, p)
		}
	}
	return preferred, others
}

// GetDailyPicks resolves the user's tier, projects the quota (plus welcome
// bonus picks while active) and fills the slots from today's published picks,
// preferred sports first.
func (s *PickService) GetDailyPicks(externalUserID string, now time.Time) ([]models.Pick, ResolvedTier, TierFeatures, error) {
	resolved, ent, err := s.Entitlements.Resolve(externalUserID, now)
	if err != nil {
		return nil, ResolvedTier{}, TierFeatures{}, err
	}

	features := ProjectTier(resolved.Tier)
	limit := features.DailyPickLimit
	if ent.WelcomeBonusActive(now) {
		limit += WelcomeBonusExtraPicks
	}

	var sports []string
	var user models.AppUser
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error; err == nil {
		sports = user.SportList()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ResolvedTier{}, TierFeatures{}, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	query := s.DB.Where("status = ? AND created_at >= ?", models.PickStatusPublished, dayStart)
	if !features.PremiumInsights {
		query = query.Where("is_premium = ?", false)
	}

	var picks []models.Pick
	if err := query.Order("confidence DESC, created_at DESC").Find(&picks).Error; err != nil {
		return nil, ResolvedTier{}, TierFeatures{}, err
	}

	preferred, others := partitionBySport(picks, sports)
	return fillPickSlots(preferred, others, limit), resolved, features, nil
}

// StartPickPublisher flips scheduled picks to published once their publish
// time arrives.
func (s *PickService) StartPickPublisher() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var picks []models.Pick
			now := time.Now().UTC()
			err := s.DB.Where("status = ? AND publish_at <= ?", models.PickStatusScheduled, now).
				Find(&picks).Error
			if err != nil {
				log.Printf("[Publisher] DB error: %v", err)
				return
			}

			for _, p := range picks {
				p.Status = models.PickStatusPublished
				p.PublishAt = nil
				if err := s.DB.Save(&p).Error; err != nil {
					log.Printf("[Publisher] Failed to publish pick %s: %v", p.ID, err)
				} else {
					log.Printf("✅ Auto-published pick: %s %s", p.Sport, p.Matchup)
				}
			}
		}),
	)
}

// GetUserPicks handles GET /user/picks
func (s *PickService) GetUserPicks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	picks, resolved, features, err := s.GetDailyPicks(userID, time.Now().UTC())
	if err != nil {
		log.Printf("DB Error fetching daily picks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch picks"})
	}

	return c.JSON(fiber.Map{
		"picks":            picks,
		"tier":             resolved.Tier,
		"source":           resolved.Source,
		"daily_pick_limit": features.DailyPickLimit,
		"picks_served":     len(picks),
	})
}
