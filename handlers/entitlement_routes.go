// handlers/entitlement_routes.go
package handlers

import (
	"errors"
	"time"

	"picks-backend/middleware"
	"picks-backend/models"
	"picks-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEntitlementRoutes(app *fiber.App, entitlementService *services.EntitlementService) {
	// 🔐 Secured routes — require user context from the Gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/user/entitlement", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		now := time.Now().UTC()

		resolved, ent, err := entitlementService.Resolve(userID, now)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve entitlement",
				"cause": err.Error(),
			})
		}

		features := services.ProjectTier(resolved.Tier)
		limit := features.DailyPickLimit
		if ent.WelcomeBonusActive(now) {
			limit += services.WelcomeBonusExtraPicks
		}

		return c.JSON(fiber.Map{
			"tier":                 resolved.Tier,
			"source":               resolved.Source,
			"expires_at":           resolved.ExpiresAt,
			"features":             features,
			"daily_pick_limit":     limit,
			"welcome_bonus_active": ent.WelcomeBonusActive(now),
			"points_balance":       ent.RewardPointsBalance,
		})
	})

	secured.Get("/user/points", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		ent, err := entitlementService.EnsureEntitlement(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load points",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"balance":  ent.RewardPointsBalance,
			"lifetime": ent.RewardPointsLifetime,
		})
	})

	secured.Post("/user/welcome-bonus", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		expiresAt, err := entitlementService.ClaimWelcomeBonus(userID, time.Now().UTC())
		if err != nil {
			if errors.Is(err, services.ErrBonusAlreadyClaimed) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "welcome bonus already claimed"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to claim welcome bonus",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message":    "Welcome bonus claimed",
			"expires_at": expiresAt,
		})
	})

	// 🔒 Internal routes — called by the payment webhook and IAP handlers
	// after they have verified the event. Gateway auth is enforced globally.
	app.Post("/internal/subscription/event", func(c *fiber.Ctx) error {
		type Req struct {
			UserID    string     `json:"user_id" validate:"required,uuid"`
			Tier      string     `json:"tier" validate:"required,oneof=free pro elite"`
			ExpiresAt *time.Time `json:"expires_at"` // nil = lifetime
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}

		tier := models.ParseTier(req.Tier)
		if err := entitlementService.ApplySubscriptionEvent(req.UserID, tier, req.ExpiresAt, time.Now().UTC()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to apply subscription event",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message": "subscription updated",
			"user_id": req.UserID,
			"tier":    tier,
		})
	})

	app.Post("/internal/daypass", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			Tier   string `json:"tier" validate:"required,oneof=pro elite"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}

		expiresAt, err := entitlementService.GrantDayPass(req.UserID, models.ParseTier(req.Tier), time.Now().UTC())
		if err != nil {
			if errors.Is(err, services.ErrInvalidTier) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tier must be pro or elite"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to grant day pass",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message":    "day pass granted",
			"user_id":    req.UserID,
			"expires_at": expiresAt,
		})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Post("/points/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			Points int64  `json:"points" validate:"required,min=1"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.Points <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "points must be positive"})
		}
		reason := req.Reason
		if reason == "" {
			reason = "admin_grant"
		}

		if err := entitlementService.CreditPoints(req.UserID, req.Points, reason, time.Now().UTC()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "points grant failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message": "Points granted successfully",
			"user_id": req.UserID,
			"points":  req.Points,
		})
	})

	adminGroup.Post("/sweep", func(c *fiber.Ctx) error {
		reverted, err := entitlementService.SweepExpired(time.Now().UTC())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "sweep failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"users_reverted": reverted})
	})
}
