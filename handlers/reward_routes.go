// handlers/reward_routes.go
package handlers

import (
	"picks-backend/middleware"
	"picks-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, rewardService *services.RewardService) {
	// 🔓 Public routes — no user context, but still require Gateway auth
	app.Get("/rewards/catalog", rewardService.GetCatalog)

	// 🔐 Secured routes — require user context (userID, roles)
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/user/rewards/redeem", rewardService.RedeemReward)
	secured.Get("/user/rewards/claims", rewardService.GetUserClaims)

	// Admin catalog management
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	admin.Post("/rewards", rewardService.CreateCatalogItem)
	admin.Put("/rewards/:id", rewardService.UpdateCatalogItem)
	admin.Patch("/rewards/:id", rewardService.UpdateCatalogItem)
	admin.Delete("/rewards/:id", rewardService.DeactivateCatalogItem)
}
