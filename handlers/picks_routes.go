// handlers/picks_routes.go
package handlers

import (
	"picks-backend/middleware"
	"picks-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPickRoutes(app *fiber.App, pickService *services.PickService) {
	// 🔐 Secured routes — daily picks are always gated by entitlement
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/user/picks", pickService.GetUserPicks)

	// Admin support tooling
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	admin.Get("/users/search", pickService.SearchUsers)
}
