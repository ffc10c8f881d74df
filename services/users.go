// services/users.go
package services

import (
	"strconv"
	"strings"

	"picks-backend/models"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers searches the local AppUser mirror for admin support tooling.
func (s *PickService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var users []models.AppUser
	db := s.DB.Model(&models.AppUser{}).Limit(limit)

	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ?",
			searchTerm, searchTerm,
		)
	}

	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	type UserSummary struct {
		ID              string `json:"id"`
		ExternalUserID  string `json:"external_user_id"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		PreferredSports string `json:"preferred_sports"`
	}

	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{
			ID:              u.ID,
			ExternalUserID:  u.ExternalUserID,
			Username:        u.Username,
			Email:           u.Email,
			PreferredSports: u.PreferredSports,
		}
	}

	return c.JSON(res)
}
