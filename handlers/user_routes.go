// handlers/user_routes.go
package handlers

import (
	"strconv"

	"mission-board-system/middleware"
	"mission-board-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, statsService *services.StatsService, leaderboardService *services.LeaderboardService, claimService *services.ClaimService) {
	app.Get("/users/:id/stats", func(c *fiber.Ctx) error {
		stats, err := statsService.ComputeStats(c.Context(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	})

	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		entries, err := leaderboardService.Top(c.Context(), limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(entries)
	})

	userCtx := middleware.UserContextMiddleware()

	app.Get("/user/stats", userCtx, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		stats, err := statsService.ComputeStats(c.Context(), userID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	})

	// Review entry point for the external approval process.
	app.Patch("/admin/claims/:id", userCtx, func(c *fiber.Ctx) error {
		if !hasRole(c, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}

		var req struct {
			Verdict string `json:"verdict"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		if err := claimService.ReviewClaim(c.Context(), c.Params("id"), req.Verdict); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Claim reviewed"})
	})
}

func hasRole(c *fiber.Ctx, want string) bool {
	roles, _ := c.Locals("user_roles").([]string)
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
