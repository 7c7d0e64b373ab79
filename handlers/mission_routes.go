// handlers/mission_routes.go
package handlers

import (
	"errors"

	"mission-board-system/middleware"
	"mission-board-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMissionRoutes(app *fiber.App, missionService *services.MissionService, claimService *services.ClaimService) {
	// 🔓 Public routes — no user context, but still behind Gateway auth
	app.Get("/missions", func(c *fiber.Ctx) error {
		items, err := missionService.ListMissions(c.Context(), services.MissionFilters{
			Level:  c.Query("level"),
			Tag:    c.Query("tag"),
			Search: c.Query("q"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	})

	app.Get("/missions/:id", func(c *fiber.Ctx) error {
		m, err := missionService.GetMission(c.Context(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(m)
	})

	// 🔐 Secured routes — require user context from the gateway.
	// Scoped per route: /missions is public for GET but not for POST.
	userCtx := middleware.UserContextMiddleware()

	app.Post("/missions", userCtx, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var in services.CreateMissionInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		m, err := missionService.CreateMission(c.Context(), userID, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	})

	app.Post("/missions/:id/claim", userCtx, func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			PullRequestURL string `json:"pullRequestUrl"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		if _, err := claimService.ClaimMission(c.Context(), c.Params("id"), userID, req.PullRequestURL); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Mission claimed successfully"})
	})
}

// writeServiceError maps the service error taxonomy onto the HTTP
// contract. Conflict keeps a distinct body so the front end can tell
// "pick another mission" from a real failure.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Mission is not available"})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
