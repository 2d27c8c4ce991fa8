package handlers

import (
	"tennis-elo-service/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRankingRoutes registers the public read API and the update trigger.
func SetupRankingRoutes(app *fiber.App, rankingService *services.RankingService, updateService *services.UpdateService) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api.Get("/surfaces", rankingService.GetSurfaces)
	api.Get("/rankings/:surface", rankingService.GetRankings)

	// Search must register before the :player_id route.
	api.Get("/players", rankingService.SearchPlayers)
	api.Get("/players/:player_id", rankingService.GetPlayer)

	api.Get("/metadata", rankingService.GetMetadata)

	api.Post("/update", updateService.TriggerUpdate)
}
