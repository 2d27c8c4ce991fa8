package services

import (
	"errors"
	"math"
	"strconv"
	"time"

	"tennis-elo-service/models"
	"tennis-elo-service/store"
	"tennis-elo-service/utils"

	"github.com/gofiber/fiber/v2"
)

// Leaderboard gates and caps.
const (
	MinMatchesForRanking = 5   // minimum sample size before a rating is listed
	MaxRankingLimit      = 500 // hard cap on ?limit
	DefaultRankingLimit  = 100
	RecentMatchesLimit   = 20
	DefaultSearchLimit   = 20
)

// RankingService serves the read-only views over the rating store:
// leaderboards, player profiles, search and system metadata.
type RankingService struct {
	Store store.Store
}

func NewRankingService(st store.Store) *RankingService {
	return &RankingService{Store: st}
}

// GetSurfaces lists the four canonical surfaces.
func (s *RankingService) GetSurfaces(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"surfaces": models.Surfaces})
}

// GetRankings returns the leaderboard for one surface, best rating first.
func (s *RankingService) GetRankings(c *fiber.Ctx) error {
	surface := c.Params("surface")
	if !models.ValidSurface(surface) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid surface"})
	}

	limit := DefaultRankingLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}

	entries, err := s.Store.QueryLeaderboard(surface, MinMatchesForRanking, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load rankings", "details": err.Error()})
	}

	rankings := make([]fiber.Map, len(entries))
	for i, entry := range entries {
		rankings[i] = fiber.Map{
			"rank":   i + 1,
			"player": playerJSON(entry.Player),
			"elo":    ratingJSON(entry.Rating),
		}
	}

	return c.JSON(fiber.Map{
		"surface":  surface,
		"rankings": rankings,
		"count":    len(rankings),
	})
}

// GetPlayer returns a player's profile: static info, per-surface ratings
// and their most recent matches with the opponent and Elo delta from the
// player's perspective.
func (s *RankingService) GetPlayer(c *fiber.Ctx) error {
	playerID := c.Params("player_id")

	player, err := s.Store.FindPlayerByExternalID(playerID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Player not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load player", "details": err.Error()})
	}

	ratings, err := s.Store.RatingsForPlayer(player.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load ratings", "details": err.Error()})
	}
	ratingsBySurface := make(fiber.Map, len(ratings))
	for _, r := range ratings {
		ratingsBySurface[r.Surface] = ratingJSON(r)
	}

	matches, err := s.Store.QueryPlayerMatches(player.ID, RecentMatchesLimit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load matches", "details": err.Error()})
	}
	history := make([]fiber.Map, len(matches))
	for i, pm := range matches {
		history[i] = matchHistoryJSON(pm, player.ID)
	}

	return c.JSON(fiber.Map{
		"player":         playerJSON(*player),
		"ratings":        ratingsBySurface,
		"recent_matches": history,
	})
}

// SearchPlayers finds players by name substring; the query must be at
// least two characters.
func (s *RankingService) SearchPlayers(c *fiber.Ctx) error {
	query := c.Query("q")
	if len(query) < 2 {
		return c.Status(400).JSON(fiber.Map{"error": "Search query must be at least 2 characters"})
	}

	limit := DefaultSearchLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= MaxRankingLimit {
			limit = n
		}
	}

	players, err := s.Store.SearchPlayers(utils.FoldAccents(query), limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	results := make([]fiber.Map, len(players))
	for i, p := range players {
		results[i] = playerJSON(p)
	}

	return c.JSON(fiber.Map{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// GetMetadata reports the last successful update time and total processed
// match count.
func (s *RankingService) GetMetadata(c *fiber.Ctx) error {
	lastUpdate, err := s.Store.GetMetadata(models.MetaLastUpdate)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load metadata", "details": err.Error()})
	}

	totalMatches := 0
	if totalStr, err := s.Store.GetMetadata(models.MetaTotalMatches); err == nil {
		if n, convErr := strconv.Atoi(totalStr); convErr == nil {
			totalMatches = n
		}
	}

	return c.JSON(fiber.Map{
		"last_update":   lastUpdate,
		"total_matches": totalMatches,
	})
}

// round1 rounds a rating for presentation only; stored ratings stay exact.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func playerJSON(p models.Player) fiber.Map {
	return fiber.Map{
		"id":         p.ID,
		"player_id":  p.PlayerID,
		"name":       p.Name,
		"country":    p.Country,
		"hand":       p.Hand,
		"height":     p.Height,
		"birth_year": p.BirthYear,
	}
}

func ratingJSON(r models.SurfaceRating) fiber.Map {
	var lastMatch interface{}
	if r.LastMatchDate != nil {
		lastMatch = r.LastMatchDate.Format(time.RFC3339)
	}
	return fiber.Map{
		"surface":         r.Surface,
		"rating":          round1(r.Rating),
		"peak_rating":     round1(r.PeakRating),
		"matches_played":  r.MatchesPlayed,
		"wins":            r.Wins,
		"losses":          r.Losses,
		"last_match_date": lastMatch,
	}
}

func matchHistoryJSON(pm store.PlayerMatch, playerInternalID string) fiber.Map {
	m := pm.Match
	isWinner := m.WinnerID == playerInternalID

	opponent := pm.WinnerName
	result := "L"
	eloChange := m.LoserEloAfter - m.LoserEloBefore
	if isWinner {
		opponent = pm.LoserName
		result = "W"
		eloChange = m.WinnerEloAfter - m.WinnerEloBefore
	}

	return fiber.Map{
		"match_id":   m.MatchID,
		"date":       m.MatchDate.Format(time.RFC3339),
		"tournament": m.TournamentName,
		"surface":    m.Surface,
		"round":      m.Round,
		"result":     result,
		"opponent":   opponent,
		"score":      m.Score,
		"elo_change": round1(eloChange),
	}
}
