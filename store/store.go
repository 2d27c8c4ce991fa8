// Package store defines the persistence contract the rating engine and the
// query service depend on, plus its GORM implementation. The engine never
// holds its own copy of rating state; everything flows through a Store.
package store

import (
	"errors"

	"tennis-elo-service/models"
)

// ErrNotFound is returned by the Find* methods when no row matches.
var ErrNotFound = errors.New("record not found")

// LeaderboardEntry pairs a player with their rating on the queried surface.
type LeaderboardEntry struct {
	Player models.Player
	Rating models.SurfaceRating
}

// PlayerMatch is a match record annotated with both player names, so the
// query service can label the opponent without extra lookups.
type PlayerMatch struct {
	Match      models.MatchRecord
	WinnerName string
	LoserName  string
}

// Store is everything the engine and query service need from persistence.
type Store interface {
	FindPlayerByExternalID(externalID string) (*models.Player, error)
	CreatePlayer(p *models.Player) error
	UpdatePlayer(p *models.Player) error
	SearchPlayers(query string, limit int) ([]models.Player, error)

	FindRating(playerID, surface string) (*models.SurfaceRating, error)
	CreateRating(playerID, surface string, initialRating float64) (*models.SurfaceRating, error)
	UpdateRating(r *models.SurfaceRating) error
	RatingsForPlayer(playerID string) ([]models.SurfaceRating, error)

	FindMatch(matchID string) (*models.MatchRecord, error)
	CreateMatch(m *models.MatchRecord) error

	QueryLeaderboard(surface string, minMatches, limit int) ([]LeaderboardEntry, error)
	QueryPlayerMatches(playerID string, limit int) ([]PlayerMatch, error)

	GetMetadata(key string) (string, error)
	SetMetadata(key, value string) error

	// Transaction runs fn against a Store bound to a database transaction.
	// Nested calls open savepoints, so a failed inner fn rolls back only
	// its own writes.
	Transaction(fn func(Store) error) error
}
