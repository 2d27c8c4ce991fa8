package models

import (
	"time"
)

// SurfaceRating is a player's current Elo rating on one surface.
// At most one row exists per (player, surface); it is created lazily the
// first time the player appears on that surface and mutated exactly once
// per match, in match-date order. Rating is stored unrounded — only the
// API layer rounds for presentation.
type SurfaceRating struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	PlayerID      string     `json:"player_id" gorm:"uniqueIndex:idx_player_surface;not null"` // internal Player.ID
	Surface       string     `json:"surface" gorm:"uniqueIndex:idx_player_surface;index:idx_surface_rating;not null"`
	Rating        float64    `json:"rating" gorm:"index:idx_surface_rating"`
	PeakRating    float64    `json:"peak_rating"`
	MatchesPlayed int        `json:"matches_played" gorm:"default:0"`
	Wins          int        `json:"wins" gorm:"default:0"`
	Losses        int        `json:"losses" gorm:"default:0"`
	LastMatchDate *time.Time `json:"last_match_date,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
