package models

import (
	"time"
)

// Player is a unique competitor. PlayerID is the stable external identifier
// derived deterministically from the source data (native ID or slugged name),
// so re-ingestion never creates duplicates. Players are created on first
// sighting and never deleted; metadata fields are backfilled when a later
// source supplies values the first sighting lacked.
type Player struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PlayerID  string    `json:"player_id" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Country   string    `json:"country,omitempty"`
	Hand      string    `json:"hand,omitempty"`
	Height    *int      `json:"height,omitempty"`
	BirthYear *int      `json:"birth_year,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
