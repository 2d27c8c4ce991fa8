package models

import (
	"time"
)

// MatchRecord is the immutable ledger entry for one processed match.
// MatchID is a deterministic composite of date, tournament and the two
// player identifiers (or a native match key), which makes re-processing
// detectable: duplicate IDs are no-ops. The before/after ratings on both
// sides are the audit trail that makes any recomputation verifiable.
type MatchRecord struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	MatchID         string    `json:"match_id" gorm:"uniqueIndex;not null"`
	TournamentName  string    `json:"tournament_name"`
	Surface         string    `json:"surface" gorm:"not null"`
	MatchDate       time.Time `json:"match_date" gorm:"index;not null"`
	Round           string    `json:"round"`
	WinnerID        string    `json:"winner_id" gorm:"index;not null"` // internal Player.ID
	LoserID         string    `json:"loser_id" gorm:"index;not null"`
	Score           string    `json:"score"`
	WinnerEloBefore float64   `json:"winner_elo_before"`
	LoserEloBefore  float64   `json:"loser_elo_before"`
	WinnerEloAfter  float64   `json:"winner_elo_after"`
	LoserEloAfter   float64   `json:"loser_elo_after"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}
