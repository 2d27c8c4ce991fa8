package elo

import (
	"time"
)

// PlayerInput is one side of a normalized match. ID is the stable external
// player identifier; the optional metadata backfills the Player record.
type PlayerInput struct {
	ID        string
	Name      string
	Country   string
	Hand      string
	Height    *int
	BirthYear *int
	Rank      *int
}

// MatchInput is a canonical, normalized match ready for rating processing.
// MatchID is the idempotency key: the engine processes each distinct ID
// exactly once.
type MatchInput struct {
	MatchID        string
	TournamentName string
	Surface        string
	MatchDate      time.Time
	Round          string
	Winner         PlayerInput
	Loser          PlayerInput
	Score          string
}
