package elo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"tennis-elo-service/models"
	"tennis-elo-service/store"

	"github.com/google/uuid"
)

// DefaultBatchSize bounds how much work an interrupted run can lose:
// progress is committed once per batch window.
const DefaultBatchSize = 1000

// Engine applies the Elo update rule exactly once per match and records
// before/after ratings. It is single-writer: callers must not run two
// ingestions concurrently, and batch inputs must be pre-sorted ascending
// by date — rating trajectories only mean something replayed in order.
type Engine struct {
	store     store.Store
	calc      *Calculator
	BatchSize int
}

func NewEngine(st store.Store, calc *Calculator) *Engine {
	if calc == nil {
		calc = NewCalculator(DefaultKFactor, DefaultInitialRating)
	}
	return &Engine{store: st, calc: calc, BatchSize: DefaultBatchSize}
}

// Process applies a single match atomically: both rating updates, any
// player creation and the match insert commit together or not at all.
// Re-processing a known match ID returns the stored record untouched.
func (e *Engine) Process(in MatchInput) (*models.MatchRecord, error) {
	var record *models.MatchRecord
	err := e.store.Transaction(func(tx store.Store) error {
		var err error
		record, err = e.processOne(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ProcessBatch replays pre-sorted matches sequentially. Each match runs in
// its own savepoint inside a per-window transaction: a malformed or failing
// match rolls back alone and the batch continues, while a crash loses at
// most one uncommitted window. Returns the number of committed matches.
func (e *Engine) ProcessBatch(ctx context.Context, inputs []MatchInput) (int, error) {
	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	total := 0
	for start := 0; start < len(inputs); start += batchSize {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		end := start + batchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		chunk := inputs[start:end]

		committed := 0
		err := e.store.Transaction(func(tx store.Store) error {
			for _, in := range chunk {
				match := in
				if err := tx.Transaction(func(mtx store.Store) error {
					_, err := e.processOne(mtx, match)
					return err
				}); err != nil {
					log.Printf("⚠️ Skipping match %s: %v", match.MatchID, err)
					continue
				}
				committed++
			}
			return nil
		})
		if err != nil {
			// The store itself is unavailable; everything committed so
			// far is preserved and safely resumable.
			return total, fmt.Errorf("batch commit failed at match %d: %w", start, err)
		}
		total += committed
		log.Printf("Processed %d/%d matches...", end, len(inputs))
	}

	if err := e.store.SetMetadata(models.MetaLastUpdate, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return total, err
	}
	if err := e.store.SetMetadata(models.MetaTotalMatches, strconv.Itoa(total)); err != nil {
		return total, err
	}
	return total, nil
}

func (e *Engine) processOne(tx store.Store, in MatchInput) (*models.MatchRecord, error) {
	// Idempotent re-ingestion: a known match ID is a no-op.
	existing, err := tx.FindMatch(in.MatchID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	winner, err := e.ensurePlayer(tx, in.Winner)
	if err != nil {
		return nil, err
	}
	loser, err := e.ensurePlayer(tx, in.Loser)
	if err != nil {
		return nil, err
	}

	winnerRating, err := e.ensureRating(tx, winner.ID, in.Surface)
	if err != nil {
		return nil, err
	}
	loserRating, err := e.ensureRating(tx, loser.ID, in.Surface)
	if err != nil {
		return nil, err
	}

	winnerBefore := winnerRating.Rating
	loserBefore := loserRating.Rating
	newWinner, newLoser := e.calc.NewRatings(winnerBefore, loserBefore)

	matchDate := in.MatchDate

	winnerRating.Rating = newWinner
	winnerRating.MatchesPlayed++
	winnerRating.Wins++
	winnerRating.LastMatchDate = &matchDate
	// Peak is only raised on wins; a loss can never set a new peak.
	if newWinner > winnerRating.PeakRating {
		winnerRating.PeakRating = newWinner
	}
	if err := tx.UpdateRating(winnerRating); err != nil {
		return nil, err
	}

	loserRating.Rating = newLoser
	loserRating.MatchesPlayed++
	loserRating.Losses++
	loserRating.LastMatchDate = &matchDate
	if err := tx.UpdateRating(loserRating); err != nil {
		return nil, err
	}

	record := &models.MatchRecord{
		ID:              uuid.NewString(),
		MatchID:         in.MatchID,
		TournamentName:  in.TournamentName,
		Surface:         in.Surface,
		MatchDate:       in.MatchDate,
		Round:           in.Round,
		WinnerID:        winner.ID,
		LoserID:         loser.ID,
		Score:           in.Score,
		WinnerEloBefore: winnerBefore,
		LoserEloBefore:  loserBefore,
		WinnerEloAfter:  newWinner,
		LoserEloAfter:   newLoser,
	}
	if err := tx.CreateMatch(record); err != nil {
		return nil, err
	}
	return record, nil
}

// ensurePlayer fetches the player by external ID, creating them on first
// sighting. Existing players get empty metadata fields backfilled but
// never overwritten.
func (e *Engine) ensurePlayer(tx store.Store, in PlayerInput) (*models.Player, error) {
	player, err := tx.FindPlayerByExternalID(in.ID)
	if errors.Is(err, store.ErrNotFound) {
		player = &models.Player{
			PlayerID:  in.ID,
			Name:      in.Name,
			Country:   in.Country,
			Hand:      in.Hand,
			Height:    in.Height,
			BirthYear: in.BirthYear,
		}
		if err := tx.CreatePlayer(player); err != nil {
			return nil, err
		}
		return player, nil
	}
	if err != nil {
		return nil, err
	}

	changed := false
	if player.Country == "" && in.Country != "" {
		player.Country = in.Country
		changed = true
	}
	if player.Hand == "" && in.Hand != "" {
		player.Hand = in.Hand
		changed = true
	}
	if player.Height == nil && in.Height != nil {
		player.Height = in.Height
		changed = true
	}
	if player.BirthYear == nil && in.BirthYear != nil {
		player.BirthYear = in.BirthYear
		changed = true
	}
	if changed {
		if err := tx.UpdatePlayer(player); err != nil {
			return nil, err
		}
	}
	return player, nil
}

func (e *Engine) ensureRating(tx store.Store, playerID, surface string) (*models.SurfaceRating, error) {
	rating, err := tx.FindRating(playerID, surface)
	if errors.Is(err, store.ErrNotFound) {
		return tx.CreateRating(playerID, surface, e.calc.InitialRating)
	}
	if err != nil {
		return nil, err
	}
	return rating, nil
}
