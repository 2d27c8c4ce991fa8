package elo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tennis-elo-service/models"
	"tennis-elo-service/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *store.GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "elo_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	st := store.NewGormStore(db)
	require.NoError(t, st.AutoMigrate())
	return st
}

func clayMatch(matchID string, day int, winner, loser string) MatchInput {
	date := time.Date(2023, 1, day, 0, 0, 0, 0, time.UTC)
	return MatchInput{
		MatchID:        matchID,
		TournamentName: "Monte Carlo",
		Surface:        models.SurfaceClay,
		MatchDate:      date,
		Round:          "R32",
		Winner:         PlayerInput{ID: winner, Name: winner},
		Loser:          PlayerInput{ID: loser, Name: loser},
		Score:          "6-4 6-4",
	}
}

func TestProcessSingleMatch(t *testing.T) {
	st := newTestStore(t)
	engine := NewEngine(st, NewCalculator(32, 1500))

	record, err := engine.Process(clayMatch("m1", 10, "alice", "bob"))
	require.NoError(t, err)

	t.Run("new players start at the initial rating", func(t *testing.T) {
		assert.InDelta(t, 1500.0, record.WinnerEloBefore, tolerance)
		assert.InDelta(t, 1500.0, record.LoserEloBefore, tolerance)
	})

	t.Run("ratings move by half K for an even match", func(t *testing.T) {
		assert.InDelta(t, 1516.0, record.WinnerEloAfter, tolerance)
		assert.InDelta(t, 1484.0, record.LoserEloAfter, tolerance)
	})

	t.Run("surface ratings updated for both sides", func(t *testing.T) {
		winner, err := st.FindPlayerByExternalID("alice")
		require.NoError(t, err)
		loser, err := st.FindPlayerByExternalID("bob")
		require.NoError(t, err)

		wr, err := st.FindRating(winner.ID, models.SurfaceClay)
		require.NoError(t, err)
		assert.InDelta(t, 1516.0, wr.Rating, tolerance)
		assert.InDelta(t, 1516.0, wr.PeakRating, tolerance)
		assert.Equal(t, 1, wr.MatchesPlayed)
		assert.Equal(t, 1, wr.Wins)
		assert.Equal(t, 0, wr.Losses)
		require.NotNil(t, wr.LastMatchDate)

		lr, err := st.FindRating(loser.ID, models.SurfaceClay)
		require.NoError(t, err)
		assert.InDelta(t, 1484.0, lr.Rating, tolerance)
		assert.Equal(t, 1, lr.MatchesPlayed)
		assert.Equal(t, 0, lr.Wins)
		assert.Equal(t, 1, lr.Losses)
	})

	t.Run("losing never raises the stored peak", func(t *testing.T) {
		// bob keeps losing; his peak must stay at the initial seed.
		_, err := engine.Process(clayMatch("m2", 11, "alice", "bob"))
		require.NoError(t, err)

		loser, err := st.FindPlayerByExternalID("bob")
		require.NoError(t, err)
		lr, err := st.FindRating(loser.ID, models.SurfaceClay)
		require.NoError(t, err)
		assert.InDelta(t, 1500.0, lr.PeakRating, tolerance)
		assert.Less(t, lr.Rating, lr.PeakRating)
	})
}

func TestProcessIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	engine := NewEngine(st, NewCalculator(32, 1500))

	in := clayMatch("m1", 10, "alice", "bob")
	first, err := engine.Process(in)
	require.NoError(t, err)

	second, err := engine.Process(in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.MatchID, second.MatchID)

	winner, err := st.FindPlayerByExternalID("alice")
	require.NoError(t, err)
	wr, err := st.FindRating(winner.ID, models.SurfaceClay)
	require.NoError(t, err)
	assert.Equal(t, 1, wr.MatchesPlayed, "re-processing must not double count")
	assert.InDelta(t, 1516.0, wr.Rating, tolerance)
}

func TestProcessingOrderMatters(t *testing.T) {
	m1 := clayMatch("m1", 10, "alice", "bob")
	m2 := clayMatch("m2", 11, "carol", "alice")

	finalRating := func(order []MatchInput) float64 {
		st := newTestStore(t)
		engine := NewEngine(st, NewCalculator(32, 1500))
		for _, in := range order {
			_, err := engine.Process(in)
			require.NoError(t, err)
		}
		alice, err := st.FindPlayerByExternalID("alice")
		require.NoError(t, err)
		r, err := st.FindRating(alice.ID, models.SurfaceClay)
		require.NoError(t, err)
		return r.Rating
	}

	forward := finalRating([]MatchInput{m1, m2})
	reversed := finalRating([]MatchInput{m2, m1})
	assert.NotEqual(t, forward, reversed, "rating trajectories are order-dependent")
}

func TestProcessBatch(t *testing.T) {
	t.Run("re-running a batch leaves state unchanged", func(t *testing.T) {
		st := newTestStore(t)
		engine := NewEngine(st, NewCalculator(32, 1500))

		batch := []MatchInput{
			clayMatch("m1", 10, "alice", "bob"),
			clayMatch("m2", 11, "bob", "alice"),
		}

		processed, err := engine.ProcessBatch(context.Background(), batch)
		require.NoError(t, err)
		assert.Equal(t, 2, processed)

		alice, err := st.FindPlayerByExternalID("alice")
		require.NoError(t, err)
		before, err := st.FindRating(alice.ID, models.SurfaceClay)
		require.NoError(t, err)

		processed, err = engine.ProcessBatch(context.Background(), batch)
		require.NoError(t, err)
		assert.Equal(t, 2, processed, "duplicates are successful no-ops")

		after, err := st.FindRating(alice.ID, models.SurfaceClay)
		require.NoError(t, err)
		assert.Equal(t, before.Rating, after.Rating)
		assert.Equal(t, before.MatchesPlayed, after.MatchesPlayed)
	})

	t.Run("writes run metadata", func(t *testing.T) {
		st := newTestStore(t)
		engine := NewEngine(st, NewCalculator(32, 1500))

		_, err := engine.ProcessBatch(context.Background(), []MatchInput{
			clayMatch("m1", 10, "alice", "bob"),
		})
		require.NoError(t, err)

		total, err := st.GetMetadata(models.MetaTotalMatches)
		require.NoError(t, err)
		assert.Equal(t, "1", total)

		lastUpdate, err := st.GetMetadata(models.MetaLastUpdate)
		require.NoError(t, err)
		_, err = time.Parse(time.RFC3339, lastUpdate)
		assert.NoError(t, err)
	})

	t.Run("a failing match is skipped, not fatal", func(t *testing.T) {
		st := newTestStore(t)
		failing := &failingStore{Store: st, failMatchID: "m2"}
		engine := NewEngine(failing, NewCalculator(32, 1500))

		processed, err := engine.ProcessBatch(context.Background(), []MatchInput{
			clayMatch("m1", 10, "alice", "bob"),
			clayMatch("m2", 11, "carol", "dave"),
			clayMatch("m3", 12, "alice", "carol"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, processed)

		_, err = st.FindMatch("m1")
		assert.NoError(t, err)
		_, err = st.FindMatch("m2")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = st.FindMatch("m3")
		assert.NoError(t, err)
	})

	t.Run("batch size splits the run into windows", func(t *testing.T) {
		st := newTestStore(t)
		engine := NewEngine(st, NewCalculator(32, 1500))
		engine.BatchSize = 2

		var batch []MatchInput
		for day := 1; day <= 5; day++ {
			batch = append(batch, clayMatch("m"+string(rune('0'+day)), day, "alice", "bob"))
		}

		processed, err := engine.ProcessBatch(context.Background(), batch)
		require.NoError(t, err)
		assert.Equal(t, 5, processed)
	})
}

// failingStore makes one specific match's insert fail, to prove partial
// failures roll back alone and the batch keeps going.
type failingStore struct {
	store.Store
	failMatchID string
}

func (f *failingStore) CreateMatch(m *models.MatchRecord) error {
	if m.MatchID == f.failMatchID {
		return errors.New("simulated persistence failure")
	}
	return f.Store.CreateMatch(m)
}

func (f *failingStore) Transaction(fn func(store.Store) error) error {
	return f.Store.Transaction(func(tx store.Store) error {
		return fn(&failingStore{Store: tx, failMatchID: f.failMatchID})
	})
}

func TestEnsurePlayerBackfillsMetadata(t *testing.T) {
	st := newTestStore(t)
	engine := NewEngine(st, NewCalculator(32, 1500))

	_, err := engine.Process(clayMatch("m1", 10, "alice", "bob"))
	require.NoError(t, err)

	height := 185
	birthYear := 1996
	enriched := clayMatch("m2", 11, "alice", "bob")
	enriched.Winner.Country = "USA"
	enriched.Winner.Hand = "R"
	enriched.Winner.Height = &height
	enriched.Winner.BirthYear = &birthYear
	_, err = engine.Process(enriched)
	require.NoError(t, err)

	alice, err := st.FindPlayerByExternalID("alice")
	require.NoError(t, err)
	assert.Equal(t, "USA", alice.Country)
	assert.Equal(t, "R", alice.Hand)
	require.NotNil(t, alice.Height)
	assert.Equal(t, 185, *alice.Height)
	require.NotNil(t, alice.BirthYear)
	assert.Equal(t, 1996, *alice.BirthYear)

	// A later conflicting value must not overwrite what is already stored.
	conflicting := clayMatch("m3", 12, "alice", "bob")
	conflicting.Winner.Country = "ESP"
	_, err = engine.Process(conflicting)
	require.NoError(t, err)

	alice, err = st.FindPlayerByExternalID("alice")
	require.NoError(t, err)
	assert.Equal(t, "USA", alice.Country)
}
