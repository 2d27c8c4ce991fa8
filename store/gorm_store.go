package store

import (
	"errors"
	"fmt"
	"strings"

	"tennis-elo-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements Store on a GORM database handle (Postgres in
// production, sqlite in tests).
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// AutoMigrate creates or updates the schema for all owned entities.
func (s *GormStore) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.Player{},
		&models.SurfaceRating{},
		&models.MatchRecord{},
		&models.Metadata{},
	)
}

func (s *GormStore) FindPlayerByExternalID(externalID string) (*models.Player, error) {
	var player models.Player
	if err := s.DB.Where("player_id = ?", externalID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (s *GormStore) CreatePlayer(p *models.Player) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return s.DB.Create(p).Error
}

func (s *GormStore) UpdatePlayer(p *models.Player) error {
	return s.DB.Save(p).Error
}

// SearchPlayers does a case-insensitive substring match on the display name.
func (s *GormStore) SearchPlayers(query string, limit int) ([]models.Player, error) {
	var players []models.Player
	searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := s.DB.
		Where("LOWER(name) LIKE ?", searchTerm).
		Order("name ASC").
		Limit(limit).
		Find(&players).Error
	return players, err
}

func (s *GormStore) FindRating(playerID, surface string) (*models.SurfaceRating, error) {
	var rating models.SurfaceRating
	err := s.DB.Where("player_id = ? AND surface = ?", playerID, surface).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (s *GormStore) CreateRating(playerID, surface string, initialRating float64) (*models.SurfaceRating, error) {
	rating := &models.SurfaceRating{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		Surface:    surface,
		Rating:     initialRating,
		PeakRating: initialRating,
	}
	if err := s.DB.Create(rating).Error; err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *GormStore) UpdateRating(r *models.SurfaceRating) error {
	return s.DB.Save(r).Error
}

func (s *GormStore) RatingsForPlayer(playerID string) ([]models.SurfaceRating, error) {
	var ratings []models.SurfaceRating
	err := s.DB.Where("player_id = ?", playerID).Find(&ratings).Error
	return ratings, err
}

func (s *GormStore) FindMatch(matchID string) (*models.MatchRecord, error) {
	var match models.MatchRecord
	if err := s.DB.Where("match_id = ?", matchID).First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (s *GormStore) CreateMatch(m *models.MatchRecord) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return s.DB.Create(m).Error
}

// QueryLeaderboard returns players on a surface with at least minMatches
// matches, best rating first. Ties break on the stable external player ID
// so the ordering is deterministic across runs and drivers.
func (s *GormStore) QueryLeaderboard(surface string, minMatches, limit int) ([]LeaderboardEntry, error) {
	var ratings []models.SurfaceRating
	err := s.DB.
		Joins("JOIN players ON players.id = surface_ratings.player_id").
		Where("surface_ratings.surface = ? AND surface_ratings.matches_played >= ?", surface, minMatches).
		Order("surface_ratings.rating DESC, players.player_id ASC").
		Limit(limit).
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}

	playersByID, err := s.playersByInternalID(ratingPlayerIDs(ratings))
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(ratings))
	for _, r := range ratings {
		player, ok := playersByID[r.PlayerID]
		if !ok {
			return nil, fmt.Errorf("rating %s references missing player %s", r.ID, r.PlayerID)
		}
		entries = append(entries, LeaderboardEntry{Player: player, Rating: r})
	}
	return entries, nil
}

// QueryPlayerMatches returns the player's most recent matches, newest first,
// each annotated with both competitor names.
func (s *GormStore) QueryPlayerMatches(playerID string, limit int) ([]PlayerMatch, error) {
	var matches []models.MatchRecord
	err := s.DB.
		Where("winner_id = ? OR loser_id = ?", playerID, playerID).
		Order("match_date DESC").
		Limit(limit).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches)*2)
	for _, m := range matches {
		ids = append(ids, m.WinnerID, m.LoserID)
	}
	playersByID, err := s.playersByInternalID(ids)
	if err != nil {
		return nil, err
	}

	result := make([]PlayerMatch, 0, len(matches))
	for _, m := range matches {
		result = append(result, PlayerMatch{
			Match:      m,
			WinnerName: playersByID[m.WinnerID].Name,
			LoserName:  playersByID[m.LoserID].Name,
		})
	}
	return result, nil
}

func (s *GormStore) GetMetadata(key string) (string, error) {
	var meta models.Metadata
	if err := s.DB.Where("key = ?", key).First(&meta).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return meta.Value, nil
}

func (s *GormStore) SetMetadata(key, value string) error {
	var meta models.Metadata
	err := s.DB.Where("key = ?", key).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		meta = models.Metadata{ID: uuid.NewString(), Key: key, Value: value}
		return s.DB.Create(&meta).Error
	}
	if err != nil {
		return err
	}
	meta.Value = value
	return s.DB.Save(&meta).Error
}

func (s *GormStore) Transaction(fn func(Store) error) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) playersByInternalID(ids []string) (map[string]models.Player, error) {
	byID := make(map[string]models.Player, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	var players []models.Player
	if err := s.DB.Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, err
	}
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID, nil
}

func ratingPlayerIDs(ratings []models.SurfaceRating) []string {
	ids := make([]string, len(ratings))
	for i, r := range ratings {
		ids[i] = r.PlayerID
	}
	return ids
}
