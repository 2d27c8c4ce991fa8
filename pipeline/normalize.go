package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"tennis-elo-service/elo"

	"github.com/gosimple/slug"
)

// RawRow is one CSV row keyed by header name.
type RawRow map[string]string

// ErrSkipRow marks a row that is dropped (and counted) rather than failing
// the run: missing identity fields, a winner that matches neither listed
// competitor, or an unparsable date.
var ErrSkipRow = errors.New("row skipped")

// Normalizer converts one raw source row into a canonical MatchInput.
// Each supported source schema gets its own implementation; the schema is
// selected by configuration at startup.
type Normalizer interface {
	Name() string
	Normalize(row RawRow) (*elo.MatchInput, error)
}

// Supported source schemas.
const (
	SchemaDailyPull = "daily_pull"
	SchemaATPTour   = "atp_tour"
)

// NormalizerForSchema returns the row normalizer for a configured schema.
func NormalizerForSchema(schema string) (Normalizer, error) {
	switch schema {
	case SchemaDailyPull, "":
		return &DailyPullNormalizer{}, nil
	case SchemaATPTour:
		return &ATPTourNormalizer{}, nil
	}
	return nil, fmt.Errorf("unknown dataset schema %q", schema)
}

// PlayerIDFromName derives the stable external player identifier for
// sources without native IDs: lower-cased, accent-stripped, punctuation
// collapsed. The same person always maps to the same identifier across
// runs and across datasets.
func PlayerIDFromName(name string) string {
	return slug.Make(name)
}

// CompositeMatchID builds the idempotency key for sources without a native
// match key.
func CompositeMatchID(date time.Time, tournament, winnerID, loserID string) string {
	return fmt.Sprintf("%s_%s_%s_%s", date.Format("20060102"), slug.Make(tournament), winnerID, loserID)
}

// SortByDate orders match inputs ascending by date, with the match ID as a
// deterministic tiebreak. The engine requires chronological replay.
func SortByDate(inputs []elo.MatchInput) {
	sort.Slice(inputs, func(i, j int) bool {
		if !inputs[i].MatchDate.Equal(inputs[j].MatchDate) {
			return inputs[i].MatchDate.Before(inputs[j].MatchDate)
		}
		return inputs[i].MatchID < inputs[j].MatchID
	})
}

// DailyPullNormalizer handles the daily-pull CSV schema:
// Tournament,Date,Series,Court,Surface,Round,Best of,Player_1,Player_2,
// Winner,Rank_1,Rank_2,...,Score. Player names double as identities and a
// Winner column names one of the two listed competitors.
type DailyPullNormalizer struct{}

func (n *DailyPullNormalizer) Name() string { return SchemaDailyPull }

func (n *DailyPullNormalizer) Normalize(row RawRow) (*elo.MatchInput, error) {
	player1 := strings.TrimSpace(row["Player_1"])
	player2 := strings.TrimSpace(row["Player_2"])
	winnerName := strings.TrimSpace(row["Winner"])
	if player1 == "" || player2 == "" || winnerName == "" {
		return nil, fmt.Errorf("%w: missing player or winner name", ErrSkipRow)
	}

	var winner, loser string
	var winnerRank, loserRank *int
	switch winnerName {
	case player1:
		winner, loser = player1, player2
		winnerRank, loserRank = parseRank(row["Rank_1"]), parseRank(row["Rank_2"])
	case player2:
		winner, loser = player2, player1
		winnerRank, loserRank = parseRank(row["Rank_2"]), parseRank(row["Rank_1"])
	default:
		return nil, fmt.Errorf("%w: winner %q matches neither competitor", ErrSkipRow, winnerName)
	}

	matchDate, err := time.Parse("2006-01-02", strings.TrimSpace(row["Date"]))
	if err != nil {
		return nil, fmt.Errorf("%w: unparsable date %q", ErrSkipRow, row["Date"])
	}

	tournament := strings.TrimSpace(row["Tournament"])
	winnerID := PlayerIDFromName(winner)
	loserID := PlayerIDFromName(loser)

	return &elo.MatchInput{
		MatchID:        CompositeMatchID(matchDate, tournament, winnerID, loserID),
		TournamentName: tournament,
		Surface:        ClassifySurface(row["Surface"], row["Court"], tournament),
		MatchDate:      matchDate,
		Round:          strings.TrimSpace(row["Round"]),
		Winner:         elo.PlayerInput{ID: winnerID, Name: winner, Rank: winnerRank},
		Loser:          elo.PlayerInput{ID: loserID, Name: loser, Rank: loserRank},
		Score:          strings.TrimSpace(row["Score"]),
	}, nil
}

// ATPTourNormalizer handles the ATP tour CSV schema (tourney_id,
// tourney_name, surface, tourney_date, match_num, winner_id, winner_name,
// winner_hand, winner_ht, winner_ioc, ... , score, round). It carries
// native player IDs plus the player metadata the daily-pull schema lacks,
// and has no court column, so surface classification runs on tournament
// name alone for hard courts.
type ATPTourNormalizer struct{}

func (n *ATPTourNormalizer) Name() string { return SchemaATPTour }

func (n *ATPTourNormalizer) Normalize(row RawRow) (*elo.MatchInput, error) {
	winnerName := strings.TrimSpace(row["winner_name"])
	loserName := strings.TrimSpace(row["loser_name"])
	if winnerName == "" || loserName == "" {
		return nil, fmt.Errorf("%w: missing winner or loser name", ErrSkipRow)
	}

	matchDate, err := time.Parse("20060102", strings.TrimSpace(row["tourney_date"]))
	if err != nil {
		return nil, fmt.Errorf("%w: unparsable date %q", ErrSkipRow, row["tourney_date"])
	}

	tournament := strings.TrimSpace(row["tourney_name"])

	winnerID := strings.TrimSpace(row["winner_id"])
	if winnerID == "" {
		winnerID = PlayerIDFromName(winnerName)
	}
	loserID := strings.TrimSpace(row["loser_id"])
	if loserID == "" {
		loserID = PlayerIDFromName(loserName)
	}

	matchID := ""
	if tourneyID, matchNum := strings.TrimSpace(row["tourney_id"]), strings.TrimSpace(row["match_num"]); tourneyID != "" && matchNum != "" {
		matchID = tourneyID + "_" + matchNum
	} else {
		matchID = CompositeMatchID(matchDate, tournament, winnerID, loserID)
	}

	return &elo.MatchInput{
		MatchID:        matchID,
		TournamentName: tournament,
		Surface:        ClassifySurface(row["surface"], "", tournament),
		MatchDate:      matchDate,
		Round:          strings.TrimSpace(row["round"]),
		Winner: elo.PlayerInput{
			ID:        winnerID,
			Name:      winnerName,
			Country:   strings.TrimSpace(row["winner_ioc"]),
			Hand:      strings.TrimSpace(row["winner_hand"]),
			Height:    parseHeight(row["winner_ht"]),
			BirthYear: parseBirthYear(row["winner_dob"]),
			Rank:      parseRank(row["winner_rank"]),
		},
		Loser: elo.PlayerInput{
			ID:        loserID,
			Name:      loserName,
			Country:   strings.TrimSpace(row["loser_ioc"]),
			Hand:      strings.TrimSpace(row["loser_hand"]),
			Height:    parseHeight(row["loser_ht"]),
			BirthYear: parseBirthYear(row["loser_dob"]),
			Rank:      parseRank(row["loser_rank"]),
		},
		Score: strings.TrimSpace(row["score"]),
	}, nil
}

// parseHeight normalizes an unparsable or NaN height to absent.
func parseHeight(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return nil
	}
	h := int(f)
	return &h
}

// parseBirthYear takes the year off a YYYYMMDD date of birth.
func parseBirthYear(raw string) *int {
	raw = strings.TrimSpace(raw)
	if len(raw) != 8 {
		return nil
	}
	year, err := strconv.Atoi(raw[:4])
	if err != nil || year < 1900 {
		return nil
	}
	return &year
}

func parseRank(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return nil
	}
	r := int(f)
	return &r
}
