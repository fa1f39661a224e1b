// Package dmn holds the leaderboard and game-history records shared by the
// services and every persistence adapter.
package dmn

import (
	"errors"
	"regexp"
	"time"
)

const (
	playerNamePattern   = `^[a-zA-Z0-9_]+$` // Alphanumeric with underscores
	minPlayerNameLength = 3
	maxPlayerNameLength = 20

	defaultHighestLevel = 1
)

var (
	ErrInvalidPlayerName = errors.New("invalid player name")
	ErrPlayerNotFound    = errors.New("player not found")

	playerNameRegex = regexp.MustCompile(playerNamePattern)
)

// PlayerRecord is a player's best result across all finished games.
// The player name is the unique key in every backend.
type PlayerRecord struct {
	Name         string    `bson:"_id" json:"userName"`
	HighScore    int       `bson:"highScore" json:"highScore"`
	HighestLevel int       `bson:"highestLevel" json:"highestLevel"`
	GamesPlayed  int       `bson:"gamesPlayed" json:"gamesPlayed"`
	LastPlayed   time.Time `bson:"lastPlayed,omitempty" json:"lastPlayed,omitempty"`
}

// NewPlayerRecord returns the zero record of a player who has not finished a
// game yet. LastPlayed starts at the creation time.
func NewPlayerRecord(name string) (*PlayerRecord, error) {
	if err := ValidatePlayerName(name); err != nil {
		return nil, err
	}

	return &PlayerRecord{
		Name:         name,
		HighestLevel: defaultHighestLevel,
		LastPlayed:   time.Now().UTC(),
	}, nil
}

// Merge folds one finished game into the record: best score and level are
// kept with max, the game counter grows by one.
func (p PlayerRecord) Merge(score, level int, at time.Time) PlayerRecord {
	p.HighScore = max(p.HighScore, score)
	p.HighestLevel = max(p.HighestLevel, level, defaultHighestLevel)
	p.GamesPlayed++
	p.LastPlayed = at
	return p
}

// ValidatePlayerName checks length and allowed characters.
func ValidatePlayerName(name string) error {
	if len(name) < minPlayerNameLength || len(name) > maxPlayerNameLength {
		return ErrInvalidPlayerName
	}
	if !playerNameRegex.MatchString(name) {
		return ErrInvalidPlayerName
	}
	return nil
}
