package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
)

// Leaderboard is the uniform upsert/query contract every leaderboard backend
// implements, whatever store sits behind it.
type Leaderboard interface {
	// Upsert folds a finished game into the player's record: score and level
	// are max-merged, games played grows by one. Creates the record if absent.
	Upsert(ctx context.Context, name string, score, level int) (*dmn.PlayerRecord, error)

	// Top returns up to limit records ordered by high score, best first.
	Top(ctx context.Context, limit int) ([]dmn.PlayerRecord, error)

	// ByName returns the player's record or dmn.ErrPlayerNotFound.
	ByName(ctx context.Context, name string) (*dmn.PlayerRecord, error)
}

// RemoteLeaderboard is the document store variant. Save seeds the zero record
// of a player who just signed in.
type RemoteLeaderboard interface {
	Leaderboard

	// Save writes the record as given, replacing any existing one.
	Save(ctx context.Context, rec *dmn.PlayerRecord) error
}

// LocalLeaderboard is the on-device key-value variant. Besides the records it
// remembers the name of the current player.
type LocalLeaderboard interface {
	Leaderboard

	// Clear removes every record. The current player name is kept.
	Clear(ctx context.Context) error

	CurrentUser(ctx context.Context) (string, error)
	SetCurrentUser(ctx context.Context, name string) error
}

// GameRecordRepo is the append-only history of finished games.
type GameRecordRepo interface {
	Append(ctx context.Context, rec *dmn.GameRecord) (int64, error)

	// All returns every record ordered by score, best first.
	All(ctx context.Context) ([]dmn.GameRecord, error)
	Top(ctx context.Context, limit int) ([]dmn.GameRecord, error)
	ByPlayer(ctx context.Context, name string) ([]dmn.GameRecord, error)

	// MaxScore and AverageScore return 0 on an empty history.
	MaxScore(ctx context.Context) (int, error)
	AverageScore(ctx context.Context) (float64, error)

	ClearAll(ctx context.Context) error
}
