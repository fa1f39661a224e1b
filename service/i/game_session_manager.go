package i

import (
	"context"
	"time"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/google/uuid"
)

// GameSessionManager owns the running games, at most one per player.
type GameSessionManager interface {
	// NewSession tears down the player's running game, if any, and starts a new one.
	NewSession(ctx context.Context, player string) (uuid.UUID, game.State, error)

	// Turn queues a direction for the next tick of the player's session.
	Turn(sessionID uuid.UUID, player string, d game.Direction) error

	// State returns the latest snapshot of a session.
	State(sessionID uuid.UUID) (game.State, error)

	// Subscribe streams snapshots of a session until it ends or cancel is called.
	Subscribe(sessionID uuid.UUID) (updates <-chan game.State, cancel func(), err error)

	// EndSession tears the session down without recording a result.
	EndSession(sessionID uuid.UUID, player string) error

	// Screen returns what the player is currently looking at.
	Screen(player string) dmn.Screen

	// ShowMenu and ShowLeaderboard move the player to another screen,
	// tearing down a running game without recording it.
	ShowMenu(player string)
	ShowLeaderboard(player string, view dmn.LeaderboardView)
}

// GameRecorder receives the result of every game that reached its terminal state.
type GameRecorder interface {
	// RecordGame never fails the caller. done, when not nil, is told whether
	// the remote write succeeded.
	RecordGame(ctx context.Context, player string, score, level int, elapsed time.Duration, done func(ok bool))
}

// LeaderboardService is the read side used by the HTTP controllers.
type LeaderboardService interface {
	Top(ctx context.Context, limit int) dmn.LeaderboardView
	LocalTop(ctx context.Context, limit int) dmn.LeaderboardView
	Player(ctx context.Context, name string) (*dmn.PlayerRecord, error)
	ClearLocal(ctx context.Context) error

	History(ctx context.Context) ([]dmn.GameRecord, error)
	TopRecords(ctx context.Context, limit int) ([]dmn.GameRecord, error)
	PlayerRecords(ctx context.Context, name string) ([]dmn.GameRecord, error)
	Stats(ctx context.Context) (dmn.ScoreStats, error)
	ClearRecords(ctx context.Context) error
}
