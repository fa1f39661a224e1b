package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/service/i"
)

const (
	defaultSyncBuffer    = 64
	defaultTopLimit      = 10
	defaultSyncTimeout   = 5 * time.Second
	remoteFallbackNotice = "Could not load the online leaderboard. Showing local data."
)

var (
	ErrNilLocalStore = errors.New("local leaderboard store must not be nil")
	ErrNilRecordRepo = errors.New("game record repository must not be nil")
)

var (
	_ i.GameRecorder       = &Leaderboard{}
	_ i.LeaderboardService = &Leaderboard{}
	_ i.CurrentUserStore   = &Leaderboard{}
)

// LeaderboardOptions tunes the remote sync worker.
type LeaderboardOptions struct {
	SyncBuffer  int           // Pending remote writes; further writes are dropped.
	SyncTimeout time.Duration // Deadline of a single remote write.
}

type syncJob func(ctx context.Context)

// Leaderboard fans finished games out to the local key-value store, the game
// history and, when configured, the remote document store. The three stores
// are independent; a failure in one never blocks the others.
type Leaderboard struct {
	local   i.LocalLeaderboard
	records i.GameRecordRepo
	remote  i.RemoteLeaderboard
	logger  i.Logger
	opts    LeaderboardOptions

	jobs     chan syncJob
	quit     chan struct{}
	quitOnce sync.Once
}

// NewLeaderboard wires the stores together. remote may be nil, in which case
// every read is served locally and remote writes are skipped.
func NewLeaderboard(local i.LocalLeaderboard, records i.GameRecordRepo, remote i.RemoteLeaderboard, logger i.Logger, opts *LeaderboardOptions) (*Leaderboard, error) {
	if local == nil {
		return nil, ErrNilLocalStore
	}
	if records == nil {
		return nil, ErrNilRecordRepo
	}
	if opts == nil {
		opts = &LeaderboardOptions{}
	}
	if opts.SyncBuffer <= 0 {
		opts.SyncBuffer = defaultSyncBuffer
	}
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = defaultSyncTimeout
	}

	return &Leaderboard{
		local:   local,
		records: records,
		remote:  remote,
		logger:  logger,
		opts:    *opts,
		jobs:    make(chan syncJob, opts.SyncBuffer),
		quit:    make(chan struct{}),
	}, nil
}

// Run executes queued remote writes one at a time until ctx is cancelled or
// Close is called. It blocks; run it in its own goroutine.
func (l *Leaderboard) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.quit:
			return
		case job := <-l.jobs:
			jobCtx, cancel := context.WithTimeout(ctx, l.opts.SyncTimeout)
			job(jobCtx)
			cancel()
		}
	}
}

// Close stops the worker. Writes still queued are discarded.
func (l *Leaderboard) Close() {
	l.quitOnce.Do(func() {
		close(l.quit)
	})
}

// SetCurrentUser stores name as the current player and makes sure the remote
// store knows about them.
func (l *Leaderboard) SetCurrentUser(ctx context.Context, name string) error {
	if err := dmn.ValidatePlayerName(name); err != nil {
		return err
	}
	if err := l.local.SetCurrentUser(ctx, name); err != nil {
		l.logger.Error(fmt.Sprintf("storing current user %q: %s", name, err))
		return err
	}

	if l.remote == nil {
		return nil
	}
	l.enqueue(func(ctx context.Context) {
		_, err := l.remote.ByName(ctx, name)
		if err == nil {
			return
		}
		if !errors.Is(err, dmn.ErrPlayerNotFound) {
			l.logger.Warning(fmt.Sprintf("looking up remote player %q: %s", name, err))
			return
		}

		rec, err := dmn.NewPlayerRecord(name)
		if err != nil {
			return
		}
		if err := l.remote.Save(ctx, rec); err != nil {
			l.logger.Warning(fmt.Sprintf("creating remote player %q: %s", name, err))
			return
		}
		l.logger.Info(fmt.Sprintf("created remote player %q", name))
	}, nil)
	return nil
}

// CurrentUser returns the stored player name, or "" when there is none or
// the store fails.
func (l *Leaderboard) CurrentUser(ctx context.Context) string {
	name, err := l.local.CurrentUser(ctx)
	if err != nil {
		l.logger.Warning(fmt.Sprintf("reading current user: %s", err))
		return ""
	}
	return name
}

// RecordGame folds a finished game into the local leaderboard, appends it to
// the history and queues the remote upsert. Failures are logged and
// swallowed. done is called once the remote write has been attempted.
func (l *Leaderboard) RecordGame(ctx context.Context, player string, score, level int, elapsed time.Duration, done func(ok bool)) {
	if done == nil {
		done = func(bool) {}
	}
	if err := dmn.ValidatePlayerName(player); err != nil {
		l.logger.Warning(fmt.Sprintf("dropping game of invalid player %q", player))
		done(false)
		return
	}

	if _, err := l.local.Upsert(ctx, player, score, level); err != nil {
		l.logger.Error(fmt.Sprintf("local upsert for %q: %s", player, err))
	}

	rec := &dmn.GameRecord{
		PlayerName:  player,
		Score:       score,
		Level:       level,
		TimeSeconds: int(math.Round(elapsed.Seconds())),
		Difficulty:  dmn.DefaultDifficulty,
		Date:        time.Now(),
	}
	if _, err := l.records.Append(ctx, rec); err != nil {
		l.logger.Error(fmt.Sprintf("appending game record for %q: %s", player, err))
	}

	if l.remote == nil {
		done(false)
		return
	}
	l.enqueue(func(ctx context.Context) {
		_, err := l.remote.Upsert(ctx, player, score, level)
		if err != nil {
			l.logger.Warning(fmt.Sprintf("remote upsert for %q: %s", player, err))
		}
		done(err == nil)
	}, done)
}

// enqueue hands job to the worker without blocking. When the buffer is full
// or the worker is gone the job is dropped and onDrop, if set, gets false.
func (l *Leaderboard) enqueue(job syncJob, onDrop func(bool)) {
	select {
	case <-l.quit:
	default:
		select {
		case l.jobs <- job:
			return
		default:
		}
	}

	l.logger.Warning("remote sync queue unavailable, dropping write")
	if onDrop != nil {
		onDrop(false)
	}
}

// Top reads the remote ranking. Without a remote store, or when it fails,
// the local ranking is returned with a notice.
func (l *Leaderboard) Top(ctx context.Context, limit int) dmn.LeaderboardView {
	if limit <= 0 {
		limit = defaultTopLimit
	}

	if l.remote == nil {
		return l.LocalTop(ctx, limit)
	}

	entries, err := l.remote.Top(ctx, limit)
	if err != nil {
		l.logger.Warning(fmt.Sprintf("loading remote leaderboard: %s", err))
		view := l.LocalTop(ctx, limit)
		view.Notice = remoteFallbackNotice
		return view
	}

	return dmn.LeaderboardView{Entries: entries, Source: dmn.SourceRemote}
}

// LocalTop reads the local ranking. A failing store yields an empty list.
func (l *Leaderboard) LocalTop(ctx context.Context, limit int) dmn.LeaderboardView {
	if limit <= 0 {
		limit = defaultTopLimit
	}

	entries, err := l.local.Top(ctx, limit)
	if err != nil {
		l.logger.Error(fmt.Sprintf("loading local leaderboard: %s", err))
		entries = []dmn.PlayerRecord{}
	}
	return dmn.LeaderboardView{Entries: entries, Source: dmn.SourceLocal}
}

// Player prefers the remote record and falls back to the local one.
func (l *Leaderboard) Player(ctx context.Context, name string) (*dmn.PlayerRecord, error) {
	if err := dmn.ValidatePlayerName(name); err != nil {
		return nil, err
	}

	if l.remote != nil {
		rec, err := l.remote.ByName(ctx, name)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, dmn.ErrPlayerNotFound) {
			l.logger.Warning(fmt.Sprintf("loading remote player %q: %s", name, err))
		}
	}

	return l.local.ByName(ctx, name)
}

// ClearLocal wipes the local leaderboard. The current player is kept.
func (l *Leaderboard) ClearLocal(ctx context.Context) error {
	if err := l.local.Clear(ctx); err != nil {
		l.logger.Error(fmt.Sprintf("clearing local leaderboard: %s", err))
		return err
	}
	l.logger.Info("local leaderboard cleared")
	return nil
}

func (l *Leaderboard) History(ctx context.Context) ([]dmn.GameRecord, error) {
	return l.records.All(ctx)
}

func (l *Leaderboard) TopRecords(ctx context.Context, limit int) ([]dmn.GameRecord, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	return l.records.Top(ctx, limit)
}

func (l *Leaderboard) PlayerRecords(ctx context.Context, name string) ([]dmn.GameRecord, error) {
	return l.records.ByPlayer(ctx, name)
}

// Stats summarises the history.
func (l *Leaderboard) Stats(ctx context.Context) (dmn.ScoreStats, error) {
	best, err := l.records.MaxScore(ctx)
	if err != nil {
		return dmn.ScoreStats{}, err
	}
	avg, err := l.records.AverageScore(ctx)
	if err != nil {
		return dmn.ScoreStats{MaxScore: best}, err
	}
	return dmn.ScoreStats{MaxScore: best, AverageScore: avg}, nil
}

func (l *Leaderboard) ClearRecords(ctx context.Context) error {
	if err := l.records.ClearAll(ctx); err != nil {
		l.logger.Error(fmt.Sprintf("clearing game records: %s", err))
		return err
	}
	l.logger.Info("game records cleared")
	return nil
}
