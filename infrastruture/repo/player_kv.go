package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	dmn "github.com/beka-birhanu/vinom-snake/domain"
	"github.com/beka-birhanu/vinom-snake/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKVPrefix = "snake"

	playerKeyFmt      = "%s:player:%s"
	leaderboardKeyFmt = "%s:leaderboard"
	currentUserKeyFmt = "%s:current_user"

	fieldHighScore    = "highScore"
	fieldHighestLevel = "highestLevel"
	fieldGamesPlayed  = "gamesPlayed"
	fieldLastPlayed   = "lastPlayed"
)

var _ i.LocalLeaderboard = &RedisLeaderboard{}

// RedisLeaderboard keeps one hash per player plus a sorted set ranking the
// players by high score.
type RedisLeaderboard struct {
	client *redis.Client
	scores *sortedstorage.RedisSortedSet
	locker *redsync.Redsync
	prefix string
}

// NewRedisLeaderboard creates a RedisLeaderboard whose keys start with prefix.
func NewRedisLeaderboard(client *redis.Client, prefix string) *RedisLeaderboard {
	if prefix == "" {
		prefix = defaultKVPrefix
	}

	return &RedisLeaderboard{
		client: client,
		scores: sortedstorage.NewRedisSortedSet(client),
		locker: redsync.New(goredis.NewPool(client)),
		prefix: prefix,
	}
}

// Upsert merges a finished game into the player's record under a per-player
// lock, so concurrent games of the same player never lose a count.
func (r *RedisLeaderboard) Upsert(ctx context.Context, name string, score, level int) (*dmn.PlayerRecord, error) {
	rec, err := dmn.NewPlayerRecord(name)
	if err != nil {
		return nil, err
	}

	mutex := r.locker.NewMutex(r.playerKey(name) + ":lock")
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("obtaining player lock: %w", err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	existing, err := r.ByName(ctx, name)
	switch {
	case err == nil:
		rec = existing
	case !errors.Is(err, dmn.ErrPlayerNotFound):
		return nil, err
	}

	merged := rec.Merge(score, level, time.Now())
	if err := r.write(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Top returns up to limit records, best first.
func (r *RedisLeaderboard) Top(ctx context.Context, limit int) ([]dmn.PlayerRecord, error) {
	if limit <= 0 {
		return []dmn.PlayerRecord{}, nil
	}
	return r.ranked(ctx, int64(limit))
}

// ByName retrieves a player's record.
// Returns dmn.ErrPlayerNotFound if the player has no record.
func (r *RedisLeaderboard) ByName(ctx context.Context, name string) (*dmn.PlayerRecord, error) {
	fields, err := r.client.HGetAll(ctx, r.playerKey(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}
	if len(fields) == 0 {
		return nil, dmn.ErrPlayerNotFound
	}
	return decodePlayer(name, fields), nil
}

// Clear removes every player record. The current user is kept.
func (r *RedisLeaderboard) Clear(ctx context.Context) error {
	names, err := r.scores.Tops(ctx, r.leaderboardKey(), 0)
	if err != nil {
		return fmt.Errorf("unexpected error: %w", err)
	}

	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, r.playerKey(name))
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("unexpected error: %w", err)
		}
	}
	return r.scores.Remove(ctx, r.leaderboardKey())
}

// CurrentUser returns the remembered player name, empty if none.
func (r *RedisLeaderboard) CurrentUser(ctx context.Context) (string, error) {
	name, err := r.client.Get(ctx, r.currentUserKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("unexpected error: %w", err)
	}
	return name, nil
}

// SetCurrentUser remembers the player name.
func (r *RedisLeaderboard) SetCurrentUser(ctx context.Context, name string) error {
	if err := dmn.ValidatePlayerName(name); err != nil {
		return err
	}
	return r.client.Set(ctx, r.currentUserKey(), name, 0).Err()
}

func (r *RedisLeaderboard) ranked(ctx context.Context, amount int64) ([]dmn.PlayerRecord, error) {
	names, err := r.scores.Tops(ctx, r.leaderboardKey(), amount)
	if err != nil {
		return nil, fmt.Errorf("unexpected error: %w", err)
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(names))
	for idx, name := range names {
		cmds[idx] = pipe.HGetAll(ctx, r.playerKey(name))
	}
	if len(names) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("unexpected error: %w", err)
		}
	}

	records := make([]dmn.PlayerRecord, 0, len(names))
	for idx, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		records = append(records, *decodePlayer(names[idx], fields))
	}
	return records, nil
}

// write stores a merged record. The ranking only moves up, matching the
// max-merge of the hash.
func (r *RedisLeaderboard) write(ctx context.Context, rec *dmn.PlayerRecord) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.playerKey(rec.Name),
		fieldHighScore, rec.HighScore,
		fieldHighestLevel, rec.HighestLevel,
		fieldGamesPlayed, rec.GamesPlayed,
		fieldLastPlayed, rec.LastPlayed.UnixMilli(),
	)
	r.scores.Raise(ctx, pipe, r.leaderboardKey(), float64(rec.HighScore), rec.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("unexpected error: %w", err)
	}
	return nil
}

func (r *RedisLeaderboard) playerKey(name string) string {
	return fmt.Sprintf(playerKeyFmt, r.prefix, name)
}

func (r *RedisLeaderboard) leaderboardKey() string {
	return fmt.Sprintf(leaderboardKeyFmt, r.prefix)
}

func (r *RedisLeaderboard) currentUserKey() string {
	return fmt.Sprintf(currentUserKeyFmt, r.prefix)
}

// decodePlayer reads the hash fields. Missing or malformed fields fall back
// to the zero-record defaults.
func decodePlayer(name string, fields map[string]string) *dmn.PlayerRecord {
	rec := &dmn.PlayerRecord{
		Name:         name,
		HighScore:    atoiOr(fields[fieldHighScore], 0),
		HighestLevel: atoiOr(fields[fieldHighestLevel], 1),
		GamesPlayed:  atoiOr(fields[fieldGamesPlayed], 0),
	}
	if ms, err := strconv.ParseInt(fields[fieldLastPlayed], 10, 64); err == nil && ms > 0 {
		rec.LastPlayed = time.UnixMilli(ms)
	}
	return rec
}

func atoiOr(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
