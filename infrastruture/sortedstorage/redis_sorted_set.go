package sortedstorage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisSortedSet ranks members of a Redis sorted set by score, highest first.
type RedisSortedSet struct {
	client *redis.Client
}

// NewRedisSortedSet initializes a RedisSortedSet with the provided Redis client.
func NewRedisSortedSet(client *redis.Client) *RedisSortedSet {
	return &RedisSortedSet{client: client}
}

// Raise stores member with score unless it already holds a greater one. The
// command goes through cmd when given, so it can join a caller's pipeline;
// a nil cmd runs it on the set's own client.
func (rss *RedisSortedSet) Raise(ctx context.Context, cmd redis.Cmdable, key string, score float64, member string) *redis.IntCmd {
	if cmd == nil {
		cmd = rss.client
	}
	return cmd.ZAddGT(ctx, key, redis.Z{Score: score, Member: member})
}

// Tops returns up to amount members with the highest scores. A non-positive
// amount returns every member.
func (rss *RedisSortedSet) Tops(ctx context.Context, key string, amount int64) ([]string, error) {
	stop := amount - 1
	if amount <= 0 {
		stop = -1
	}
	return rss.client.ZRevRange(ctx, key, 0, stop).Result()
}

// Remove deletes the whole set.
func (rss *RedisSortedSet) Remove(ctx context.Context, key string) error {
	return rss.client.Del(ctx, key).Err()
}
