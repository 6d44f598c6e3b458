package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "haskify:quiz"

// QuizHashRepository stores per-session quiz hash sets as Redis sets so that
// several API instances share deduplication state. The TTL is set once when
// the set is created, so sets expire retention after their first hash.
type QuizHashRepository struct {
	rdb       *redis.Client
	retention time.Duration
}

func NewQuizHashRepository(rdb *redis.Client, retention time.Duration) *QuizHashRepository {
	return &QuizHashRepository{rdb: rdb, retention: retention}
}

func hashesKey(sessionID string) string { return fmt.Sprintf("%s:%s:hashes", keyPrefix, sessionID) }
func topicsKey(sessionID string) string { return fmt.Sprintf("%s:%s:topics", keyPrefix, sessionID) }

func (r *QuizHashRepository) Add(ctx context.Context, sessionID, hash, topic string) (bool, error) {
	var added *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, hashesKey(sessionID), hash)
		pipe.ExpireNX(ctx, hashesKey(sessionID), r.retention)
		if topic != "" {
			pipe.SAdd(ctx, topicsKey(sessionID), topic)
			pipe.ExpireNX(ctx, topicsKey(sessionID), r.retention)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis add quiz hash: %w", err)
	}
	return added.Val() == 1, nil
}

func (r *QuizHashRepository) Contains(ctx context.Context, sessionID, hash string) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, hashesKey(sessionID), hash).Result()
	if err != nil {
		return false, fmt.Errorf("redis check quiz hash: %w", err)
	}
	return ok, nil
}

func (r *QuizHashRepository) Remove(ctx context.Context, sessionID, hash string) error {
	if err := r.rdb.SRem(ctx, hashesKey(sessionID), hash).Err(); err != nil {
		return fmt.Errorf("redis remove quiz hash: %w", err)
	}
	return nil
}

func (r *QuizHashRepository) Topics(ctx context.Context, sessionID string) ([]string, error) {
	topics, err := r.rdb.SMembers(ctx, topicsKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis quiz topics: %w", err)
	}
	return topics, nil
}

func (r *QuizHashRepository) Drop(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, hashesKey(sessionID), topicsKey(sessionID)).Err()
}
