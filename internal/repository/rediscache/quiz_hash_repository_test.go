package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysAreScopedPerSession(t *testing.T) {
	assert.Equal(t, "haskify:quiz:abc:hashes", hashesKey("abc"))
	assert.Equal(t, "haskify:quiz:abc:topics", topicsKey("abc"))
	assert.NotEqual(t, hashesKey("a"), hashesKey("b"))
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL must be set to run Redis tests")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func newSessionID(t *testing.T, repo *QuizHashRepository) string {
	t.Helper()
	sid := uuid.NewString()
	t.Cleanup(func() { repo.Drop(context.Background(), sid) })
	return sid
}

func TestQuizHashRepositoryRejectsDuplicates(t *testing.T) {
	repo := NewQuizHashRepository(setupRedis(t), time.Hour)
	ctx := context.Background()
	sid := newSessionID(t, repo)

	added, err := repo.Add(ctx, sid, "h1", "loops")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, sid, "h1", "loops")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = repo.Add(ctx, sid, "h2", "lists")
	require.NoError(t, err)

	seen, err := repo.Contains(ctx, sid, "h2")
	require.NoError(t, err)
	assert.True(t, seen)
	seen, err = repo.Contains(ctx, uuid.NewString(), "h2")
	require.NoError(t, err)
	assert.False(t, seen)

	topics, err := repo.Topics(ctx, sid)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"loops", "lists"}, topics)

	require.NoError(t, repo.Remove(ctx, sid, "h1"))
	added, err = repo.Add(ctx, sid, "h1", "loops")
	require.NoError(t, err)
	assert.True(t, added)

	require.NoError(t, repo.Drop(ctx, sid))
	seen, err = repo.Contains(ctx, sid, "h2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestQuizHashRepositoryTTLCountsFromCreation(t *testing.T) {
	rdb := setupRedis(t)
	repo := NewQuizHashRepository(rdb, time.Hour)
	ctx := context.Background()
	sid := newSessionID(t, repo)

	_, err := repo.Add(ctx, sid, "h1", "loops")
	require.NoError(t, err)

	// Shorten the live TTL; a later Add must not push it back to an hour.
	require.NoError(t, rdb.Expire(ctx, hashesKey(sid), time.Minute).Err())
	require.NoError(t, rdb.Expire(ctx, topicsKey(sid), time.Minute).Err())

	_, err = repo.Add(ctx, sid, "h2", "lists")
	require.NoError(t, err)

	ttl, err := rdb.TTL(ctx, hashesKey(sid)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	ttl, err = rdb.TTL(ctx, topicsKey(sid)).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
}
