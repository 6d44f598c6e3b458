package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 6, cfg.RAG.TopK)
	assert.Equal(t, 900, cfg.RAG.ChunkSize)
	assert.Equal(t, 120, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 0.4, cfg.RAG.MinSimilarity)
	assert.Equal(t, 5, cfg.Quiz.MaxAttempts)
	assert.Equal(t, 2*time.Hour, cfg.Quiz.Retention)
	assert.Equal(t, 15*time.Minute, cfg.Quiz.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.Runner.Timeout)
	assert.NotEmpty(t, cfg.Quiz.Topics)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_MODE", "vector")
	t.Setenv("RETRIEVAL_TOP_K", "3")
	t.Setenv("QUIZ_HASH_RETENTION", "30m")
	t.Setenv("TUTOR_TEMPERATURE", "0.5")
	t.Setenv("QUIZ_TOPICS", "loops, lists,,dicts")
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "vector", cfg.RAG.Mode)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, 30*time.Minute, cfg.Quiz.Retention)
	assert.Equal(t, 0.5, cfg.Ai.TutorTemperature)
	assert.Equal(t, []string{"loops", "lists", "dicts"}, cfg.Quiz.Topics)
	assert.Equal(t, 900, cfg.RAG.ChunkSize)
}
