package memory

import (
	"time"

	"haskify-be/pkg/rag/retriever"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ChunkCacheRepository holds the retrieval candidates of active materials so
// a tutor turn does not reload them from Postgres.
type ChunkCacheRepository struct {
	cache *cache.Cache
}

func NewChunkCacheRepository(ttl, cleanupInterval time.Duration) *ChunkCacheRepository {
	return &ChunkCacheRepository{cache: cache.New(ttl, cleanupInterval)}
}

func (r *ChunkCacheRepository) Get(materialID uuid.UUID) ([]retriever.Candidate, bool) {
	if x, found := r.cache.Get(materialID.String()); found {
		return x.([]retriever.Candidate), true
	}
	return nil, false
}

func (r *ChunkCacheRepository) Set(materialID uuid.UUID, candidates []retriever.Candidate) {
	r.cache.Set(materialID.String(), candidates, cache.DefaultExpiration)
}

func (r *ChunkCacheRepository) Invalidate(materialID uuid.UUID) {
	r.cache.Delete(materialID.String())
}

func (r *ChunkCacheRepository) Flush() {
	r.cache.Flush()
}

// Sweep drops expired entries now instead of waiting for the janitor.
func (r *ChunkCacheRepository) Sweep() {
	r.cache.DeleteExpired()
}
