package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type quizHashSet struct {
	mu        sync.Mutex
	createdAt time.Time
	hashes    map[string]struct{}
	topics    []string
}

// QuizHashRepository keeps per-session quiz hash sets in process memory.
// A set expires retention after its creation; reads and writes never extend
// it. Expired sets are purged every sweep interval.
type QuizHashRepository struct {
	mu        sync.Mutex
	cache     *cache.Cache
	retention time.Duration
}

func NewQuizHashRepository(retention, sweepInterval time.Duration) *QuizHashRepository {
	return &QuizHashRepository{
		cache:     cache.New(retention, sweepInterval),
		retention: retention,
	}
}

func (r *QuizHashRepository) lookup(sessionID string) (*quizHashSet, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*quizHashSet), true
	}
	return nil, false
}

func (r *QuizHashRepository) getOrCreate(sessionID string) *quizHashSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.lookup(sessionID); ok {
		return set
	}
	set := &quizHashSet{createdAt: time.Now(), hashes: make(map[string]struct{})}
	r.cache.Set(sessionID, set, r.retention)
	return set
}

func (r *QuizHashRepository) Add(_ context.Context, sessionID, hash, topic string) (bool, error) {
	set := r.getOrCreate(sessionID)

	set.mu.Lock()
	defer set.mu.Unlock()

	if _, seen := set.hashes[hash]; seen {
		return false, nil
	}
	set.hashes[hash] = struct{}{}
	if topic != "" && !slices.Contains(set.topics, topic) {
		set.topics = append(set.topics, topic)
	}
	return true, nil
}

func (r *QuizHashRepository) Contains(_ context.Context, sessionID, hash string) (bool, error) {
	set, ok := r.lookup(sessionID)
	if !ok {
		return false, nil
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	_, seen := set.hashes[hash]
	return seen, nil
}

func (r *QuizHashRepository) Remove(_ context.Context, sessionID, hash string) error {
	set, ok := r.lookup(sessionID)
	if !ok {
		return nil
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	delete(set.hashes, hash)
	return nil
}

func (r *QuizHashRepository) Topics(_ context.Context, sessionID string) ([]string, error) {
	set, ok := r.lookup(sessionID)
	if !ok {
		return nil, nil
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	return slices.Clone(set.topics), nil
}

func (r *QuizHashRepository) Drop(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

// Count returns the number of live session sets.
func (r *QuizHashRepository) Count() int {
	return r.cache.ItemCount()
}

// Sweep purges expired sets immediately.
func (r *QuizHashRepository) Sweep() {
	r.cache.DeleteExpired()
}
