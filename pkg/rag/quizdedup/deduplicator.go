package quizdedup

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrGenerationExhausted is returned when no valid, unseen quiz was produced
// within the attempt ceiling.
var ErrGenerationExhausted = errors.New("quiz generation exhausted")

// HashStore keeps one hash set per session. Sets are created lazily on the
// first Add and dropped once older than the store's retention window.
// Implementations must be safe for concurrent use.
type HashStore interface {
	// Add inserts hash into the session's set and reports whether it was new.
	Add(ctx context.Context, sessionID, hash, topic string) (bool, error)
	Contains(ctx context.Context, sessionID, hash string) (bool, error)
	// Remove deletes hash from the session's set. Recorded topics stay.
	Remove(ctx context.Context, sessionID, hash string) error
	Topics(ctx context.Context, sessionID string) ([]string, error)
	Drop(ctx context.Context, sessionID string) error
}

// Attempt is handed to the generator on every try. Each retry receives a
// fresh value carrying everything learned from previous tries.
type Attempt struct {
	Number       int // 0-based
	Temperature  float64
	Avoid        []string
	UnusedTopics []string
}

// GenerateFunc produces one candidate quiz. Returning an error wrapping
// ErrInvalidQuiz consumes the attempt; any other error aborts generation.
type GenerateFunc func(ctx context.Context, attempt Attempt) (*Quiz, error)

type Config struct {
	MaxAttempts     int
	BaseTemperature float64
	TemperatureStep float64
	MaxTemperature  float64
	Topics          []string
}

func DefaultConfig(topics []string) Config {
	return Config{
		MaxAttempts:     5,
		BaseTemperature: 0.7,
		TemperatureStep: 0.1,
		MaxTemperature:  1.2,
		Topics:          topics,
	}
}

type Deduplicator struct {
	store HashStore
	cfg   Config
}

func New(store HashStore, cfg Config) *Deduplicator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.MaxTemperature <= 0 {
		cfg.MaxTemperature = 2
	}
	return &Deduplicator{store: store, cfg: cfg}
}

// CheckAndRecord accepts quiz when its question has not been seen in the
// session and records it. A repeated question is always rejected.
func (d *Deduplicator) CheckAndRecord(ctx context.Context, sessionID string, quiz Quiz) (bool, error) {
	return d.store.Add(ctx, sessionID, ContentHash(quiz.Question), quiz.Topic)
}

// Release removes the quiz's question from the session's set so it can be
// asked again.
func (d *Deduplicator) Release(ctx context.Context, sessionID string, quiz Quiz) error {
	return d.store.Remove(ctx, sessionID, ContentHash(quiz.Question))
}

// Forget drops the session's hash set.
func (d *Deduplicator) Forget(ctx context.Context, sessionID string) error {
	return d.store.Drop(ctx, sessionID)
}

func (d *Deduplicator) temperature(n int) float64 {
	t := d.cfg.BaseTemperature + d.cfg.TemperatureStep*float64(n)
	if t > d.cfg.MaxTemperature {
		return d.cfg.MaxTemperature
	}
	return t
}

func (d *Deduplicator) unusedTopics(ctx context.Context, sessionID string, extraUsed []string) ([]string, error) {
	used, err := d.store.Topics(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	used = append(used, extraUsed...)

	var unused []string
	for _, t := range d.cfg.Topics {
		if !slices.Contains(used, t) {
			unused = append(unused, t)
		}
	}
	if len(unused) == 0 {
		return slices.Clone(d.cfg.Topics), nil
	}
	return unused, nil
}

// Generate calls gen until it yields a valid quiz whose question is new for
// the session, escalating the temperature and widening the avoid list on
// every retry.
func (d *Deduplicator) Generate(ctx context.Context, sessionID string, gen GenerateFunc) (*Quiz, error) {
	var avoid []string
	var rejectedTopics []string

	for n := 0; n < d.cfg.MaxAttempts; n++ {
		topics, err := d.unusedTopics(ctx, sessionID, rejectedTopics)
		if err != nil {
			return nil, fmt.Errorf("load quiz topics: %w", err)
		}

		attempt := Attempt{
			Number:       n,
			Temperature:  d.temperature(n),
			Avoid:        slices.Clone(avoid),
			UnusedTopics: topics,
		}

		quiz, err := gen(ctx, attempt)
		if err == nil && quiz == nil {
			err = fmt.Errorf("%w: no quiz produced", ErrInvalidQuiz)
		}
		if err == nil {
			err = quiz.Validate()
		}
		if err != nil {
			if errors.Is(err, ErrInvalidQuiz) {
				avoid = append(avoid, "Respond with one JSON object only, with exactly 4 choices and correctIndex between 0 and 3.")
				continue
			}
			return nil, err
		}

		accepted, err := d.CheckAndRecord(ctx, sessionID, *quiz)
		if err != nil {
			return nil, fmt.Errorf("record quiz hash: %w", err)
		}
		if accepted {
			return quiz, nil
		}

		avoid = append(avoid, fmt.Sprintf("Do not repeat or rephrase this earlier question: %q", quiz.Question))
		if quiz.Topic != "" {
			rejectedTopics = append(rejectedTopics, quiz.Topic)
		}
	}

	return nil, ErrGenerationExhausted
}
