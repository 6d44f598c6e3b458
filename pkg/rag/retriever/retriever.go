package retriever

import (
	"context"
	"fmt"
	"sort"

	"haskify-be/pkg/embedding"
	"haskify-be/pkg/rag/scorer"

	"github.com/google/uuid"
)

// DefaultK is the number of chunks returned when the caller passes k <= 0.
const DefaultK = 6

// Origin tells session-uploaded chunks apart from system-provided ones.
type Origin string

const (
	OriginSession Origin = "session"
	OriginSystem  Origin = "system"
)

// Candidate is a chunk eligible for retrieval.
type Candidate struct {
	MaterialID  uuid.UUID
	SourceTitle string
	Origin      Origin
	Index       int
	Text        string
	Embedding   []float32
}

// Result is a ranked chunk. It is computed per request and never persisted.
type Result struct {
	MaterialID  uuid.UUID `json:"material_id"`
	ChunkIndex  int       `json:"chunk_index"`
	Text        string    `json:"text"`
	Score       float64   `json:"score"`
	SourceTitle string    `json:"source_title"`
	Origin      Origin    `json:"origin"`
}

// Strategy scores every candidate against a query. Results strictly above
// Floor are relevant.
type Strategy interface {
	Name() string
	Floor() float64
	Score(ctx context.Context, query string, candidates []Candidate) ([]float64, error)
}

// Lexical counts query terms found in each chunk. No external dependency.
type Lexical struct{}

func (Lexical) Name() string   { return "lexical" }
func (Lexical) Floor() float64 { return 0 }

func (Lexical) Score(_ context.Context, query string, candidates []Candidate) ([]float64, error) {
	terms := scorer.QueryTerms(query)
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = scorer.LexicalScore(terms, c.Text)
	}
	return scores, nil
}

// DefaultMinSimilarity is the vector-mode relevance floor.
const DefaultMinSimilarity = 0.4

// Vector embeds the query fresh on every call and compares it with the
// embeddings stored on the chunks.
type Vector struct {
	Provider      embedding.EmbeddingProvider
	MinSimilarity float64
}

func NewVector(provider embedding.EmbeddingProvider, minSimilarity float64) *Vector {
	return &Vector{Provider: provider, MinSimilarity: minSimilarity}
}

func (v *Vector) Name() string   { return "vector" }
func (v *Vector) Floor() float64 { return v.MinSimilarity }

func (v *Vector) Score(ctx context.Context, query string, candidates []Candidate) ([]float64, error) {
	queryVec, err := v.Provider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = scorer.CosineSimilarity(queryVec, c.Embedding)
	}
	return scores, nil
}

// Retriever ranks candidate chunks for a query.
type Retriever struct {
	strategy Strategy
}

func New(strategy Strategy) *Retriever {
	return &Retriever{strategy: strategy}
}

func (r *Retriever) Mode() string {
	return r.strategy.Name()
}

// Retrieve scores all candidates, sorts them by descending score (ties keep
// candidate order), keeps the top k and only then drops results at or below
// the strategy floor. A scoring failure returns no results.
func (r *Retriever) Retrieve(ctx context.Context, query string, candidates []Candidate, k int) ([]Result, error) {
	if k <= 0 {
		k = DefaultK
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	scores, err := r.strategy.Score(ctx, query, candidates)
	if err != nil {
		return []Result{}, err
	}

	ranked := make([]Result, len(candidates))
	for i, c := range candidates {
		ranked[i] = Result{
			MaterialID:  c.MaterialID,
			ChunkIndex:  c.Index,
			Text:        c.Text,
			Score:       scores[i],
			SourceTitle: c.SourceTitle,
			Origin:      c.Origin,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	floor := r.strategy.Floor()
	out := make([]Result, 0, len(ranked))
	for _, res := range ranked {
		if res.Score > floor {
			out = append(out, res)
		}
	}
	return out, nil
}
