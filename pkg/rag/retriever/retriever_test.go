package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexicalCandidates(texts ...string) []Candidate {
	id := uuid.New()
	out := make([]Candidate, len(texts))
	for i, t := range texts {
		out[i] = Candidate{MaterialID: id, SourceTitle: "notes.pdf", Origin: OriginSession, Index: i + 1, Text: t}
	}
	return out
}

func TestLexicalRetrieve(t *testing.T) {
	r := New(Lexical{})
	candidates := lexicalCandidates("for loops repeat", "python is a language", "cats are mammals")

	results, err := r.Retrieve(context.Background(), "loops in python", candidates, 0)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].ChunkIndex)
	assert.Equal(t, 2, results[1].ChunkIndex)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, "notes.pdf", results[0].SourceTitle)
	assert.Equal(t, "lexical", r.Mode())
}

func TestRetrieveFloorAppliedAfterTruncation(t *testing.T) {
	r := New(Lexical{})
	candidates := lexicalCandidates(
		"python loops",  // 2
		"python",        // 1
		"loops",         // 1
		"nothing here",  // 0
		"python again",  // 1
	)

	results, err := r.Retrieve(context.Background(), "python loops", candidates, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []int{1, 2}, []int{results[0].ChunkIndex, results[1].ChunkIndex})

	results, err = r.Retrieve(context.Background(), "python loops", candidates, 10)
	require.NoError(t, err)
	require.Len(t, results, 4)
	// stable order among equal scores
	assert.Equal(t, []int{1, 2, 3, 5}, []int{results[0].ChunkIndex, results[1].ChunkIndex, results[2].ChunkIndex, results[3].ChunkIndex})
}

type fixedStrategy struct {
	scores []float64
	floor  float64
}

func (f fixedStrategy) Name() string   { return "fixed" }
func (f fixedStrategy) Floor() float64 { return f.floor }
func (f fixedStrategy) Score(context.Context, string, []Candidate) ([]float64, error) {
	return f.scores, nil
}

func TestRetrieveInvariants(t *testing.T) {
	scores := []float64{0.1, 0.9, 0.45, 0.4, 0.8, 0.95, 0.3, 0.41}
	candidates := lexicalCandidates("a", "b", "c", "d", "e", "f", "g", "h")

	for k := 1; k <= len(scores)+1; k++ {
		r := New(fixedStrategy{scores: scores, floor: 0.4})
		results, err := r.Retrieve(context.Background(), "q", candidates, k)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(results), k)
		for i, res := range results {
			assert.Greater(t, res.Score, 0.4)
			if i > 0 {
				assert.GreaterOrEqual(t, results[i-1].Score, res.Score)
			}
		}
	}
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s stubEmbedder) Generate(context.Context, string, string) ([]float32, error) {
	return s.vec, s.err
}

func TestVectorRetrieve(t *testing.T) {
	candidates := []Candidate{
		{Index: 1, Text: "close", Embedding: []float32{1, 0.1}},
		{Index: 2, Text: "orthogonal", Embedding: []float32{0, 1}},
		{Index: 3, Text: "no embedding"},
		{Index: 4, Text: "exact", Embedding: []float32{2, 0}},
	}

	r := New(NewVector(stubEmbedder{vec: []float32{1, 0}}, DefaultMinSimilarity))
	results, err := r.Retrieve(context.Background(), "q", candidates, 6)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 4, results[0].ChunkIndex)
	assert.Equal(t, 1, results[1].ChunkIndex)
	assert.Equal(t, "vector", r.Mode())
}

func TestVectorRetrieveAllBelowFloor(t *testing.T) {
	candidates := []Candidate{
		{Index: 1, Embedding: []float32{0.3, 1}},
		{Index: 2, Embedding: []float32{0, 1}},
	}
	r := New(NewVector(stubEmbedder{vec: []float32{1, 0}}, 0.4))

	results, err := r.Retrieve(context.Background(), "q", candidates, 6)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorRetrieveFailsClosed(t *testing.T) {
	candidates := lexicalCandidates("python loops")
	r := New(NewVector(stubEmbedder{err: errors.New("rate limited")}, 0.4))

	results, err := r.Retrieve(context.Background(), "python loops", candidates, 6)
	assert.Error(t, err)
	assert.Empty(t, results)
}

func TestRetrieveNoCandidates(t *testing.T) {
	results, err := New(Lexical{}).Retrieve(context.Background(), "anything", nil, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}
