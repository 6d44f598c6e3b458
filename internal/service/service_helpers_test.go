package service

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"time"

	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/repository/inmemory"
	"haskify-be/internal/repository/memory"
	"haskify-be/internal/repository/unitofwork"
	"haskify-be/pkg/events"
	"haskify-be/pkg/extract"
	"haskify-be/pkg/llm"
	"haskify-be/pkg/rag/quizdedup"
	"haskify-be/pkg/rag/retriever"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	mu        sync.Mutex
	replies   []string
	chatErr   error
	fragments []string
	streamErr error
	chats     [][]llm.Message
	chatOpts  []*llm.Options
	streams   [][]llm.Message
	yielded   int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, history)
	f.chatOpts = append(f.chatOpts, llm.ApplyOptions(options...))
	if f.chatErr != nil {
		return "", f.chatErr
	}
	i := len(f.chats) - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i], nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (f *fakeLLM) Stream(ctx context.Context, history []llm.Message, options ...llm.Option) iter.Seq2[string, error] {
	f.mu.Lock()
	f.streams = append(f.streams, history)
	f.mu.Unlock()

	return func(yield func(string, error) bool) {
		for _, fragment := range f.fragments {
			f.mu.Lock()
			f.yielded++
			f.mu.Unlock()
			if !yield(fragment, nil) {
				return
			}
		}
		if f.streamErr != nil {
			yield("", f.streamErr)
		}
	}
}

func (f *fakeLLM) chatCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chats)
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text, taskType string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type testEnv struct {
	uowFactory unitofwork.RepositoryFactory
	llm        *fakeLLM
	embedder   *fakeEmbedder
	hashes     *memory.QuizHashRepository
	cache      *memory.ChunkCacheRepository
	turns      *recordingPublisher
	events     *recordingEvents
	issuer     *serverutils.SessionTokenIssuer

	sessions    ISessionService
	materials   IMaterialService
	tutor       ITutorService
	quiz        IQuizService
	transcripts ITranscriptService
}

type envOption func(*MaterialConfig)

func withVectorMode() envOption {
	return func(c *MaterialConfig) { c.EmbedChunks = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	env := &testEnv{
		uowFactory: inmemory.NewRepositoryFactory(inmemory.NewStore()),
		llm:        &fakeLLM{},
		embedder:   &fakeEmbedder{},
		hashes:     memory.NewQuizHashRepository(time.Hour, time.Hour),
		cache:      memory.NewChunkCacheRepository(time.Hour, time.Hour),
		turns:      &recordingPublisher{},
		events:     &recordingEvents{},
		issuer:     serverutils.NewSessionTokenIssuer("test-secret"),
	}
	log := logger.NewNopLogger()

	cfg := MaterialConfig{
		MaxUploadBytes:    1 << 20,
		MaterialTTL:       time.Hour,
		ChunkSize:         20,
		ChunkOverlap:      5,
		CodeChunkSize:     10,
		CodeOverlap:       2,
		CodeMinLines:      4,
		EmbeddingMaxChars: 8000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var strategy retriever.Strategy = retriever.Lexical{}
	if cfg.EmbedChunks {
		strategy = retriever.NewVector(env.embedder, retriever.DefaultMinSimilarity)
	}
	r := retriever.New(strategy)

	dedup := quizdedup.New(env.hashes, quizdedup.DefaultConfig([]string{"loops", "lists", "functions"}))

	env.sessions = NewSessionService(env.uowFactory, env.issuer, env.hashes, env.cache, env.events, log, time.Hour)
	materials, err := NewMaterialService(env.uowFactory, extract.NewService(extract.NewPDFExtractor(t.TempDir())), env.embedder, env.cache, env.events, log, cfg)
	require.NoError(t, err)
	env.materials = materials
	env.tutor = NewTutorService(env.uowFactory, env.materials, r, env.llm, env.turns, log, TutorConfig{TopK: 6, Temperature: 0.3, HistoryItems: 2})
	env.quiz = NewQuizService(env.uowFactory, env.materials, r, env.llm, dedup, env.events, log, QuizConfig{Model: "quiz-model", TopK: 6, HistoryTurns: 8, HistoryItems: 2})
	env.transcripts = NewTranscriptService(env.uowFactory)
	return env
}

func (e *testEnv) newSession(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := e.sessions.Create(context.Background())
	require.NoError(t, err)
	return resp.SessionId
}

func (e *testEnv) upload(t *testing.T, sessionId *uuid.UUID, filename, content string) *dto.UploadMaterialResponse {
	t.Helper()
	resp, err := e.materials.Upload(context.Background(), &dto.UploadMaterialRequest{
		SessionId: sessionId,
		Filename:  filename,
		MimeType:  "text/plain",
		Data:      []byte(content),
	})
	require.NoError(t, err)
	return resp
}

var errProvider = errors.New("provider unavailable")
