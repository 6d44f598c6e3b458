package service

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/repository/unitofwork"
	"haskify-be/pkg/llm"
	"haskify-be/pkg/rag/assembler"
	"haskify-be/pkg/rag/intent"
	"haskify-be/pkg/rag/prompt"
	"haskify-be/pkg/rag/retriever"

	"github.com/google/uuid"
)

type ITutorService interface {
	Ask(ctx context.Context, sessionId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
	Stream(ctx context.Context, sessionId uuid.UUID, req *dto.AskRequest) iter.Seq2[string, error]
}

type TutorConfig struct {
	TopK         int
	Temperature  float64
	HistoryItems int
}

type tutorService struct {
	uowFactory       unitofwork.RepositoryFactory
	materialService  IMaterialService
	retriever        *retriever.Retriever
	llmProvider      llm.LLMProvider
	publisherService IPublisherService
	logger           logger.ILogger
	cfg              TutorConfig
}

func NewTutorService(
	uowFactory unitofwork.RepositoryFactory,
	materialService IMaterialService,
	retriever *retriever.Retriever,
	llmProvider llm.LLMProvider,
	publisherService IPublisherService,
	logger logger.ILogger,
	cfg TutorConfig,
) ITutorService {
	return &tutorService{
		uowFactory:       uowFactory,
		materialService:  materialService,
		retriever:        retriever,
		llmProvider:      llmProvider,
		publisherService: publisherService,
		logger:           logger,
		cfg:              cfg,
	}
}

// tutorTurn is a prepared tutor request. fixedReply is set when the gate
// answers without the model.
type tutorTurn struct {
	intent     intent.Intent
	fixedReply string
	messages   []llm.Message
	retrieved  int
}

func (s *tutorService) Ask(ctx context.Context, sessionId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	reply, err := llm.Collect(s.Stream(ctx, sessionId, req))
	if err != nil {
		return nil, err
	}
	return &dto.AskResponse{Response: reply}, nil
}

// Stream yields the reply fragments in arrival order. Stopping the iteration
// stops reading from the provider; the turn is only recorded once the reply
// is complete.
func (s *tutorService) Stream(ctx context.Context, sessionId uuid.UUID, req *dto.AskRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		turn := s.prepare(ctx, sessionId, req)
		if !turn.intent.NeedsModel() {
			s.recordTurn(ctx, sessionId, req.Query, turn.fixedReply, turn)
			yield(turn.fixedReply, nil)
			return
		}

		var reply strings.Builder
		for fragment, err := range s.llmProvider.Stream(ctx, turn.messages, llm.WithTemperature(s.cfg.Temperature)) {
			if err != nil {
				s.logger.Error("TUTOR", "Chat completion failed", map[string]interface{}{
					"session_id": sessionId,
					"error":      err.Error(),
				})
				yield("", fmt.Errorf("%w: %v", ErrModelUnavailable, err))
				return
			}
			reply.WriteString(fragment)
			if !yield(fragment, nil) {
				return
			}
		}

		s.recordTurn(ctx, sessionId, req.Query, reply.String(), turn)
	}
}

func (s *tutorService) prepare(ctx context.Context, sessionId uuid.UUID, req *dto.AskRequest) tutorTurn {
	gate := intent.Classify(req.Query, req.Code)
	switch gate.Kind {
	case intent.KindGreeting:
		return tutorTurn{intent: gate, fixedReply: constant.TutorGreetingReply}
	case intent.KindOffTopic:
		return tutorTurn{intent: gate, fixedReply: constant.TutorOffTopicReply}
	}

	results := retrieveContext(ctx, s.materialService, s.retriever, s.logger, "TUTOR", sessionId, req.Query, req.MaterialIds, s.cfg.TopK)

	history, err := loadQuizHistory(ctx, s.uowFactory, sessionId, s.cfg.HistoryItems)
	if err != nil {
		s.logger.Warn("TUTOR", "Failed to load quiz history", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	contextBlock := assembler.AssembleContext(results, history)
	return tutorTurn{
		intent:    gate,
		messages:  prompt.NewTutorBuilder(req.Query, req.Code, req.Output, contextBlock).Build(),
		retrieved: len(results),
	}
}

func (s *tutorService) recordTurn(ctx context.Context, sessionId uuid.UUID, query, reply string, turn tutorTurn) {
	payload, err := json.Marshal(dto.TutorTurnMessage{
		SessionId:      sessionId,
		Query:          query,
		Response:       reply,
		Intent:         string(turn.intent.Kind),
		RetrievalMode:  s.retriever.Mode(),
		RetrievedCount: turn.retrieved,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("TUTOR", "Failed to publish tutor turn", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// retrieveContext never fails: errors are logged and yield no context.
func retrieveContext(
	ctx context.Context,
	materials IMaterialService,
	r *retriever.Retriever,
	log logger.ILogger,
	module string,
	sessionId uuid.UUID,
	query string,
	materialIds []uuid.UUID,
	k int,
) []retriever.Result {
	candidates, err := materials.LoadCandidates(ctx, sessionId, materialIds)
	if err != nil {
		log.Warn(module, "Failed to load retrieval candidates", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	results, err := r.Retrieve(ctx, query, candidates, k)
	if err != nil {
		log.Warn(module, "Retrieval failed, continuing without context", map[string]interface{}{
			"session_id": sessionId,
			"mode":       r.Mode(),
			"error":      err.Error(),
		})
		return nil
	}

	log.Debug(module, "Retrieved context", map[string]interface{}{
		"session_id": sessionId,
		"mode":       r.Mode(),
		"candidates": len(candidates),
		"results":    len(results),
	})
	return results
}
