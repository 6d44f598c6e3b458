package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"haskify-be/internal/dto"
	"haskify-be/internal/entity"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/repository/specification"
	"haskify-be/internal/repository/unitofwork"
	"haskify-be/pkg/events"
	"haskify-be/pkg/llm"
	"haskify-be/pkg/rag/assembler"
	"haskify-be/pkg/rag/prompt"
	"haskify-be/pkg/rag/quizdedup"
	"haskify-be/pkg/rag/retriever"

	"github.com/google/uuid"
)

type IQuizService interface {
	Generate(ctx context.Context, sessionId uuid.UUID, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error)
	Answer(ctx context.Context, sessionId, quizId uuid.UUID, choiceIndex int) (*dto.AnswerQuizResponse, error)
}

type QuizConfig struct {
	Model        string
	TopK         int
	HistoryTurns int
	HistoryItems int
}

type quizService struct {
	uowFactory      unitofwork.RepositoryFactory
	materialService IMaterialService
	retriever       *retriever.Retriever
	llmProvider     llm.LLMProvider
	deduplicator    *quizdedup.Deduplicator
	eventPublisher  events.Publisher
	logger          logger.ILogger
	cfg             QuizConfig
}

func NewQuizService(
	uowFactory unitofwork.RepositoryFactory,
	materialService IMaterialService,
	retriever *retriever.Retriever,
	llmProvider llm.LLMProvider,
	deduplicator *quizdedup.Deduplicator,
	eventPublisher events.Publisher,
	logger logger.ILogger,
	cfg QuizConfig,
) IQuizService {
	return &quizService{
		uowFactory:      uowFactory,
		materialService: materialService,
		retriever:       retriever,
		llmProvider:     llmProvider,
		deduplicator:    deduplicator,
		eventPublisher:  eventPublisher,
		logger:          logger,
		cfg:             cfg,
	}
}

// Generate produces one quiz question the session has not seen, grounded on
// the recent conversation and the retrieved materials.
func (s *quizService) Generate(ctx context.Context, sessionId uuid.UUID, req *dto.GenerateQuizRequest) (*dto.QuizResponse, error) {
	conversation, err := s.conversation(ctx, sessionId, req.ChatHistory)
	if err != nil {
		return nil, err
	}

	results := retrieveContext(ctx, s.materialService, s.retriever, s.logger, "QUIZ", sessionId, conversation, req.MaterialIds, s.cfg.TopK)

	history, err := loadQuizHistory(ctx, s.uowFactory, sessionId, s.cfg.HistoryItems)
	if err != nil {
		s.logger.Warn("QUIZ", "Failed to load quiz history", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
	contextBlock := assembler.AssembleContext(results, history)

	calls := 0
	quiz, err := s.deduplicator.Generate(ctx, sessionId.String(), func(ctx context.Context, attempt quizdedup.Attempt) (*quizdedup.Quiz, error) {
		calls++
		messages := prompt.NewQuizBuilder(conversation, contextBlock, attempt).Build()
		opts := []llm.Option{llm.WithTemperature(attempt.Temperature)}
		if s.cfg.Model != "" {
			opts = append(opts, llm.WithModel(s.cfg.Model))
		}

		reply, err := s.llmProvider.Chat(ctx, messages, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		return quizdedup.ParseQuiz(reply)
	})
	if err != nil {
		s.logger.Error("QUIZ", "Quiz generation failed", map[string]interface{}{
			"session_id": sessionId,
			"calls":      calls,
			"error":      err.Error(),
		})
		return nil, err
	}

	record := &entity.QuizRecord{
		Id:           uuid.New(),
		SessionId:    sessionId,
		Question:     quiz.Question,
		Choices:      slices.Clone(quiz.Choices),
		CorrectIndex: quiz.CorrectIndex,
		Topic:        quiz.Topic,
		ContentHash:  quizdedup.ContentHash(quiz.Question),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.QuizRecordRepository().Create(ctx, record); err != nil {
		if relErr := s.deduplicator.Release(ctx, sessionId.String(), *quiz); relErr != nil {
			s.logger.Warn("QUIZ", "Failed to release quiz hash", map[string]interface{}{
				"session_id": sessionId,
				"error":      relErr.Error(),
			})
		}
		return nil, fmt.Errorf("save quiz: %w", err)
	}

	publishSoft(ctx, s.eventPublisher, s.logger, events.NewQuizGenerated(sessionId, record.Id, record.Topic, calls))

	s.logger.Info("QUIZ", "Quiz generated", map[string]interface{}{
		"session_id": sessionId,
		"quiz_id":    record.Id,
		"topic":      record.Topic,
		"calls":      calls,
		"context":    len(results),
	})

	return &dto.QuizResponse{
		Id:           record.Id,
		Question:     record.Question,
		Choices:      record.Choices,
		CorrectIndex: record.CorrectIndex,
		Topic:        record.Topic,
	}, nil
}

// conversation renders the latest chat turns as JSON. Without client history
// it falls back to the turns stored for the session.
func (s *quizService) conversation(ctx context.Context, sessionId uuid.UUID, chatHistory []dto.ChatHistoryItem) (string, error) {
	turns := chatHistory
	if len(turns) == 0 {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		stored, err := uow.ChatTurnRepository().FindAll(ctx,
			specification.BySessionID{SessionID: sessionId},
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.Pagination{Limit: s.cfg.HistoryTurns},
		)
		if err != nil {
			return "", err
		}
		for i := len(stored) - 1; i >= 0; i-- {
			turns = append(turns, dto.ChatHistoryItem{
				Question: stored[i].Query,
				Response: stored[i].Response,
				Time:     stored[i].CreatedAt,
			})
		}
	}

	if s.cfg.HistoryTurns > 0 && len(turns) > s.cfg.HistoryTurns {
		turns = turns[len(turns)-s.cfg.HistoryTurns:]
	}
	if turns == nil {
		turns = []dto.ChatHistoryItem{}
	}

	raw, err := json.Marshal(turns)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *quizService) Answer(ctx context.Context, sessionId, quizId uuid.UUID, choiceIndex int) (*dto.AnswerQuizResponse, error) {
	if choiceIndex < 0 || choiceIndex >= quizdedup.ChoiceCount {
		return nil, ErrInvalidChoice
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	quiz, err := uow.QuizRecordRepository().FindOne(ctx,
		specification.ByID{ID: quizId},
		specification.BySessionID{SessionID: sessionId},
	)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	attempt := &entity.QuizAttempt{
		Id:           uuid.New(),
		QuizId:       quiz.Id,
		SessionId:    sessionId,
		Question:     quiz.Question,
		CorrectIndex: quiz.CorrectIndex,
		ChosenIndex:  choiceIndex,
		IsCorrect:    choiceIndex == quiz.CorrectIndex,
		AnsweredAt:   time.Now(),
	}
	if err := uow.QuizAttemptRepository().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save quiz attempt: %w", err)
	}

	publishSoft(ctx, s.eventPublisher, s.logger, events.NewQuizAnswered(sessionId, quiz.Id, attempt.IsCorrect))

	return &dto.AnswerQuizResponse{
		QuizId:       quiz.Id,
		Correct:      attempt.IsCorrect,
		CorrectIndex: quiz.CorrectIndex,
	}, nil
}
