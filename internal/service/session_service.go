package service

import (
	"context"
	"fmt"
	"time"

	"haskify-be/internal/dto"
	"haskify-be/internal/entity"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/repository/specification"
	"haskify-be/internal/repository/unitofwork"
	"haskify-be/pkg/events"
	"haskify-be/pkg/rag/quizdedup"
	"haskify-be/pkg/rag/retriever"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context) (*dto.CreateSessionResponse, error)
	Require(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// ChunkCache holds retrieval candidates per material.
type ChunkCache interface {
	Get(materialID uuid.UUID) ([]retriever.Candidate, bool)
	Set(materialID uuid.UUID, candidates []retriever.Candidate)
	Invalidate(materialID uuid.UUID)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	issuer         *serverutils.SessionTokenIssuer
	hashStore      quizdedup.HashStore
	chunkCache     ChunkCache
	eventPublisher events.Publisher
	logger         logger.ILogger
	ttl            time.Duration
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	issuer *serverutils.SessionTokenIssuer,
	hashStore quizdedup.HashStore,
	chunkCache ChunkCache,
	eventPublisher events.Publisher,
	logger logger.ILogger,
	ttl time.Duration,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		issuer:         issuer,
		hashStore:      hashStore,
		chunkCache:     chunkCache,
		eventPublisher: eventPublisher,
		logger:         logger,
		ttl:            ttl,
	}
}

func (s *sessionService) Create(ctx context.Context) (*dto.CreateSessionResponse, error) {
	now := time.Now()
	session := &entity.StudySession{
		Id:        uuid.New(),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.StudySessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.issuer.Issue(session.Id, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("SESSION", "Session created", map[string]interface{}{
		"session_id": session.Id,
		"expires_at": session.ExpiresAt,
	})

	return &dto.CreateSessionResponse{
		SessionId: session.Id,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Require fails with ErrSessionNotFound for unknown, deleted or expired
// sessions.
func (s *sessionService) Require(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.StudySessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if session == nil || session.IsExpired(time.Now()) {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes the session with its private materials, chunks, quizzes,
// attempts and chat history, then forgets its quiz hashes.
func (s *sessionService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	session, err := uow.StudySessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	materialIds, err := purgeSession(ctx, uow, id)
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.forget(ctx, id, materialIds, "deleted")

	s.logger.Info("SESSION", "Session deleted", map[string]interface{}{
		"session_id": id,
		"materials":  len(materialIds),
	})
	return nil
}

// SweepExpired removes every session past its expiry the same way Delete
// does, in one transaction.
func (s *sessionService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	expired, err := uow.StudySessionRepository().FindAll(ctx, specification.ExpiredBefore{Time: now})
	if err != nil {
		return 0, fmt.Errorf("find expired sessions: %w", err)
	}

	purged := make(map[uuid.UUID][]uuid.UUID, len(expired))
	for _, session := range expired {
		materialIds, err := purgeSession(ctx, uow, session.Id)
		if err != nil {
			return 0, fmt.Errorf("delete expired session %s: %w", session.Id, err)
		}
		purged[session.Id] = materialIds
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	for id, materialIds := range purged {
		s.forget(ctx, id, materialIds, "expired")
	}
	return int64(len(expired)), nil
}

// purgeSession deletes everything the session owns and the session row
// itself. It returns the ids of the removed materials.
func purgeSession(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) ([]uuid.UUID, error) {
	materials, err := uow.MaterialRepository().FindAll(ctx, specification.BySessionID{SessionID: id})
	if err != nil {
		return nil, err
	}
	materialIds := make([]uuid.UUID, 0, len(materials))
	for _, m := range materials {
		materialIds = append(materialIds, m.Id)
	}

	if err := uow.MaterialChunkRepository().DeleteByMaterialIds(ctx, materialIds); err != nil {
		return nil, err
	}
	if err := uow.MaterialRepository().DeleteByIds(ctx, materialIds); err != nil {
		return nil, err
	}
	if err := uow.QuizAttemptRepository().DeleteBySessionId(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.QuizRecordRepository().DeleteBySessionId(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.ChatTurnRepository().DeleteBySessionId(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.StudySessionRepository().Delete(ctx, id); err != nil {
		return nil, err
	}
	return materialIds, nil
}

// forget clears in-process state of a removed session and announces it.
func (s *sessionService) forget(ctx context.Context, id uuid.UUID, materialIds []uuid.UUID, reason string) {
	for _, materialId := range materialIds {
		s.chunkCache.Invalidate(materialId)
	}
	if err := s.hashStore.Drop(ctx, id.String()); err != nil {
		s.logger.Warn("SESSION", "Failed to drop quiz hashes", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
	}
	publishSoft(ctx, s.eventPublisher, s.logger, events.NewSessionClosed(id, reason))
}

// publishSoft publishes an event and only logs a failure. A nil publisher
// means the bus is not configured.
func publishSoft(ctx context.Context, publisher events.Publisher, log logger.ILogger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
