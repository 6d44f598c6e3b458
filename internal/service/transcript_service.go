package service

import (
	"context"
	"time"

	"haskify-be/internal/dto"
	"haskify-be/internal/entity"
	"haskify-be/internal/repository/specification"
	"haskify-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ITranscriptService interface {
	Save(ctx context.Context, req *dto.SaveTranscriptRequest) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.SaveTranscriptRequest) error
}

type transcriptService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTranscriptService(uowFactory unitofwork.RepositoryFactory) ITranscriptService {
	return &transcriptService{uowFactory: uowFactory}
}

func toTranscriptEntries(items []dto.ChatHistoryItem) []entity.TranscriptEntry {
	now := time.Now()
	entries := make([]entity.TranscriptEntry, len(items))
	for i, item := range items {
		at := item.Time
		if at.IsZero() {
			at = now
		}
		entries[i] = entity.TranscriptEntry{
			Question: item.Question,
			Response: item.Response,
			Time:     at,
		}
	}
	return entries
}

func (s *transcriptService) Save(ctx context.Context, req *dto.SaveTranscriptRequest) (uuid.UUID, error) {
	if len(req.Session) == 0 {
		return uuid.Nil, ErrEmptyTranscript
	}

	now := time.Now()
	transcript := &entity.Transcript{
		Id:        uuid.New(),
		Entries:   toTranscriptEntries(req.Session),
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.TranscriptRepository().Create(ctx, transcript); err != nil {
		return uuid.Nil, err
	}
	return transcript.Id, nil
}

// Update replaces the entries of an existing transcript.
func (s *transcriptService) Update(ctx context.Context, id uuid.UUID, req *dto.SaveTranscriptRequest) error {
	if len(req.Session) == 0 {
		return ErrEmptyTranscript
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	transcript, err := uow.TranscriptRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if transcript == nil {
		return ErrTranscriptMissing
	}

	transcript.Entries = toTranscriptEntries(req.Session)
	transcript.UpdatedAt = time.Now()
	return uow.TranscriptRepository().Update(ctx, transcript)
}
