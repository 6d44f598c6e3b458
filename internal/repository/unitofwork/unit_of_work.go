package unitofwork

import (
	"context"

	"haskify-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	StudySessionRepository() contract.StudySessionRepository
	MaterialRepository() contract.MaterialRepository
	MaterialChunkRepository() contract.MaterialChunkRepository
	QuizRecordRepository() contract.QuizRecordRepository
	QuizAttemptRepository() contract.QuizAttemptRepository
	ChatTurnRepository() contract.ChatTurnRepository
	TranscriptRepository() contract.TranscriptRepository
}
