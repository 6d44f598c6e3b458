package contract

import (
	"context"

	"haskify-be/internal/entity"
	"haskify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StudySessionRepository interface {
	Create(ctx context.Context, session *entity.StudySession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudySession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StudySession, error)
}

type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	Update(ctx context.Context, material *entity.Material) error
	DeleteByIds(ctx context.Context, ids []uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Material, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Material, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type MaterialChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.MaterialChunk) error
	DeleteByMaterialIds(ctx context.Context, materialIds []uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MaterialChunk, error)
}

type QuizRecordRepository interface {
	Create(ctx context.Context, quiz *entity.QuizRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuizRecord, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}

type QuizAttemptRepository interface {
	Create(ctx context.Context, attempt *entity.QuizAttempt) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizAttempt, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}

type TranscriptRepository interface {
	Create(ctx context.Context, transcript *entity.Transcript) error
	Update(ctx context.Context, transcript *entity.Transcript) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transcript, error)
}
