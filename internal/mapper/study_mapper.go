package mapper

import (
	"haskify-be/internal/entity"
	"haskify-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type StudyMapper struct{}

func NewStudyMapper() *StudyMapper {
	return &StudyMapper{}
}

func (m *StudyMapper) SessionToEntity(s *model.StudySession) *entity.StudySession {
	if s == nil {
		return nil
	}
	return &entity.StudySession{Id: s.Id, ExpiresAt: s.ExpiresAt, CreatedAt: s.CreatedAt}
}

func (m *StudyMapper) SessionToModel(s *entity.StudySession) *model.StudySession {
	if s == nil {
		return nil
	}
	return &model.StudySession{Id: s.Id, ExpiresAt: s.ExpiresAt, CreatedAt: s.CreatedAt}
}

func (m *StudyMapper) MaterialToEntity(e *model.Material) *entity.Material {
	if e == nil {
		return nil
	}
	return &entity.Material{
		Id:         e.Id,
		SessionId:  e.SessionId,
		Scope:      entity.MaterialScope(e.Scope),
		Title:      e.Title,
		FileType:   e.FileType,
		Language:   e.Language,
		IsActive:   e.IsActive,
		ChunkCount: e.ChunkCount,
		ExpiresAt:  e.ExpiresAt,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *StudyMapper) MaterialToModel(e *entity.Material) *model.Material {
	if e == nil {
		return nil
	}
	return &model.Material{
		Id:         e.Id,
		SessionId:  e.SessionId,
		Scope:      string(e.Scope),
		Title:      e.Title,
		FileType:   e.FileType,
		Language:   e.Language,
		IsActive:   e.IsActive,
		ChunkCount: e.ChunkCount,
		ExpiresAt:  e.ExpiresAt,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *StudyMapper) ChunkToEntity(c *model.MaterialChunk) *entity.MaterialChunk {
	if c == nil {
		return nil
	}
	var vec []float32
	if c.Embedding != nil {
		vec = c.Embedding.Slice()
	}
	return &entity.MaterialChunk{
		Id:         c.Id,
		MaterialId: c.MaterialId,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		Page:       c.Page,
		LineStart:  c.LineStart,
		LineEnd:    c.LineEnd,
		Embedding:  vec,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *StudyMapper) ChunkToModel(c *entity.MaterialChunk) *model.MaterialChunk {
	if c == nil {
		return nil
	}
	var vec *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		vec = &v
	}
	return &model.MaterialChunk{
		Id:         c.Id,
		MaterialId: c.MaterialId,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		Page:       c.Page,
		LineStart:  c.LineStart,
		LineEnd:    c.LineEnd,
		Embedding:  vec,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *StudyMapper) QuizToEntity(q *model.QuizRecord) *entity.QuizRecord {
	if q == nil {
		return nil
	}
	return &entity.QuizRecord{
		Id:           q.Id,
		SessionId:    q.SessionId,
		Question:     q.Question,
		Choices:      []string(q.Choices),
		CorrectIndex: q.CorrectIndex,
		Topic:        q.Topic,
		ContentHash:  q.ContentHash,
		CreatedAt:    q.CreatedAt,
	}
}

func (m *StudyMapper) QuizToModel(q *entity.QuizRecord) *model.QuizRecord {
	if q == nil {
		return nil
	}
	return &model.QuizRecord{
		Id:           q.Id,
		SessionId:    q.SessionId,
		Question:     q.Question,
		Choices:      datatypes.NewJSONSlice(q.Choices),
		CorrectIndex: q.CorrectIndex,
		Topic:        q.Topic,
		ContentHash:  q.ContentHash,
		CreatedAt:    q.CreatedAt,
	}
}

func (m *StudyMapper) AttemptToEntity(a *model.QuizAttempt) *entity.QuizAttempt {
	if a == nil {
		return nil
	}
	return &entity.QuizAttempt{
		Id:           a.Id,
		QuizId:       a.QuizId,
		SessionId:    a.SessionId,
		Question:     a.Question,
		CorrectIndex: a.CorrectIndex,
		ChosenIndex:  a.ChosenIndex,
		IsCorrect:    a.IsCorrect,
		AnsweredAt:   a.AnsweredAt,
	}
}

func (m *StudyMapper) AttemptToModel(a *entity.QuizAttempt) *model.QuizAttempt {
	if a == nil {
		return nil
	}
	return &model.QuizAttempt{
		Id:           a.Id,
		QuizId:       a.QuizId,
		SessionId:    a.SessionId,
		Question:     a.Question,
		CorrectIndex: a.CorrectIndex,
		ChosenIndex:  a.ChosenIndex,
		IsCorrect:    a.IsCorrect,
		AnsweredAt:   a.AnsweredAt,
	}
}

func (m *StudyMapper) ChatTurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}
	return &entity.ChatTurn{
		Id:             t.Id,
		SessionId:      t.SessionId,
		Query:          t.Query,
		Response:       t.Response,
		Intent:         t.Intent,
		RetrievalMode:  t.RetrievalMode,
		RetrievedCount: t.RetrievedCount,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *StudyMapper) ChatTurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}
	return &model.ChatTurn{
		Id:             t.Id,
		SessionId:      t.SessionId,
		Query:          t.Query,
		Response:       t.Response,
		Intent:         t.Intent,
		RetrievalMode:  t.RetrievalMode,
		RetrievedCount: t.RetrievedCount,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *StudyMapper) TranscriptToEntity(t *model.Transcript) *entity.Transcript {
	if t == nil {
		return nil
	}
	entries := make([]entity.TranscriptEntry, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = entity.TranscriptEntry{Question: e.Question, Response: e.Response, Time: e.Time}
	}
	return &entity.Transcript{Id: t.Id, Entries: entries, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func (m *StudyMapper) TranscriptToModel(t *entity.Transcript) *model.Transcript {
	if t == nil {
		return nil
	}
	entries := make([]model.TranscriptEntry, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = model.TranscriptEntry{Question: e.Question, Response: e.Response, Time: e.Time}
	}
	return &model.Transcript{
		Id:        t.Id,
		Entries:   datatypes.NewJSONSlice(entries),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
