package inmemory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"haskify-be/internal/entity"
	"haskify-be/internal/repository/specification"

	"github.com/google/uuid"
)

func stamp(id *uuid.UUID, createdAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now()
	}
}

func pointers[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		row := rows[i]
		out[i] = &row
	}
	return out
}

func bySession(sessionID uuid.UUID, spec specification.Specification) (bool, bool) {
	if v, ok := spec.(specification.BySessionID); ok {
		return v.SessionID == sessionID, true
	}
	return false, false
}

func createdAtKey(createdAt time.Time, field string) (int64, bool) {
	if field == "created_at" {
		return createdAt.UnixNano(), true
	}
	return 0, false
}

// --- Sessions ---

var sessionSchema = schema[entity.StudySession]{
	id: func(s *entity.StudySession) uuid.UUID { return s.Id },
	match: func(s *entity.StudySession, spec specification.Specification) (bool, bool) {
		if v, ok := spec.(specification.ExpiredBefore); ok {
			return s.IsExpired(v.Time), true
		}
		return false, false
	},
	sortKey: func(s *entity.StudySession, field string) (int64, bool) {
		return createdAtKey(s.CreatedAt, field)
	},
}

type sessionRepository struct {
	uow *unitOfWork
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.StudySession) error {
	stamp(&session.Id, &session.CreatedAt)
	return r.uow.with(func(t *tables) error {
		t.sessions = append(t.sessions, *session)
		return nil
	})
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.uow.with(func(t *tables) error {
		t.sessions = slices.DeleteFunc(t.sessions, func(s entity.StudySession) bool { return s.Id == id })
		return nil
	})
}

func (r *sessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudySession, error) {
	var found *entity.StudySession
	err := r.uow.with(func(t *tables) (err error) {
		found, err = sessionSchema.first(t.sessions, specs)
		return err
	})
	return found, err
}

func (r *sessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StudySession, error) {
	var rows []entity.StudySession
	err := r.uow.with(func(t *tables) (err error) {
		rows, err = sessionSchema.query(t.sessions, specs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pointers(rows), nil
}

// --- Materials ---

var materialSchema = schema[entity.Material]{
	id: func(m *entity.Material) uuid.UUID { return m.Id },
	match: func(m *entity.Material, spec specification.Specification) (bool, bool) {
		switch v := spec.(type) {
		case specification.BySessionID:
			return m.SessionId != nil && *m.SessionId == v.SessionID, true
		case specification.VisibleToSession:
			return m.VisibleTo(v.SessionID), true
		case specification.ActiveSystemMaterials:
			return m.Scope == entity.MaterialScopeSystem && m.IsActive, true
		case specification.ExpiredBefore:
			return m.ExpiresAt != nil && !m.ExpiresAt.After(v.Time), true
		}
		return false, false
	},
	sortKey: func(m *entity.Material, field string) (int64, bool) {
		return createdAtKey(m.CreatedAt, field)
	},
}

type materialRepository struct {
	uow *unitOfWork
}

func (r *materialRepository) Create(ctx context.Context, material *entity.Material) error {
	stamp(&material.Id, &material.CreatedAt)
	return r.uow.with(func(t *tables) error {
		t.materials = append(t.materials, *material)
		return nil
	})
}

func (r *materialRepository) Update(ctx context.Context, material *entity.Material) error {
	return r.uow.with(func(t *tables) error {
		for i := range t.materials {
			if t.materials[i].Id == material.Id {
				t.materials[i] = *material
				return nil
			}
		}
		t.materials = append(t.materials, *material)
		return nil
	})
}

func (r *materialRepository) DeleteByIds(ctx context.Context, ids []uuid.UUID) error {
	return r.uow.with(func(t *tables) error {
		t.materials = slices.DeleteFunc(t.materials, func(m entity.Material) bool { return slices.Contains(ids, m.Id) })
		return nil
	})
}

func (r *materialRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Material, error) {
	var found *entity.Material
	err := r.uow.with(func(t *tables) (err error) {
		found, err = materialSchema.first(t.materials, specs)
		return err
	})
	return found, err
}

func (r *materialRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Material, error) {
	var rows []entity.Material
	err := r.uow.with(func(t *tables) (err error) {
		rows, err = materialSchema.query(t.materials, specs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pointers(rows), nil
}

func (r *materialRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var n int64
	err := r.uow.with(func(t *tables) error {
		rows, err := materialSchema.query(t.materials, specs)
		n = int64(len(rows))
		return err
	})
	return n, err
}

// --- Chunks ---

var chunkSchema = schema[entity.MaterialChunk]{
	id: func(c *entity.MaterialChunk) uuid.UUID { return c.Id },
	match: func(c *entity.MaterialChunk, spec specification.Specification) (bool, bool) {
		if v, ok := spec.(specification.ByMaterialIDs); ok {
			return slices.Contains(v.MaterialIDs, c.MaterialId), true
		}
		return false, false
	},
	sortKey: func(c *entity.MaterialChunk, field string) (int64, bool) {
		if field == "chunk_index" {
			return int64(c.ChunkIndex), true
		}
		return createdAtKey(c.CreatedAt, field)
	},
}

type chunkRepository struct {
	uow *unitOfWork
}

func (r *chunkRepository) CreateBulk(ctx context.Context, chunks []*entity.MaterialChunk) error {
	for _, c := range chunks {
		stamp(&c.Id, &c.CreatedAt)
	}
	return r.uow.with(func(t *tables) error {
		for _, c := range chunks {
			t.chunks = append(t.chunks, *c)
		}
		return nil
	})
}

func (r *chunkRepository) DeleteByMaterialIds(ctx context.Context, materialIds []uuid.UUID) error {
	return r.uow.with(func(t *tables) error {
		t.chunks = slices.DeleteFunc(t.chunks, func(c entity.MaterialChunk) bool { return slices.Contains(materialIds, c.MaterialId) })
		return nil
	})
}

func (r *chunkRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MaterialChunk, error) {
	var rows []entity.MaterialChunk
	err := r.uow.with(func(t *tables) (err error) {
		rows, err = chunkSchema.query(t.chunks, specs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pointers(rows), nil
}

// --- Quizzes ---

var quizSchema = schema[entity.QuizRecord]{
	id: func(q *entity.QuizRecord) uuid.UUID { return q.Id },
	match: func(q *entity.QuizRecord, spec specification.Specification) (bool, bool) {
		return bySession(q.SessionId, spec)
	},
	sortKey: func(q *entity.QuizRecord, field string) (int64, bool) {
		return createdAtKey(q.CreatedAt, field)
	},
}

type quizRepository struct {
	uow *unitOfWork
}

func (r *quizRepository) Create(ctx context.Context, quiz *entity.QuizRecord) error {
	stamp(&quiz.Id, &quiz.CreatedAt)
	return r.uow.with(func(t *tables) error {
		for _, q := range t.quizzes {
			if q.Id == quiz.Id {
				return fmt.Errorf("inmemory: duplicate quiz id %s", quiz.Id)
			}
		}
		t.quizzes = append(t.quizzes, *quiz)
		return nil
	})
}

func (r *quizRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuizRecord, error) {
	var found *entity.QuizRecord
	err := r.uow.with(func(t *tables) (err error) {
		found, err = quizSchema.first(t.quizzes, specs)
		return err
	})
	return found, err
}

func (r *quizRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.uow.with(func(t *tables) error {
		t.quizzes = slices.DeleteFunc(t.quizzes, func(q entity.QuizRecord) bool { return q.SessionId == sessionId })
		return nil
	})
}

// --- Attempts ---

var attemptSchema = schema[entity.QuizAttempt]{
	id: func(a *entity.QuizAttempt) uuid.UUID { return a.Id },
	match: func(a *entity.QuizAttempt, spec specification.Specification) (bool, bool) {
		if v, ok := spec.(specification.ByQuizID); ok {
			return a.QuizId == v.QuizID, true
		}
		return bySession(a.SessionId, spec)
	},
	sortKey: func(a *entity.QuizAttempt, field string) (int64, bool) {
		if field == "answered_at" {
			return a.AnsweredAt.UnixNano(), true
		}
		return 0, false
	},
}

type attemptRepository struct {
	uow *unitOfWork
}

func (r *attemptRepository) Create(ctx context.Context, attempt *entity.QuizAttempt) error {
	stamp(&attempt.Id, &attempt.AnsweredAt)
	return r.uow.with(func(t *tables) error {
		t.attempts = append(t.attempts, *attempt)
		return nil
	})
}

func (r *attemptRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizAttempt, error) {
	var rows []entity.QuizAttempt
	err := r.uow.with(func(t *tables) (err error) {
		rows, err = attemptSchema.query(t.attempts, specs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pointers(rows), nil
}

func (r *attemptRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.uow.with(func(t *tables) error {
		t.attempts = slices.DeleteFunc(t.attempts, func(a entity.QuizAttempt) bool { return a.SessionId == sessionId })
		return nil
	})
}

// --- Chat turns ---

var chatTurnSchema = schema[entity.ChatTurn]{
	id: func(c *entity.ChatTurn) uuid.UUID { return c.Id },
	match: func(c *entity.ChatTurn, spec specification.Specification) (bool, bool) {
		return bySession(c.SessionId, spec)
	},
	sortKey: func(c *entity.ChatTurn, field string) (int64, bool) {
		return createdAtKey(c.CreatedAt, field)
	},
}

type chatTurnRepository struct {
	uow *unitOfWork
}

func (r *chatTurnRepository) Create(ctx context.Context, turn *entity.ChatTurn) error {
	stamp(&turn.Id, &turn.CreatedAt)
	return r.uow.with(func(t *tables) error {
		t.turns = append(t.turns, *turn)
		return nil
	})
}

func (r *chatTurnRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error) {
	var rows []entity.ChatTurn
	err := r.uow.with(func(t *tables) (err error) {
		rows, err = chatTurnSchema.query(t.turns, specs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pointers(rows), nil
}

func (r *chatTurnRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.uow.with(func(t *tables) error {
		t.turns = slices.DeleteFunc(t.turns, func(c entity.ChatTurn) bool { return c.SessionId == sessionId })
		return nil
	})
}

// --- Transcripts ---

var transcriptSchema = schema[entity.Transcript]{
	id: func(tr *entity.Transcript) uuid.UUID { return tr.Id },
	sortKey: func(tr *entity.Transcript, field string) (int64, bool) {
		return createdAtKey(tr.CreatedAt, field)
	},
}

type transcriptRepository struct {
	uow *unitOfWork
}

func (r *transcriptRepository) Create(ctx context.Context, transcript *entity.Transcript) error {
	stamp(&transcript.Id, &transcript.CreatedAt)
	transcript.UpdatedAt = transcript.CreatedAt
	return r.uow.with(func(t *tables) error {
		t.transcripts = append(t.transcripts, *transcript)
		return nil
	})
}

func (r *transcriptRepository) Update(ctx context.Context, transcript *entity.Transcript) error {
	transcript.UpdatedAt = time.Now()
	return r.uow.with(func(t *tables) error {
		for i := range t.transcripts {
			if t.transcripts[i].Id == transcript.Id {
				t.transcripts[i] = *transcript
				return nil
			}
		}
		t.transcripts = append(t.transcripts, *transcript)
		return nil
	})
}

func (r *transcriptRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transcript, error) {
	var found *entity.Transcript
	err := r.uow.with(func(t *tables) (err error) {
		found, err = transcriptSchema.first(t.transcripts, specs)
		return err
	})
	return found, err
}
