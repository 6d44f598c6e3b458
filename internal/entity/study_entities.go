package entity

import (
	"time"

	"github.com/google/uuid"
)

type StudySession struct {
	Id        uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *StudySession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type MaterialScope string

const (
	MaterialScopeSession MaterialScope = "session"
	MaterialScopeSystem  MaterialScope = "system"
)

type Material struct {
	Id         uuid.UUID
	SessionId  *uuid.UUID // nil for system-global materials
	Scope      MaterialScope
	Title      string
	FileType   string
	Language   string
	IsActive   bool
	ChunkCount int
	ExpiresAt  *time.Time // nil means persistent
	CreatedAt  time.Time
}

// VisibleTo reports whether a session may retrieve from this material.
func (m *Material) VisibleTo(sessionID uuid.UUID) bool {
	if m.Scope == MaterialScopeSystem {
		return m.IsActive
	}
	return m.SessionId != nil && *m.SessionId == sessionID
}

type MaterialChunk struct {
	Id         uuid.UUID
	MaterialId uuid.UUID
	ChunkIndex int // 1-based
	Text       string
	Page       int
	LineStart  int
	LineEnd    int
	Embedding  []float32 // nil in lexical mode
	CreatedAt  time.Time
}

type QuizRecord struct {
	Id           uuid.UUID
	SessionId    uuid.UUID
	Question     string
	Choices      []string
	CorrectIndex int
	Topic        string
	ContentHash  string
	CreatedAt    time.Time
}

type QuizAttempt struct {
	Id           uuid.UUID
	QuizId       uuid.UUID
	SessionId    uuid.UUID
	Question     string
	CorrectIndex int
	ChosenIndex  int
	IsCorrect    bool
	AnsweredAt   time.Time
}

type ChatTurn struct {
	Id             uuid.UUID
	SessionId      uuid.UUID
	Query          string
	Response       string
	Intent         string
	RetrievalMode  string
	RetrievedCount int
	CreatedAt      time.Time
}

type TranscriptEntry struct {
	Question string    `json:"question"`
	Response string    `json:"response"`
	Time     time.Time `json:"time"`
}

type Transcript struct {
	Id        uuid.UUID
	Entries   []TranscriptEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}
