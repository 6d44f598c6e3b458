package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type StudySession struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}

type Material struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  *uuid.UUID `gorm:"type:uuid;index"`
	Scope      string     `gorm:"type:varchar(16);not null;index"`
	Title      string     `gorm:"type:varchar(255);not null"`
	FileType   string     `gorm:"type:varchar(16);not null"`
	Language   string     `gorm:"type:varchar(32)"`
	IsActive   bool       `gorm:"not null;default:true"`
	ChunkCount int        `gorm:"not null;default:0"`
	ExpiresAt  *time.Time `gorm:"index"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
}

func (Material) TableName() string {
	return "materials"
}

type MaterialChunk struct {
	Id         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MaterialId uuid.UUID        `gorm:"type:uuid;not null;index"`
	ChunkIndex int              `gorm:"not null"`
	Text       string           `gorm:"type:text;not null"`
	Page       int              `gorm:"default:0"`
	LineStart  int              `gorm:"default:0"`
	LineEnd    int              `gorm:"default:0"`
	Embedding  *pgvector.Vector `gorm:"type:vector"` // dimension depends on the embedding provider
	CreatedAt  time.Time        `gorm:"autoCreateTime"`
}

func (MaterialChunk) TableName() string {
	return "material_chunks"
}

type QuizRecord struct {
	Id           uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Question     string                      `gorm:"type:text;not null"`
	Choices      datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	CorrectIndex int                         `gorm:"not null"`
	Topic        string                      `gorm:"type:varchar(64)"`
	ContentHash  string                      `gorm:"type:char(64);index"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime"`
}

func (QuizRecord) TableName() string {
	return "quiz_records"
}

type QuizAttempt struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuizId       uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Question     string    `gorm:"type:text;not null"`
	CorrectIndex int       `gorm:"not null"`
	ChosenIndex  int       `gorm:"not null"`
	IsCorrect    bool      `gorm:"not null"`
	AnsweredAt   time.Time `gorm:"not null;index"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

type ChatTurn struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Query          string    `gorm:"type:text"`
	Response       string    `gorm:"type:text"`
	Intent         string    `gorm:"type:varchar(16)"`
	RetrievalMode  string    `gorm:"type:varchar(16)"`
	RetrievedCount int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}

type TranscriptEntry struct {
	Question string    `json:"question"`
	Response string    `json:"response"`
	Time     time.Time `json:"time"`
}

type Transcript struct {
	Id        uuid.UUID                            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Entries   datatypes.JSONSlice[TranscriptEntry] `gorm:"type:jsonb;not null"`
	CreatedAt time.Time                            `gorm:"autoCreateTime"`
	UpdatedAt time.Time                            `gorm:"autoUpdateTime"`
}

func (Transcript) TableName() string {
	return "transcripts"
}

// All lists every model for migrations.
func All() []interface{} {
	return []interface{}{
		&StudySession{},
		&Material{},
		&MaterialChunk{},
		&QuizRecord{},
		&QuizAttempt{},
		&ChatTurn{},
		&Transcript{},
	}
}
