package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Sessions ---

type CreateSessionResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- Materials ---

type UploadMaterialRequest struct {
	SessionId *uuid.UUID // nil for system-global uploads
	Filename  string
	MimeType  string
	Data      []byte
}

type UploadMaterialResponse struct {
	MaterialId uuid.UUID  `json:"materialId"`
	Title      string     `json:"title"`
	Chunks     int        `json:"chunks"`
	FileType   string     `json:"fileType"`
	Language   string     `json:"language,omitempty"`
	Scope      string     `json:"scope"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type MaterialResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	FileType  string     `json:"fileType"`
	Language  string     `json:"language,omitempty"`
	Scope     string     `json:"scope"`
	IsActive  bool       `json:"isActive"`
	Chunks    int        `json:"chunks"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// --- Tutor ---

type AskRequest struct {
	Query       string      `json:"query" validate:"required,max=4000"`
	Code        string      `json:"code"`
	Output      string      `json:"output"`
	MaterialIds []uuid.UUID `json:"materialIds"`
}

type AskResponse struct {
	Response string `json:"response"`
}

// StreamFrame is one websocket message of a streamed tutor reply.
type StreamFrame struct {
	Type    string `json:"type"` // "fragment", "done" or "error"
	Content string `json:"content,omitempty"`
}

const (
	StreamFrameFragment = "fragment"
	StreamFrameDone     = "done"
	StreamFrameError    = "error"
)

// --- Quiz ---

type ChatHistoryItem struct {
	Question string    `json:"question"`
	Response string    `json:"response"`
	Time     time.Time `json:"time"`
}

type GenerateQuizRequest struct {
	ChatHistory []ChatHistoryItem `json:"chatHistory"`
	MaterialIds []uuid.UUID       `json:"materialIds"`
}

type QuizResponse struct {
	Id           uuid.UUID `json:"id"`
	Question     string    `json:"question"`
	Choices      []string  `json:"choices"`
	CorrectIndex int       `json:"correctIndex"`
	Topic        string    `json:"topic,omitempty"`
}

type AnswerQuizRequest struct {
	ChoiceIndex *int `json:"choiceIndex" validate:"required,min=0,max=3"`
}

type AnswerQuizResponse struct {
	QuizId       uuid.UUID `json:"quizId"`
	Correct      bool      `json:"correct"`
	CorrectIndex int       `json:"correctIndex"`
}

// --- Transcripts ---

type SaveTranscriptRequest struct {
	Session []ChatHistoryItem `json:"session"`
}

type SaveTranscriptResponse struct {
	Success bool       `json:"success"`
	Id      *uuid.UUID `json:"id,omitempty"`
}

// --- Code runner ---

type RunCodeRequest struct {
	Code  string `json:"code"`
	Input string `json:"input"`
}

type RunCodeResponse struct {
	Output string `json:"output"`
}

// --- Contact ---

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// StatusResponse is the {success, error} body of the contact and transcript
// routes.
type StatusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TutorTurnMessage is published on the tutor turn topic after each answered
// question.
type TutorTurnMessage struct {
	SessionId      uuid.UUID `json:"session_id"`
	Query          string    `json:"query"`
	Response       string    `json:"response"`
	Intent         string    `json:"intent"`
	RetrievalMode  string    `json:"retrieval_mode"`
	RetrievedCount int       `json:"retrieved_count"`
	CreatedAt      time.Time `json:"created_at"`
}
