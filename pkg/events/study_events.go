package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeQuizGenerated    = "QUIZ_GENERATED"
	TypeQuizAnswered     = "QUIZ_ANSWERED"
	TypeMaterialIngested = "MATERIAL_INGESTED"
	TypeSessionClosed    = "SESSION_CLOSED"
)

func NewQuizGenerated(sessionID, quizID uuid.UUID, topic string, attempts int) BaseEvent {
	return BaseEvent{
		Type: TypeQuizGenerated,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"quiz_id":    quizID.String(),
			"topic":      topic,
			"attempts":   attempts,
		},
		OccurredAt: time.Now(),
	}
}

func NewQuizAnswered(sessionID, quizID uuid.UUID, correct bool) BaseEvent {
	return BaseEvent{
		Type: TypeQuizAnswered,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"quiz_id":    quizID.String(),
			"correct":    correct,
		},
		OccurredAt: time.Now(),
	}
}

func NewMaterialIngested(materialID uuid.UUID, scope, fileType string, chunkCount int) BaseEvent {
	return BaseEvent{
		Type: TypeMaterialIngested,
		Data: map[string]interface{}{
			"material_id": materialID.String(),
			"scope":       scope,
			"file_type":   fileType,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionClosed(sessionID uuid.UUID, reason string) BaseEvent {
	return BaseEvent{
		Type: TypeSessionClosed,
		Data: map[string]interface{}{
			"session_id": sessionID.String(),
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}
