package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// VisibleToSession matches the session's own materials plus every active
// system-global material.
type VisibleToSession struct {
	SessionID uuid.UUID
}

func (s VisibleToSession) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(session_id = ? AND scope = 'session') OR (scope = 'system' AND is_active = TRUE)", s.SessionID)
}

type ActiveSystemMaterials struct{}

func (s ActiveSystemMaterials) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scope = 'system' AND is_active = TRUE")
}

type ExpiredBefore struct {
	Time time.Time
}

func (s ExpiredBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at IS NOT NULL AND expires_at <= ?", s.Time)
}

type ByMaterialIDs struct {
	MaterialIDs []uuid.UUID
}

func (s ByMaterialIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("material_id IN ?", s.MaterialIDs)
}

type ByQuizID struct {
	QuizID uuid.UUID
}

func (s ByQuizID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("quiz_id = ?", s.QuizID)
}
