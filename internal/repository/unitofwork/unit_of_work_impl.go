package unitofwork

import (
	"context"
	"fmt"

	"haskify-be/internal/repository/contract"
	"haskify-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // non-nil between Begin and Commit/Rollback
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) StudySessionRepository() contract.StudySessionRepository {
	return implementation.NewStudySessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MaterialRepository() contract.MaterialRepository {
	return implementation.NewMaterialRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MaterialChunkRepository() contract.MaterialChunkRepository {
	return implementation.NewMaterialChunkRepository(u.getDB())
}

func (u *UnitOfWorkImpl) QuizRecordRepository() contract.QuizRecordRepository {
	return implementation.NewQuizRecordRepository(u.getDB())
}

func (u *UnitOfWorkImpl) QuizAttemptRepository() contract.QuizAttemptRepository {
	return implementation.NewQuizAttemptRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChatTurnRepository() contract.ChatTurnRepository {
	return implementation.NewChatTurnRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TranscriptRepository() contract.TranscriptRepository {
	return implementation.NewTranscriptRepository(u.getDB())
}
