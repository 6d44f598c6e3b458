package implementation

import (
	"context"
	"errors"

	"haskify-be/internal/entity"
	"haskify-be/internal/mapper"
	"haskify-be/internal/model"
	"haskify-be/internal/repository/contract"
	"haskify-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StudyMapper
}

func NewQuizRecordRepository(db *gorm.DB) contract.QuizRecordRepository {
	return &QuizRecordRepositoryImpl{db: db, mapper: mapper.NewStudyMapper()}
}

func (r *QuizRecordRepositoryImpl) Create(ctx context.Context, quiz *entity.QuizRecord) error {
	m := r.mapper.QuizToModel(quiz)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*quiz = *r.mapper.QuizToEntity(m)
	return nil
}

func (r *QuizRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QuizRecord, error) {
	var m model.QuizRecord
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.QuizToEntity(&m), nil
}

func (r *QuizRecordRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.QuizRecord{}).Error
}

type QuizAttemptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StudyMapper
}

func NewQuizAttemptRepository(db *gorm.DB) contract.QuizAttemptRepository {
	return &QuizAttemptRepositoryImpl{db: db, mapper: mapper.NewStudyMapper()}
}

func (r *QuizAttemptRepositoryImpl) Create(ctx context.Context, attempt *entity.QuizAttempt) error {
	m := r.mapper.AttemptToModel(attempt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*attempt = *r.mapper.AttemptToEntity(m)
	return nil
}

func (r *QuizAttemptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizAttempt, error) {
	var models []*model.QuizAttempt
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.QuizAttempt, len(models))
	for i, m := range models {
		out[i] = r.mapper.AttemptToEntity(m)
	}
	return out, nil
}

func (r *QuizAttemptRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.QuizAttempt{}).Error
}
