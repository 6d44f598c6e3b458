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

type StudySessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StudyMapper
}

func NewStudySessionRepository(db *gorm.DB) contract.StudySessionRepository {
	return &StudySessionRepositoryImpl{db: db, mapper: mapper.NewStudyMapper()}
}

func (r *StudySessionRepositoryImpl) Create(ctx context.Context, session *entity.StudySession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *StudySessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.StudySession{}, id).Error
}

func (r *StudySessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudySession, error) {
	var m model.StudySession
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *StudySessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StudySession, error) {
	var models []*model.StudySession
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.StudySession, len(models))
	for i, m := range models {
		out[i] = r.mapper.SessionToEntity(m)
	}
	return out, nil
}
