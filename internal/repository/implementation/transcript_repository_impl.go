package implementation

import (
	"context"
	"errors"

	"haskify-be/internal/entity"
	"haskify-be/internal/mapper"
	"haskify-be/internal/model"
	"haskify-be/internal/repository/contract"
	"haskify-be/internal/repository/specification"

	"gorm.io/gorm"
)

type TranscriptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StudyMapper
}

func NewTranscriptRepository(db *gorm.DB) contract.TranscriptRepository {
	return &TranscriptRepositoryImpl{db: db, mapper: mapper.NewStudyMapper()}
}

func (r *TranscriptRepositoryImpl) Create(ctx context.Context, transcript *entity.Transcript) error {
	m := r.mapper.TranscriptToModel(transcript)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*transcript = *r.mapper.TranscriptToEntity(m)
	return nil
}

func (r *TranscriptRepositoryImpl) Update(ctx context.Context, transcript *entity.Transcript) error {
	m := r.mapper.TranscriptToModel(transcript)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*transcript = *r.mapper.TranscriptToEntity(m)
	return nil
}

func (r *TranscriptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transcript, error) {
	var m model.Transcript
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TranscriptToEntity(&m), nil
}
