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

type MaterialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StudyMapper
}

func NewMaterialRepository(db *gorm.DB) contract.MaterialRepository {
	return &MaterialRepositoryImpl{db: db, mapper: mapper.NewStudyMapper()}
}

func (r *MaterialRepositoryImpl) Create(ctx context.Context, material *entity.Material) error {
	m := r.mapper.MaterialToModel(material)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*material = *r.mapper.MaterialToEntity(m)
	return nil
}

func (r *MaterialRepositoryImpl) Update(ctx context.Context, material *entity.Material) error {
	m := r.mapper.MaterialToModel(material)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*material = *r.mapper.MaterialToEntity(m)
	return nil
}

func (r *MaterialRepositoryImpl) DeleteByIds(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Material{}).Error
}

func (r *MaterialRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Material, error) {
	var m model.Material
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MaterialToEntity(&m), nil
}

func (r *MaterialRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Material, error) {
	var models []*model.Material
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Material, len(models))
	for i, m := range models {
		out[i] = r.mapper.MaterialToEntity(m)
	}
	return out, nil
}

func (r *MaterialRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	err := applySpecifications(r.db.WithContext(ctx), specs...).Model(&model.Material{}).Count(&count).Error
	return count, err
}
