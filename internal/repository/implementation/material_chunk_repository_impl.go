package implementation

import (
	"context"

	"haskify-be/internal/entity"
	"haskify-be/internal/mapper"
	"haskify-be/internal/model"
	"haskify-be/internal/repository/contract"
	"haskify-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const chunkBatchSize = 200

type MaterialChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StudyMapper
}

func NewMaterialChunkRepository(db *gorm.DB) contract.MaterialChunkRepository {
	return &MaterialChunkRepositoryImpl{db: db, mapper: mapper.NewStudyMapper()}
}

func (r *MaterialChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.MaterialChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.MaterialChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, chunkBatchSize).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *MaterialChunkRepositoryImpl) DeleteByMaterialIds(ctx context.Context, materialIds []uuid.UUID) error {
	if len(materialIds) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("material_id IN ?", materialIds).Delete(&model.MaterialChunk{}).Error
}

func (r *MaterialChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MaterialChunk, error) {
	var models []*model.MaterialChunk
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.MaterialChunk, len(models))
	for i, m := range models {
		out[i] = r.mapper.ChunkToEntity(m)
	}
	return out, nil
}
