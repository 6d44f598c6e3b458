package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"haskify-be/internal/dto"
	"haskify-be/internal/entity"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/repository/specification"
	"haskify-be/internal/repository/unitofwork"
	"haskify-be/pkg/embedding"
	"haskify-be/pkg/events"
	"haskify-be/pkg/extract"
	"haskify-be/pkg/rag/chunker"
	"haskify-be/pkg/rag/retriever"

	"github.com/google/uuid"
)

type IMaterialService interface {
	Upload(ctx context.Context, req *dto.UploadMaterialRequest) (*dto.UploadMaterialResponse, error)
	Show(ctx context.Context, sessionId, id uuid.UUID) (*dto.MaterialResponse, error)
	List(ctx context.Context, sessionId uuid.UUID) ([]*dto.MaterialResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	LoadCandidates(ctx context.Context, sessionId uuid.UUID, materialIds []uuid.UUID) ([]retriever.Candidate, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type MaterialConfig struct {
	MaxUploadBytes    int
	MaterialTTL       time.Duration
	ChunkSize         int
	ChunkOverlap      int
	CodeChunkSize     int
	CodeOverlap       int
	CodeMinLines      int
	EmbedChunks       bool // vector retrieval mode
	EmbeddingMaxChars int
}

type materialService struct {
	uowFactory        unitofwork.RepositoryFactory
	extractor         extract.Extractor
	embeddingProvider embedding.EmbeddingProvider
	chunkCache        ChunkCache
	eventPublisher    events.Publisher
	logger            logger.ILogger
	cfg               MaterialConfig
}

func NewMaterialService(
	uowFactory unitofwork.RepositoryFactory,
	extractor extract.Extractor,
	embeddingProvider embedding.EmbeddingProvider,
	chunkCache ChunkCache,
	eventPublisher events.Publisher,
	logger logger.ILogger,
	cfg MaterialConfig,
) (IMaterialService, error) {
	if err := chunker.ValidateWindow(cfg.ChunkSize, cfg.ChunkOverlap); err != nil {
		return nil, fmt.Errorf("prose chunk window: %w", err)
	}
	if err := chunker.ValidateWindow(cfg.CodeChunkSize, cfg.CodeOverlap); err != nil {
		return nil, fmt.Errorf("code chunk window: %w", err)
	}
	return &materialService{
		uowFactory:        uowFactory,
		extractor:         extractor,
		embeddingProvider: embeddingProvider,
		chunkCache:        chunkCache,
		eventPublisher:    eventPublisher,
		logger:            logger,
		cfg:               cfg,
	}, nil
}

// Upload extracts, chunks and (in vector mode) embeds a file, then stores the
// material and its chunks in one transaction. A nil SessionId uploads a
// persistent system-global material.
func (s *materialService) Upload(ctx context.Context, req *dto.UploadMaterialRequest) (*dto.UploadMaterialResponse, error) {
	if len(req.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	if s.cfg.MaxUploadBytes > 0 && len(req.Data) > s.cfg.MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}

	doc, err := s.extractor.Extract(ctx, req.Filename, req.MimeType, req.Data)
	if err != nil {
		return nil, err
	}

	pieces := s.chunk(doc)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: %s", extract.ErrUnextractable, req.Filename)
	}

	now := time.Now()
	material := &entity.Material{
		Id:         uuid.New(),
		SessionId:  req.SessionId,
		Scope:      entity.MaterialScopeSystem,
		Title:      req.Filename,
		FileType:   string(doc.Type),
		Language:   doc.Language,
		IsActive:   true,
		ChunkCount: len(pieces),
		CreatedAt:  now,
	}
	if req.SessionId != nil {
		expiresAt := now.Add(s.cfg.MaterialTTL)
		material.Scope = entity.MaterialScopeSession
		material.ExpiresAt = &expiresAt
	}

	chunks := make([]*entity.MaterialChunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = &entity.MaterialChunk{
			Id:         uuid.New(),
			MaterialId: material.Id,
			ChunkIndex: p.Index,
			Text:       p.Text,
			Page:       p.Page,
			LineStart:  p.LineStart,
			LineEnd:    p.LineEnd,
			CreatedAt:  now,
		}
	}

	if s.cfg.EmbedChunks {
		for _, c := range chunks {
			vec, err := s.embeddingProvider.Generate(ctx, embedding.Truncate(c.Text, s.cfg.EmbeddingMaxChars), embedding.TaskRetrievalDocument)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d of %s: %w", c.ChunkIndex, req.Filename, err)
			}
			c.Embedding = vec
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MaterialRepository().Create(ctx, material); err != nil {
		return nil, fmt.Errorf("create material: %w", err)
	}
	if err := uow.MaterialChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, fmt.Errorf("create chunks: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.chunkCache.Set(material.Id, toCandidates(material, chunks))
	publishSoft(ctx, s.eventPublisher, s.logger, events.NewMaterialIngested(material.Id, string(material.Scope), material.FileType, len(chunks)))

	s.logger.Info("MATERIAL", "Material ingested", map[string]interface{}{
		"material_id": material.Id,
		"title":       material.Title,
		"file_type":   material.FileType,
		"scope":       material.Scope,
		"chunks":      len(chunks),
		"embedded":    s.cfg.EmbedChunks,
	})

	return &dto.UploadMaterialResponse{
		MaterialId: material.Id,
		Title:      material.Title,
		Chunks:     material.ChunkCount,
		FileType:   material.FileType,
		Language:   material.Language,
		Scope:      string(material.Scope),
		ExpiresAt:  material.ExpiresAt,
	}, nil
}

func (s *materialService) chunk(doc *extract.Document) []chunker.Chunk {
	if doc.Type == extract.FileTypeCode {
		return chunker.ChunkCode(doc.Text(), s.cfg.CodeChunkSize, s.cfg.CodeOverlap, s.cfg.CodeMinLines)
	}
	return chunker.ChunkPages(doc.Pages, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
}

func (s *materialService) Show(ctx context.Context, sessionId, id uuid.UUID) (*dto.MaterialResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	material, err := uow.MaterialRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.VisibleToSession{SessionID: sessionId},
	)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}
	return toMaterialResponse(material), nil
}

func (s *materialService) List(ctx context.Context, sessionId uuid.UUID) ([]*dto.MaterialResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	materials, err := uow.MaterialRepository().FindAll(ctx,
		specification.VisibleToSession{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.MaterialResponse, len(materials))
	for i, m := range materials {
		out[i] = toMaterialResponse(m)
	}
	return out, nil
}

// Deactivate hides a system-global material from retrieval. Session
// materials are not affected.
func (s *materialService) Deactivate(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	material, err := uow.MaterialRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if material == nil || material.Scope != entity.MaterialScopeSystem {
		return ErrMaterialNotFound
	}

	material.IsActive = false
	if err := uow.MaterialRepository().Update(ctx, material); err != nil {
		return err
	}
	s.chunkCache.Invalidate(id)
	return nil
}

// LoadCandidates returns the chunks retrieval may use: the requested session
// materials (all of them when none are requested) plus every active
// system-global material.
func (s *materialService) LoadCandidates(ctx context.Context, sessionId uuid.UUID, materialIds []uuid.UUID) ([]retriever.Candidate, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	materials, err := uow.MaterialRepository().FindAll(ctx,
		specification.VisibleToSession{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var candidates []retriever.Candidate
	for _, m := range materials {
		if m.Scope == entity.MaterialScopeSession {
			if m.ExpiresAt != nil && !now.Before(*m.ExpiresAt) {
				continue
			}
			if len(materialIds) > 0 && !slices.Contains(materialIds, m.Id) {
				continue
			}
		}

		if cached, ok := s.chunkCache.Get(m.Id); ok {
			candidates = append(candidates, cached...)
			continue
		}

		chunks, err := uow.MaterialChunkRepository().FindAll(ctx,
			specification.ByMaterialIDs{MaterialIDs: []uuid.UUID{m.Id}},
			specification.OrderBy{Field: "chunk_index"},
		)
		if err != nil {
			return nil, fmt.Errorf("load chunks of %s: %w", m.Id, err)
		}
		loaded := toCandidates(m, chunks)
		s.chunkCache.Set(m.Id, loaded)
		candidates = append(candidates, loaded...)
	}
	return candidates, nil
}

// SweepExpired hard-deletes session materials past their expiry together
// with their chunks.
func (s *materialService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	expired, err := uow.MaterialRepository().FindAll(ctx, specification.ExpiredBefore{Time: now})
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(expired))
	for i, m := range expired {
		ids[i] = m.Id
	}
	if err := uow.MaterialChunkRepository().DeleteByMaterialIds(ctx, ids); err != nil {
		return 0, err
	}
	if err := uow.MaterialRepository().DeleteByIds(ctx, ids); err != nil {
		return 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		s.chunkCache.Invalidate(id)
	}
	return len(ids), nil
}

func toCandidates(m *entity.Material, chunks []*entity.MaterialChunk) []retriever.Candidate {
	origin := retriever.OriginSession
	if m.Scope == entity.MaterialScopeSystem {
		origin = retriever.OriginSystem
	}

	out := make([]retriever.Candidate, len(chunks))
	for i, c := range chunks {
		out[i] = retriever.Candidate{
			MaterialID:  m.Id,
			SourceTitle: m.Title,
			Origin:      origin,
			Index:       c.ChunkIndex,
			Text:        c.Text,
			Embedding:   c.Embedding,
		}
	}
	return out
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		Id:        m.Id,
		Title:     m.Title,
		FileType:  m.FileType,
		Language:  m.Language,
		Scope:     string(m.Scope),
		IsActive:  m.IsActive,
		Chunks:    m.ChunkCount,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}
