package controller

import (
	"errors"

	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ITranscriptController stores chat transcripts. The routes are public:
// transcripts outlive the session that produced them.
type ITranscriptController interface {
	RegisterRoutes(r fiber.Router)
	Save(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type transcriptController struct {
	service service.ITranscriptService
	logger  logger.ILogger
}

func NewTranscriptController(service service.ITranscriptService, logger logger.ILogger) ITranscriptController {
	return &transcriptController{service: service, logger: logger}
}

func (c *transcriptController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/save-session")
	h.Post("", c.Save)
	h.Patch(":id", c.Update)
}

func transcriptFailure(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(dto.StatusResponse{Success: false, Error: msg})
}

func (c *transcriptController) Save(ctx *fiber.Ctx) error {
	var req dto.SaveTranscriptRequest
	if err := ctx.BodyParser(&req); err != nil || len(req.Session) == 0 {
		return transcriptFailure(ctx, fiber.StatusBadRequest, constant.TranscriptRequiredMessage)
	}

	id, err := c.service.Save(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyTranscript) {
			return transcriptFailure(ctx, fiber.StatusBadRequest, constant.TranscriptRequiredMessage)
		}
		c.logger.Error("TRANSCRIPT", "Failed to save transcript", map[string]interface{}{"error": err.Error()})
		return transcriptFailure(ctx, fiber.StatusInternalServerError, constant.TranscriptSaveFailedMessage)
	}

	return ctx.JSON(dto.SaveTranscriptResponse{Success: true, Id: &id})
}

func (c *transcriptController) Update(ctx *fiber.Ctx) error {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return transcriptFailure(ctx, fiber.StatusNotFound, constant.TranscriptNotFoundMessage)
	}

	var req dto.SaveTranscriptRequest
	if err := ctx.BodyParser(&req); err != nil || len(req.Session) == 0 {
		return transcriptFailure(ctx, fiber.StatusBadRequest, constant.TranscriptRequiredMessage)
	}

	if err := c.service.Update(ctx.Context(), id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyTranscript):
			return transcriptFailure(ctx, fiber.StatusBadRequest, constant.TranscriptRequiredMessage)
		case errors.Is(err, service.ErrTranscriptMissing):
			return transcriptFailure(ctx, fiber.StatusNotFound, constant.TranscriptNotFoundMessage)
		}
		c.logger.Error("TRANSCRIPT", "Failed to update transcript", map[string]interface{}{
			"transcript_id": id,
			"error":         err.Error(),
		})
		return transcriptFailure(ctx, fiber.StatusInternalServerError, constant.TranscriptUpdateFailMessage)
	}

	return ctx.JSON(dto.SaveTranscriptResponse{Success: true})
}
