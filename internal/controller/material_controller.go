package controller

import (
	"errors"

	"haskify-be/internal/constant"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/service"
	"haskify-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
)

type IMaterialController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
}

type materialController struct {
	service  service.IMaterialService
	sessions service.ISessionService
	issuer   *serverutils.SessionTokenIssuer
	logger   logger.ILogger
}

func NewMaterialController(
	service service.IMaterialService,
	sessions service.ISessionService,
	issuer *serverutils.SessionTokenIssuer,
	logger logger.ILogger,
) IMaterialController {
	return &materialController{service: service, sessions: sessions, issuer: issuer, logger: logger}
}

func (c *materialController) RegisterRoutes(r fiber.Router) {
	guard := sessionGuard(c.issuer, c.sessions)
	r.Post("/upload-material", append(guard, c.Upload)...)
	r.Get("/materials", append(guard, c.GetAll)...)
	r.Get("/materials/:id", append(guard, c.Show)...)
}

func (c *materialController) Upload(ctx *fiber.Ctx) error {
	req, err := readUpload(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": constant.UploadMissingFileMessage})
	}
	sessionId := mustSessionID(ctx)
	req.SessionId = &sessionId

	res, err := c.service.Upload(ctx.Context(), req)
	if err != nil {
		status, msg := uploadFailure(err)
		if status == fiber.StatusInternalServerError {
			c.logger.Error("MATERIAL", "Upload failed", map[string]interface{}{
				"session_id": sessionId,
				"filename":   req.Filename,
				"error":      err.Error(),
			})
		}
		return ctx.Status(status).JSON(fiber.Map{"error": msg})
	}

	return ctx.JSON(res)
}

// uploadFailure maps ingestion errors to the status and message the upload
// routes answer with.
func uploadFailure(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyUpload):
		return fiber.StatusBadRequest, constant.UploadMissingFileMessage
	case errors.Is(err, service.ErrUploadTooLarge):
		return fiber.StatusRequestEntityTooLarge, "File is too large"
	case errors.Is(err, extract.ErrUnsupportedType):
		return fiber.StatusBadRequest, constant.UploadUnsupportedMessage
	case errors.Is(err, extract.ErrUnextractable):
		return fiber.StatusBadRequest, constant.UploadUnextractableMessage
	default:
		return fiber.StatusInternalServerError, constant.UploadFailedMessage
	}
}

func (c *materialController) Show(ctx *fiber.Ctx) error {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": constant.MaterialNotFoundMessage})
	}

	res, err := c.service.Show(ctx.Context(), mustSessionID(ctx), id)
	if err != nil {
		if errors.Is(err, service.ErrMaterialNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": constant.MaterialNotFoundMessage})
		}
		return err
	}

	return ctx.JSON(res)
}

func (c *materialController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context(), mustSessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all materials", res))
}
