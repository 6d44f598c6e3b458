package controller

import (
	"errors"

	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IAdminController manages the system-global course materials shared by
// every session.
type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	UploadSystemMaterial(ctx *fiber.Ctx) error
	DeactivateMaterial(ctx *fiber.Ctx) error
}

type adminController struct {
	service  service.IMaterialService
	adminKey string
	logger   logger.ILogger
}

func NewAdminController(service service.IMaterialService, adminKey string, logger logger.ILogger) IAdminController {
	return &adminController{service: service, adminKey: adminKey, logger: logger}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin", serverutils.AdminKeyMiddleware(c.adminKey))
	h.Post("/materials", c.UploadSystemMaterial)
	h.Patch("/materials/:id/deactivate", c.DeactivateMaterial)
}

func (c *adminController) UploadSystemMaterial(ctx *fiber.Ctx) error {
	req, err := readUpload(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Missing file"))
	}

	res, err := c.service.Upload(ctx.Context(), req)
	if err != nil {
		status, msg := uploadFailure(err)
		if status == fiber.StatusInternalServerError {
			c.logger.Error("ADMIN", "System material upload failed", map[string]interface{}{
				"filename": req.Filename,
				"error":    err.Error(),
			})
		}
		return ctx.Status(status).JSON(serverutils.ErrorResponse(msg))
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("System material created", res))
}

func (c *adminController) DeactivateMaterial(ctx *fiber.Ctx) error {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Deactivate(ctx.Context(), id); err != nil {
		if errors.Is(err, service.ErrMaterialNotFound) {
			return serverutils.NotFound("Material not found")
		}
		return err
	}

	c.logger.Info("ADMIN", "System material deactivated", map[string]interface{}{"material_id": id})
	return ctx.JSON(serverutils.SuccessResponse("Material deactivated", nil))
}
