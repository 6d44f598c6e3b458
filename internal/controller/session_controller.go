package controller

import (
	"context"

	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

// StreamCloser drops the open tutor streams of a session.
type StreamCloser interface {
	Disconnect(ctx context.Context, sessionId uuid.UUID)
}

type sessionController struct {
	service service.ISessionService
	issuer  *serverutils.SessionTokenIssuer
	streams StreamCloser
}

func NewSessionController(service service.ISessionService, issuer *serverutils.SessionTokenIssuer, streams StreamCloser) ISessionController {
	return &sessionController{service: service, issuer: issuer, streams: streams}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Post("", c.Create)
	h.Delete(":id", append(sessionGuard(c.issuer, c.service), c.Delete)...)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	res, err := c.service.Create(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}
	if id != mustSessionID(ctx) {
		return &serverutils.AppError{Code: fiber.StatusForbidden, Message: "Token does not belong to this session"}
	}

	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	if c.streams != nil {
		c.streams.Disconnect(ctx.Context(), id)
	}

	return ctx.JSON(serverutils.SuccessResponse("Session deleted", nil))
}
