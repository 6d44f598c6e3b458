package controller

import (
	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/service"
	"haskify-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type ITutorController interface {
	RegisterRoutes(app fiber.Router)
	Ask(ctx *fiber.Ctx) error
}

type tutorController struct {
	service  service.ITutorService
	sessions service.ISessionService
	issuer   *serverutils.SessionTokenIssuer
	hub      *websocket.Hub
	logger   logger.ILogger
}

func NewTutorController(
	service service.ITutorService,
	sessions service.ISessionService,
	issuer *serverutils.SessionTokenIssuer,
	hub *websocket.Hub,
	logger logger.ILogger,
) ITutorController {
	return &tutorController{service: service, sessions: sessions, issuer: issuer, hub: hub, logger: logger}
}

// RegisterRoutes mounts /ai/ask and /ws/ai/ask on the application root.
func (c *tutorController) RegisterRoutes(app fiber.Router) {
	guard := sessionGuard(c.issuer, c.sessions)
	app.Post("/ai/ask", append(guard, c.Ask)...)

	ws := app.Group("/ws", guard...)
	ws.Use(func(ctx *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/ai/ask", fiberws.New(func(conn *fiberws.Conn) {
		sessionId, _ := conn.Locals(serverutils.SessionLocalKey).(uuid.UUID)
		websocket.ServeTutor(c.hub, conn, sessionId, c.service)
	}))
}

func (c *tutorController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.AskResponse{Response: "Invalid request body"})
	}
	if errs := serverutils.ValidateRequest(req); len(errs) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Invalid request", errs...))
	}

	sessionId := mustSessionID(ctx)
	res, err := c.service.Ask(ctx.Context(), sessionId, &req)
	if err != nil {
		c.logger.Error("TUTOR", "Ask failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.AskResponse{Response: constant.TutorFailureReply})
	}

	return ctx.JSON(res)
}
