package controller

import (
	"errors"

	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQuizController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
}

type quizController struct {
	service  service.IQuizService
	sessions service.ISessionService
	issuer   *serverutils.SessionTokenIssuer
	logger   logger.ILogger
}

func NewQuizController(
	service service.IQuizService,
	sessions service.ISessionService,
	issuer *serverutils.SessionTokenIssuer,
	logger logger.ILogger,
) IQuizController {
	return &quizController{service: service, sessions: sessions, issuer: issuer, logger: logger}
}

func (c *quizController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/quiz", sessionGuard(c.issuer, c.sessions)...)
	h.Post("", c.Generate)
	h.Post(":id/answer", c.Answer)
}

func (c *quizController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	sessionId := mustSessionID(ctx)
	res, err := c.service.Generate(ctx.Context(), sessionId, &req)
	if err != nil {
		c.logger.Error("QUIZ", "Quiz generation failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": constant.QuizFailureMessage})
	}

	return ctx.JSON(res)
}

func (c *quizController) Answer(ctx *fiber.Ctx) error {
	quizId, err := paramUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.AnswerQuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body", err)
	}
	if errs := serverutils.ValidateRequest(req); len(errs) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Invalid request", errs...))
	}

	res, err := c.service.Answer(ctx.Context(), mustSessionID(ctx), quizId, *req.ChoiceIndex)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			return serverutils.NotFound("Quiz not found")
		case errors.Is(err, service.ErrInvalidChoice):
			return serverutils.BadRequest("Invalid choice", err)
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer recorded", res))
}
