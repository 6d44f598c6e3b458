package controller

import (
	"errors"
	"time"

	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/service"
	"haskify-be/pkg/runner"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type IRunnerController interface {
	RegisterRoutes(app fiber.Router)
	Run(ctx *fiber.Ctx) error
}

type runnerController struct {
	service   service.IRunnerService
	rateMax   int
	rateEvery time.Duration
}

func NewRunnerController(service service.IRunnerService, rateMax int, rateEvery time.Duration) IRunnerController {
	return &runnerController{service: service, rateMax: rateMax, rateEvery: rateEvery}
}

// RegisterRoutes mounts /run-python, rate limited per client IP.
func (c *runnerController) RegisterRoutes(app fiber.Router) {
	app.Post("/run-python", limiter.New(limiter.Config{
		Max:        c.rateMax,
		Expiration: c.rateEvery,
		LimitReached: func(ctx *fiber.Ctx) error {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.RunCodeResponse{Output: constant.RunnerRateLimitedMessage})
		},
	}), c.Run)
}

func (c *runnerController) Run(ctx *fiber.Ctx) error {
	var req dto.RunCodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.RunCodeResponse{Output: constant.RunnerInvalidCodeMessage})
	}

	res, err := c.service.Run(ctx.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, runner.ErrInvalidCode):
			return ctx.Status(fiber.StatusBadRequest).JSON(dto.RunCodeResponse{Output: constant.RunnerInvalidCodeMessage})
		case errors.Is(err, runner.ErrBlockedCode):
			return ctx.Status(fiber.StatusBadRequest).JSON(dto.RunCodeResponse{Output: constant.RunnerBlockedCodeMessage})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.RunCodeResponse{Output: constant.RunnerTimeoutMessage})
	}

	return ctx.JSON(res)
}
