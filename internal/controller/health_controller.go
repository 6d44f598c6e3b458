package controller

import "github.com/gofiber/fiber/v2"

type HealthController struct{}

func (HealthController) RegisterRoutes(app fiber.Router) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
}
