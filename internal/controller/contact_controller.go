package controller

import (
	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/serverutils"
	"haskify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContactController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
}

type contactController struct {
	service service.IContactService
}

func NewContactController(service service.IContactService) IContactController {
	return &contactController{service: service}
}

func (c *contactController) RegisterRoutes(r fiber.Router) {
	r.Post("/contact", c.Send)
}

func (c *contactController) Send(ctx *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{Error: "Invalid request body"})
	}
	if errs := serverutils.ValidateRequest(req); len(errs) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.StatusResponse{Error: errs[0]})
	}

	if err := c.service.Send(ctx.Context(), &req); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.StatusResponse{Error: constant.ContactFailureMessage})
	}

	return ctx.JSON(dto.StatusResponse{Success: true})
}
