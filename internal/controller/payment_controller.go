package controller

import (
	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/pkg/serverutils"
	"ai-studypal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	ListPackages(ctx *fiber.Ctx) error
	CreateTopup(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
	GetOrder(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
}

func NewPaymentController(service service.IPaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")

	// Midtrans calls the webhook unauthenticated; the signature check guards it.
	h.Post("/webhook", c.Webhook)
	h.Get("/packages", c.ListPackages)

	authed := h.Group("")
	authed.Use(serverutils.JwtMiddleware)
	authed.Post("/topup", c.CreateTopup)
	authed.Get("/orders/:orderId", c.GetOrder)
}

func (c *paymentController) ListPackages(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Token packages", c.service.ListPackages(ctx.Context())))
}

func (c *paymentController) CreateTopup(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateTopupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.CreateTopup(ctx.Context(), userId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Topup order created", res))
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransNotification
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid notification body"))
	}

	if err := c.service.HandleNotification(ctx.Context(), &req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("OK", nil))
}

func (c *paymentController) GetOrder(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.GetOrder(ctx.Context(), userId, ctx.Params("orderId"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Topup order", res))
}
