package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"ai-studypal-be/internal/dto"
	"ai-studypal-be/pkg/gate"
)

var validate = validator.New()

// BaseResponse is the envelope every API response uses.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// ValidateRequest runs struct tag validation and flattens the first failure
// into a readable message.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New("invalid field: " + verrs[0].Field())
		}
		return err
	}
	return nil
}

// ErrorHandlerMiddleware converts domain errors that escape controllers into
// their API representation. Insufficient token balance gets a 402 with a
// payload the frontend uses to open the buy-tokens modal.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var insufficient *gate.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			return ctx.Status(fiber.StatusPaymentRequired).JSON(dto.InsufficientTokensResponse{
				Success:   false,
				Code:      fiber.StatusPaymentRequired,
				Message:   "Insufficient token balance",
				ErrorType: "insufficient_tokens",
				Data: dto.InsufficientTokensData{
					Balance:      insufficient.Balance,
					ShowModalBuy: true,
				},
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}
