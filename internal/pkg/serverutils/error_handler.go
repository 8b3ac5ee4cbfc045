package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sanketexe/legal-chatbot/pkg/rag"
)

// ErrorHandlerMiddleware is the single place errors from controllers and
// services become HTTP responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.Code).JSON(ApiResponse{
				Success: false,
				Message: apiErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ApiResponse{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		switch {
		case errors.Is(err, rag.ErrInvalidQuery), errors.Is(err, rag.ErrInvalidArgument):
			return ctx.Status(fiber.StatusBadRequest).JSON(ApiResponse{
				Success: false,
				Message: err.Error(),
			})
		case errors.Is(err, rag.ErrAssistantUnavailable):
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ApiResponse{
				Success: false,
				Message: "The legal assistant is temporarily unavailable. Please try again later.",
			})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(ApiResponse{
				Success: false,
				Message: "Internal server error",
			})
		}
	}
}
