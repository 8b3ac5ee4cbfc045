package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sanketexe/legal-chatbot/internal/dto"
	"github.com/sanketexe/legal-chatbot/internal/pkg/serverutils"
	"github.com/sanketexe/legal-chatbot/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	SearchCases(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Ask)
	h.Get("search-cases", c.SearchCases)
	h.Get("health", c.Health)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Ask(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *chatController) SearchCases(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	topK := ctx.QueryInt("top_k", 0)

	res, err := c.chatService.SearchCases(ctx.Context(), query, topK)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search cases", res))
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	res, err := c.chatService.Health(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", res))
}
