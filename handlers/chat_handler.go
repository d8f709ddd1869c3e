package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/quickgeo/fullgeo-backend/pkg/chat"
	"github.com/quickgeo/fullgeo-backend/pkg/response"
	"github.com/quickgeo/fullgeo-backend/pkg/validator"
)

type ChatHandler struct {
	client *chat.Client
}

func NewChatHandler(client *chat.Client) *ChatHandler {
	return &ChatHandler{client: client}
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// Chat godoc
// @Summary Support chatbot
// @Description Forwards the message to the completion API with the product's fixed system prompt
// @Tags chat
// @Accept json
// @Produce json
// @Param x-fg-auth-key header string true "API key"
// @Param request body ChatRequest true "User message"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	reply, err := h.client.Complete(c.Request().Context(), req.Message)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{"reply": reply})
}
