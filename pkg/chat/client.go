package chat

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quickgeo/fullgeo-backend/environments"
)

// Client proxies user messages to the completion API with a fixed system
// prompt. It keeps no conversation state.
type Client struct {
	api          *openai.Client
	model        string
	systemPrompt string
}

func NewClient(cfg environments.ChatConfig) *Client {
	return &Client{
		api:          openai.NewClient(cfg.APIKey),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
	}
}

func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
