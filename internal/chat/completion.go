package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// CompletionClient calls an OpenAI-compatible chat-completion endpoint
type CompletionClient struct {
	client *resty.Client
	model  string
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      completionMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type completionError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewCompletionClient creates a client for baseURL such as "https://api.openai.com/v1"
func NewCompletionClient(baseURL, apiKey, model string) *CompletionClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetTimeout(60 * time.Second)

	return &CompletionClient{client: client, model: model}
}

// Complete sends a system and user message and returns the first choice
func (c *CompletionClient) Complete(ctx context.Context, system, user string) (string, error) {
	var result completionResponse
	var apiErr completionError

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(completionRequest{
			Model: c.model,
			Messages: []completionMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			Temperature: 0.7,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to call chat completion API: %w", err)
	}

	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("chat completion API returned status %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("chat completion API returned status %d", resp.StatusCode())
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat completion API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
