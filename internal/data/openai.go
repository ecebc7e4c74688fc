package data

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"telegram-filter-bot/internal/biz/repo"
)

// CompletionClient talks to an OpenAI-compatible completion endpoint.
type CompletionClient struct {
	client *openai.Client
}

// NewCompletionClient creates a completion client. baseURL overrides the
// endpoint for OpenAI-compatible providers; empty keeps the default.
func NewCompletionClient(apiKey, baseURL string) *CompletionClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &CompletionClient{client: openai.NewClientWithConfig(config)}
}

// Complete sends the message list to the named model. Failures come back as
// *repo.ProviderError; the request itself is a black box to the caller.
func (c *CompletionClient) Complete(ctx context.Context, model string, messages []repo.Message) (*repo.Completion, error) {
	reqMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		reqMessages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: reqMessages,
	})
	if err != nil {
		return nil, &repo.ProviderError{Model: model, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &repo.ProviderError{Model: model, Err: errNoChoices}
	}

	return &repo.Completion{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

var errNoChoices = errors.New("no response choices")

var _ repo.CompletionRepo = (*CompletionClient)(nil)
