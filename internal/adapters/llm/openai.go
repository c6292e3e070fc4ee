package llm

import (
	"context"
	"fmt"

	openaiapi "github.com/sashabaranov/go-openai"

	"github.com/lacura/lacura-api/internal/domain"
)

const (
	completionTemperature = 0.7
	completionMaxTokens   = 600
)

// AzureClient implements domain.LLMClient on an Azure OpenAI deployment.
type AzureClient struct {
	api        *openaiapi.Client
	deployment string
}

func NewAzureClient(endpoint, apiKey, deployment string) (*AzureClient, error) {
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("OPENAI_ENDPOINT and OPENAI_API_KEY must be set")
	}
	if deployment == "" {
		deployment = "gpt-4"
	}

	cfg := openaiapi.DefaultAzureConfig(apiKey, endpoint)
	cfg.AzureModelMapperFunc = func(string) string { return deployment }

	return &AzureClient{
		api:        openaiapi.NewClientWithConfig(cfg),
		deployment: deployment,
	}, nil
}

func (c *AzureClient) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	req := openaiapi.ChatCompletionRequest{
		Model:       c.deployment,
		Messages:    toAPIMessages(messages),
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("azure openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("azure openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func toAPIMessages(msgs []domain.ChatMessage) []openaiapi.ChatCompletionMessage {
	out := make([]openaiapi.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openaiapi.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
