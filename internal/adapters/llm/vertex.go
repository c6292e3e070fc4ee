package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/lacura/lacura-api/internal/domain"
)

// VertexClient is the alternative model backend on Vertex AI (Gemini),
// selected with LLM_BACKEND=vertex.
type VertexClient struct {
	client    *genai.Client
	modelName string
}

func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("GCP_PROJECT and GCP_LOCATION must be set")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Complete implements domain.LLMClient using Vertex AI. The leading system
// message becomes the system instruction; the rest is mapped onto the
// user/model turn structure Gemini expects.
func (v *VertexClient) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	var system string
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = m.Content
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	temp := float32(completionTemperature)
	outputTokens := int32(completionMaxTokens)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: outputTokens,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}

	return text, nil
}
