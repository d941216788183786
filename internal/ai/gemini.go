package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"okr-planner-backend/internal/errlog"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient calls the Gemini API directly instead of going through the proxy.
type GeminiClient struct {
	models contentGenerator
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{models: client.Models, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, params Params) (any, error) {
	model := c.model
	if params.Model != "" {
		model = params.Model
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(planningSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	if params.Temperature != nil {
		t := float32(*params.Temperature)
		cfg.Temperature = &t
	}
	if params.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(params.MaxTokens)
	}

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, errlog.Wrap(errlog.CodeUpstreamFailure, "gemini generate failed", err).With("model", model)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, errlog.New(errlog.CodeUpstreamFailure, "empty answer from gemini").With("model", model)
	}
	return text, nil
}

var _ Generator = (*GeminiClient)(nil)
