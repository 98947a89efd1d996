package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"memorylens/store"
)

// OpenAIVision implements VisionProvider against any OpenAI-compatible chat
// completion endpoint with image input support. Used as the analysis backend
// when the deployment points at a self-hosted or proxy endpoint instead of
// Gemini.
type OpenAIVision struct {
	client *openai.Client
	config Config
}

// NewOpenAIVision creates an OpenAI-compatible vision client
func NewOpenAIVision(config Config) *OpenAIVision {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.Model == "" {
		config.Model = "gpt-4o"
	}

	return &OpenAIVision{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// Name returns the provider name
func (p *OpenAIVision) Name() string { return "openai" }

// AnalyzePhoto sends the image as a chat completion with an image part and
// parses the structured JSON reply.
func (p *OpenAIVision) AnalyzePhoto(ctx context.Context, imageData string) (*store.PhotoAnalysis, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		MaxTokens:   p.config.MaxTokens,
		Temperature: float32(p.config.Temperature),
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: analysisPrompt,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: imageData,
					},
				},
			},
		}},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, translateOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}

	var analysis store.PhotoAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Choices[0].Message.Content)), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	analysis.ID = uuid.NewString()
	return &analysis, nil
}

// translateOpenAIError maps go-openai API errors into the shared taxonomy
func translateOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if classified := classifyStatus(apiErr.HTTPStatusCode, apiErr.Message); classified != nil {
			return fmt.Errorf("openai: %w", classified)
		}
	}
	return fmt.Errorf("openai request failed: %w", err)
}
