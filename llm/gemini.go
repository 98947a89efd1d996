package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"memorylens/store"
	"memorylens/utils"
)

// GeminiClient implements VisionProvider against the Gemini REST API
type GeminiClient struct {
	apiKey  string
	baseURL string
	config  Config
	client  *http.Client
}

// geminiContent represents content in Gemini's format
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

// geminiInlineData carries base64-encoded image bytes
type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []geminiSafetySetting   `json:"safetySettings,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// NewGeminiClient creates a Gemini vision client
func NewGeminiClient(config Config) *GeminiClient {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 8192
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.Model == "" {
		config.Model = "gemini-2.5-flash-image-preview"
	}

	return &GeminiClient{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		config:  config,
		client:  &http.Client{},
	}
}

// Name returns the provider name
func (c *GeminiClient) Name() string { return "gemini" }

const analysisPrompt = `Analyze this photo in detail and provide a comprehensive analysis in JSON format.

Please analyze:
1. Visual content (objects, people, emotions, setting, time of day, weather, activities)
2. Photo quality metrics (sharpness, brightness, contrast, saturation, noise level)
3. Enhancement suggestions with priorities
4. Story elements (suggested questions, themes, emotional tone)

Return a JSON object with this structure:
{
  "visualContent": {
    "objects": ["object1", "object2"],
    "people": [{"confidence": 0.95, "estimatedAge": "adult", "emotions": [{"emotion": "joy", "confidence": 0.8}]}],
    "emotions": [{"emotion": "joy", "confidence": 0.8}],
    "setting": "indoor/outdoor description",
    "timeOfDay": "morning/afternoon/evening/night",
    "weather": "sunny/cloudy/rainy/etc",
    "activity": "description of what's happening"
  },
  "quality": {
    "overall": 85,
    "sharpness": 90,
    "brightness": 80,
    "contrast": 85,
    "saturation": 75,
    "noise": 10
  },
  "enhancement": {
    "suggestions": [
      {"type": "brightness", "intensity": 15, "description": "Slightly brighten the image"},
      {"type": "contrast", "intensity": 10, "description": "Enhance contrast for better definition"}
    ],
    "priority": "medium"
  },
  "story": {
    "suggestedQuestions": [
      "What was the occasion for this photo?",
      "Who are the people in this image?",
      "What memories does this bring back?"
    ],
    "themes": ["family", "celebration", "happiness"],
    "emotionalTone": "joyful and warm"
  }
}

Be specific and detailed in your analysis. Focus on elements that would help create meaningful conversations about memories.`

// AnalyzePhoto sends the image to the vision model and parses its structured
// JSON reply. The analysis gets a fresh ID; PhotoID is left for the caller.
func (c *GeminiClient) AnalyzePhoto(ctx context.Context, imageData string) (*store.PhotoAnalysis, error) {
	mimeType, raw, err := utils.ParseDataURL(imageData)
	if err != nil {
		return nil, err
	}

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: analysisPrompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(raw),
				}},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxTokens,
		},
		SafetySettings: defaultSafetySettings(),
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var analysis store.PhotoAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	analysis.ID = uuid.NewString()
	return &analysis, nil
}

// generate performs a non-streaming generateContent call and returns the
// first candidate's text.
func (c *GeminiClient) generate(ctx context.Context, req geminiRequest) (string, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.config.Model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", apiError("gemini", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrMalformedResponse)
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

func defaultSafetySettings() []geminiSafetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}

	settings := make([]geminiSafetySetting, len(categories))
	for i, category := range categories {
		settings[i] = geminiSafetySetting{
			Category:  category,
			Threshold: "BLOCK_MEDIUM_AND_ABOVE",
		}
	}
	return settings
}

// stripCodeFences removes a surrounding markdown code fence, which the model
// often wraps around JSON replies despite instructions.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
