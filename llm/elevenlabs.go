package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto"

	"memorylens/store"
	"memorylens/utils"
)

// ElevenLabsClient talks to the ElevenLabs speech API and drives the
// personality response generator. Speech comes back as an audio/mpeg data
// URL so the caller can hand it straight to a player.
type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	modelID string
	client  *http.Client
	voices  *ristretto.Cache
}

const voicesCacheTTL = 10 * time.Minute

// NewElevenLabsClient creates a speech client. The voices list is cached per
// API key to keep repeated settings-page loads from burning rate limit.
func NewElevenLabsClient(config Config) *ElevenLabsClient {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io/v1"
	}
	modelID := config.Model
	if modelID == "" {
		modelID = "eleven_multilingual_v2"
	}

	cache, _ := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 10,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})

	return &ElevenLabsClient{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		modelID: modelID,
		client:  &http.Client{},
		voices:  cache,
	}
}

type speechRequest struct {
	Text          string              `json:"text"`
	ModelID       string              `json:"model_id"`
	VoiceSettings speechVoiceSettings `json:"voice_settings"`
}

type speechVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// GenerateSpeech synthesizes text with the given voice settings and returns
// the audio as a data URL.
func (c *ElevenLabsClient) GenerateSpeech(ctx context.Context, text string, settings store.VoiceSettings) (string, error) {
	req := speechRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: speechVoiceSettings{
			Stability:       settings.Stability,
			SimilarityBoost: settings.SimilarityBoost,
			Style:           settings.Style,
			UseSpeakerBoost: true,
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, settings.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", apiError("elevenlabs", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}
	return utils.BuildDataURL("audio/mpeg", audio), nil
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

// Voices lists the voices available to this API key
func (c *ElevenLabsClient) Voices(ctx context.Context) ([]Voice, error) {
	if cached, ok := c.voices.Get(c.apiKey); ok {
		return cached.([]Voice), nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, apiError("elevenlabs", resp.StatusCode, string(body))
	}

	var parsed voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	c.voices.SetWithTTL(c.apiKey, parsed.Voices, int64(len(parsed.Voices)+1), voicesCacheTTL)
	// flush the admission buffer so the next call sees the entry
	c.voices.Wait()
	return parsed.Voices, nil
}

// GenerateConversationResponse builds the next assistant reply from the
// analysis, history, and personality, then synthesizes it.
func (c *ElevenLabsClient) GenerateConversationResponse(ctx context.Context, analysis *store.PhotoAnalysis, history []store.ConversationMessage, agent store.VoiceAgent) (*SpeechResult, error) {
	text := GenerateResponseText(analysis, history, agent)

	audioURL, err := c.GenerateSpeech(ctx, text, agent.VoiceSettings)
	if err != nil {
		return nil, err
	}
	return &SpeechResult{Text: text, AudioURL: audioURL}, nil
}

// GenerateStoryNarration builds a closing narration over the whole
// conversation and synthesizes it with more dramatic settings.
func (c *ElevenLabsClient) GenerateStoryNarration(ctx context.Context, analysis *store.PhotoAnalysis, history []store.ConversationMessage, agent store.VoiceAgent) (*SpeechResult, error) {
	text := GenerateNarrationText(analysis, history, agent)

	settings := agent.VoiceSettings
	settings.Stability = clamp01(settings.Stability + 0.2)
	settings.Style = clamp01(settings.Style + 0.3)

	audioURL, err := c.GenerateSpeech(ctx, text, settings)
	if err != nil {
		return nil, err
	}
	return &SpeechResult{Text: text, AudioURL: audioURL}, nil
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
