// Package llm contains the provider adapters: vision analysis (Gemini or any
// OpenAI-compatible endpoint), ElevenLabs speech synthesis, and the pure
// personality-driven response generator. Adapters translate provider failures
// into the shared taxonomy in errors.go; they never touch the store.
package llm

import (
	"context"

	"memorylens/store"
)

// VisionProvider analyzes a photo (as a base64 data URL) into a structured
// PhotoAnalysis. The returned analysis carries a fresh ID; PhotoID is left
// for the caller to set.
type VisionProvider interface {
	AnalyzePhoto(ctx context.Context, imageData string) (*store.PhotoAnalysis, error)
	Name() string
}

// Config carries per-provider settings shared by the adapters
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Voice describes one synthesizable voice offered by the speech provider
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// SpeechResult pairs generated reply text with its synthesized audio
type SpeechResult struct {
	Text     string
	AudioURL string
}
