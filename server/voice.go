package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"memorylens/llm"
	"memorylens/store"
	"memorylens/utils"
)

type voiceRequest struct {
	APIKey              string                      `json:"apiKey"`
	Text                string                      `json:"text"`
	VoiceSettings       *store.VoiceSettings        `json:"voiceSettings"`
	PhotoAnalysis       *store.PhotoAnalysis        `json:"photoAnalysis"`
	ConversationHistory []store.ConversationMessage `json:"conversationHistory"`
	VoiceAgent          *store.VoiceAgent           `json:"voiceAgent"`
	Type                string                      `json:"type"` // "response" or "narration"
}

// handleVoice generates speech three ways: a conversational reply, a story
// narration, or plain text-to-speech, depending on which fields are present.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "ElevenLabs API key is required")
		return
	}
	if req.Type == "" {
		req.Type = "response"
	}

	speech := s.newSpeech(req.APIKey)
	history := req.ConversationHistory
	if s.store.Settings().Preferences.PrivacyMode {
		history = redactHistory(history)
	}

	var result *llm.SpeechResult
	var err error
	switch {
	case req.PhotoAnalysis != nil && req.ConversationHistory != nil && req.VoiceAgent != nil && req.Type == "response":
		result, err = speech.GenerateConversationResponse(r.Context(), req.PhotoAnalysis, history, *req.VoiceAgent)

	case req.PhotoAnalysis != nil && req.ConversationHistory != nil && req.VoiceAgent != nil && req.Type == "narration":
		result, err = speech.GenerateStoryNarration(r.Context(), req.PhotoAnalysis, history, *req.VoiceAgent)

	case req.Text != "" && req.VoiceSettings != nil:
		var audioURL string
		audioURL, err = speech.GenerateSpeech(r.Context(), req.Text, *req.VoiceSettings)
		if err == nil {
			result = &llm.SpeechResult{Text: req.Text, AudioURL: audioURL}
		}

	default:
		writeError(w, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	if err != nil {
		s.voiceError(w, err)
		return
	}

	writeData(w, map[string]interface{}{
		"audioUrl": result.AudioURL,
		"text":     result.Text,
		"duration": estimateDuration(result.Text),
	}, "Voice generated successfully")
}

// handleVoices lists the voices available to the supplied API key
func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	apiKey := r.URL.Query().Get("apiKey")
	if apiKey == "" {
		writeError(w, http.StatusBadRequest, "ElevenLabs API key is required")
		return
	}

	voices, err := s.newSpeech(apiKey).Voices(r.Context())
	if err != nil {
		s.logger.Error("voices retrieval failed: %v", err)
		if errors.Is(err, llm.ErrInvalidCredential) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired ElevenLabs API key")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to retrieve voices")
		return
	}

	writeData(w, map[string]interface{}{"voices": voices}, "Voices retrieved successfully")
}

// voiceError maps a speech-provider failure to the route's status codes
func (s *Server) voiceError(w http.ResponseWriter, err error) {
	s.logger.Error("voice generation failed: %v", err)

	var status int
	var msg string
	switch {
	case errors.Is(err, llm.ErrInvalidCredential):
		status, msg = http.StatusUnauthorized, "Invalid or expired ElevenLabs API key"
	case errors.Is(err, llm.ErrQuotaExceeded):
		status, msg = http.StatusPaymentRequired, "ElevenLabs quota exceeded. Please check your subscription."
	case errors.Is(err, llm.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, "Rate limit exceeded. Please wait before trying again."
	default:
		status, msg = http.StatusInternalServerError, "Failed to generate voice. Please check your API key and try again."
	}

	s.store.SetError("voice", msg)
	writeError(w, status, msg)
}

// estimateDuration approximates spoken length at 150 words per minute,
// rounded, never below one second.
func estimateDuration(text string) int {
	words := len(strings.Fields(text))
	seconds := int(math.Round(float64(words) / 150 * 60))
	if seconds < 1 {
		return 1
	}
	return seconds
}

// redactHistory strips personal identifiers from user messages before they
// leave the process. Stored conversations keep the original content.
func redactHistory(history []store.ConversationMessage) []store.ConversationMessage {
	out := make([]store.ConversationMessage, len(history))
	for i, m := range history {
		if m.Role == "user" {
			m.Content = utils.Redact(m.Content)
		}
		out[i] = m
	}
	return out
}
