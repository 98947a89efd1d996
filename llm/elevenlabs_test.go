package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorylens/store"
)

func TestGenerateSpeech(t *testing.T) {
	audio := []byte("fake mp3 bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/text-to-speech/voice-123", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))

		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello world", req.Text)
		assert.Equal(t, "eleven_multilingual_v2", req.ModelID)
		assert.InDelta(t, 0.7, req.VoiceSettings.Stability, 0.001)
		assert.True(t, req.VoiceSettings.UseSpeakerBoost)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer srv.Close()

	client := NewElevenLabsClient(Config{APIKey: "secret", BaseURL: srv.URL})
	settings := store.VoiceSettings{VoiceID: "voice-123", Stability: 0.7, SimilarityBoost: 0.8}

	dataURL, err := client.GenerateSpeech(context.Background(), "hello world", settings)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:audio/mpeg;base64,"))
}

func TestGenerateSpeech_ErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, "bad key", ErrInvalidCredential},
		{http.StatusPaymentRequired, "out of credits", ErrQuotaExceeded},
		{http.StatusTooManyRequests, "too many requests", ErrRateLimited},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))

		client := NewElevenLabsClient(Config{APIKey: "secret", BaseURL: srv.URL})
		_, err := client.GenerateSpeech(context.Background(), "hi", store.VoiceSettings{VoiceID: "v"})
		assert.ErrorIs(t, err, tc.want, "status=%d", tc.status)
		srv.Close()
	}
}

func TestVoices_CachesPerKey(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/voices", r.URL.Path)
		json.NewEncoder(w).Encode(voicesResponse{Voices: []Voice{
			{VoiceID: "v1", Name: "Bella", Category: "premade"},
			{VoiceID: "v2", Name: "Adam", Category: "premade"},
		}})
	}))
	defer srv.Close()

	client := NewElevenLabsClient(Config{APIKey: "secret", BaseURL: srv.URL})

	first, err := client.Voices(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Bella", first[0].Name)

	second, err := client.Voices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second lookup must come from cache")
}

func TestVoices_InvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api key"))
	}))
	defer srv.Close()

	client := NewElevenLabsClient(Config{APIKey: "bad", BaseURL: srv.URL})
	_, err := client.Voices(context.Background())
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestGenerateConversationResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	client := NewElevenLabsClient(Config{APIKey: "secret", BaseURL: srv.URL})
	result, err := client.GenerateConversationResponse(context.Background(), testAnalysis(), nil, agentWith("warm"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Text, "Hello there!"))
	assert.True(t, strings.HasPrefix(result.AudioURL, "data:audio/mpeg;base64,"))
}

func TestGenerateStoryNarration_BoostsSettings(t *testing.T) {
	var got speechVoiceSettings
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = req.VoiceSettings
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	client := NewElevenLabsClient(Config{APIKey: "secret", BaseURL: srv.URL})
	agent := agentWith("warm")
	agent.VoiceSettings = store.VoiceSettings{VoiceID: "v", Stability: 0.7, Style: 0.9}

	result, err := client.GenerateStoryNarration(context.Background(), testAnalysis(), nil, agent)
	require.NoError(t, err)

	assert.Contains(t, result.Text, "This photograph captures a moment of")
	assert.InDelta(t, 0.9, got.Stability, 0.001)
	assert.InDelta(t, 1.0, got.Style, 0.001, "style clamps at 1.0")
}
