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

	"memorylens/utils"
)

const analysisFixture = `{
	"visualContent": {
		"objects": ["cake", "balloons"],
		"setting": "living room",
		"timeOfDay": "afternoon",
		"activity": "a birthday party"
	},
	"quality": {"overall": 85, "sharpness": 90},
	"enhancement": {"suggestions": [], "priority": "low"},
	"story": {
		"suggestedQuestions": ["What was the occasion?"],
		"themes": ["celebration"],
		"emotionalTone": "joyful"
	}
}`

func geminiCandidateBody(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
				"role":  "model",
			},
			"finishReason": "STOP",
		}},
	})
	return string(body)
}

func testImageDataURL() string {
	return utils.BuildDataURL("image/jpeg", []byte("not a real jpeg"))
}

func TestGeminiAnalyzePhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash-image-preview:generateContent")
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.NotEmpty(t, req.Contents[0].Parts[0].Text)
		require.NotNil(t, req.Contents[0].Parts[1].InlineData)
		assert.Equal(t, "image/jpeg", req.Contents[0].Parts[1].InlineData.MimeType)
		assert.Len(t, req.SafetySettings, 4)

		w.Write([]byte(geminiCandidateBody(analysisFixture)))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "secret", BaseURL: srv.URL})
	analysis, err := client.AnalyzePhoto(context.Background(), testImageDataURL())
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.ID)
	assert.Empty(t, analysis.PhotoID, "photo binding is the caller's job")
	assert.Equal(t, []string{"cake", "balloons"}, analysis.VisualContent.Objects)
	assert.Equal(t, 85, analysis.Quality.Overall)
	assert.Equal(t, "joyful", analysis.Story.EmotionalTone)
}

func TestGeminiAnalyzePhoto_FencedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n" + analysisFixture + "\n```"
		w.Write([]byte(geminiCandidateBody(fenced)))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "secret", BaseURL: srv.URL})
	analysis, err := client.AnalyzePhoto(context.Background(), testImageDataURL())
	require.NoError(t, err)
	assert.Equal(t, "joyful", analysis.Story.EmotionalTone)
}

func TestGeminiAnalyzePhoto_InvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"details": [{"reason": "API_KEY_INVALID"}]}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "bad", BaseURL: srv.URL})
	_, err := client.AnalyzePhoto(context.Background(), testImageDataURL())
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestGeminiAnalyzePhoto_QuotaExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "secret", BaseURL: srv.URL})
	_, err := client.AnalyzePhoto(context.Background(), testImageDataURL())
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestGeminiAnalyzePhoto_UnparsableReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiCandidateBody("I'm sorry, I can't analyze this image.")))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "secret", BaseURL: srv.URL})
	_, err := client.AnalyzePhoto(context.Background(), testImageDataURL())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGeminiAnalyzePhoto_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{APIKey: "secret", BaseURL: srv.URL})
	_, err := client.AnalyzePhoto(context.Background(), testImageDataURL())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGeminiAnalyzePhoto_BadDataURL(t *testing.T) {
	client := NewGeminiClient(Config{APIKey: "secret"})
	_, err := client.AnalyzePhoto(context.Background(), "data:image/jpeg;base64,!!!not-base64!!!")
	assert.Error(t, err)
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripCodeFences(tc.in), "in=%q", tc.in)
	}
}

func TestGeminiDefaults(t *testing.T) {
	client := NewGeminiClient(Config{APIKey: "k"})
	assert.Equal(t, "gemini", client.Name())
	assert.True(t, strings.HasPrefix(client.baseURL, "https://generativelanguage.googleapis.com"))
	assert.Equal(t, "gemini-2.5-flash-image-preview", client.config.Model)
	assert.Equal(t, 8192, client.config.MaxTokens)
}
