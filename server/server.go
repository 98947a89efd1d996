// Package server exposes the HTTP surface: /analyze, /upload, /voice, and
// /voices, all speaking the {success, data?, error?, message?} envelope.
// Handlers validate input, call the provider adapters, and record results
// into the memory store.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"sync"

	"memorylens/llm"
	"memorylens/store"
	"memorylens/utils"
)

// Logger is the subset of the application logger the server needs
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SpeechClient is the voice-provider surface the handlers depend on.
// Satisfied by *llm.ElevenLabsClient; tests substitute a stub.
type SpeechClient interface {
	GenerateSpeech(ctx context.Context, text string, settings store.VoiceSettings) (string, error)
	Voices(ctx context.Context) ([]llm.Voice, error)
	GenerateConversationResponse(ctx context.Context, analysis *store.PhotoAnalysis, history []store.ConversationMessage, agent store.VoiceAgent) (*llm.SpeechResult, error)
	GenerateStoryNarration(ctx context.Context, analysis *store.PhotoAnalysis, history []store.ConversationMessage, agent store.VoiceAgent) (*llm.SpeechResult, error)
}

// Server wires the store, config, and provider factories into HTTP handlers.
// Providers are built per request because the credential arrives with each
// call rather than living in server config. Speech clients are memoized per
// API key so their voices cache survives across requests.
type Server struct {
	store  *store.Store
	config *utils.Config
	logger Logger

	visionName string // backend the vision factory selects, "gemini" or "openai"
	newVision  func(apiKey string) llm.VisionProvider
	newSpeech  func(apiKey string) SpeechClient
}

// New creates a server with the default provider factories
func New(st *store.Store, config *utils.Config, logger Logger) *Server {
	s := &Server{
		store:  st,
		config: config,
		logger: logger,
	}

	s.visionName = "gemini"
	if pc, ok := config.Providers["openai"]; ok && pc.Enabled {
		s.visionName = "openai"
	}

	s.newVision = func(apiKey string) llm.VisionProvider {
		cfg := llm.Config{APIKey: apiKey}
		if pc, ok := config.Providers[s.visionName]; ok {
			cfg.BaseURL = pc.BaseURL
			cfg.Model = pc.Model
			cfg.MaxTokens = pc.MaxTokens
			cfg.Temperature = pc.Temperature
		}
		if s.visionName == "openai" {
			return llm.NewOpenAIVision(cfg)
		}
		return llm.NewGeminiClient(cfg)
	}

	// Memoize speech clients per key so repeated /voices calls with the same
	// credential hit the client's voices cache instead of the provider.
	var mu sync.Mutex
	speechClients := make(map[string]SpeechClient)
	s.newSpeech = func(apiKey string) SpeechClient {
		mu.Lock()
		defer mu.Unlock()
		if c, ok := speechClients[apiKey]; ok {
			return c
		}
		cfg := llm.Config{APIKey: apiKey}
		if pc, ok := config.Providers["elevenlabs"]; ok {
			cfg.BaseURL = pc.BaseURL
			cfg.Model = pc.Model
		}
		c := llm.NewElevenLabsClient(cfg)
		speechClients[apiKey] = c
		return c
	}

	return s
}

// Handler returns the route mux with recovery and logging applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.methodOnly(http.MethodPost, s.handleAnalyze))
	mux.HandleFunc("/upload", s.methodOnly(http.MethodPost, s.handleUpload))
	mux.HandleFunc("/voice", s.methodOnly(http.MethodPost, s.handleVoice))
	mux.HandleFunc("/voices", s.methodOnly(http.MethodGet, s.handleVoices))
	mux.HandleFunc("/memories/stats", s.methodOnly(http.MethodGet, s.handleStats))
	mux.HandleFunc("/memories/summaries", s.methodOnly(http.MethodGet, s.handleSummaries))
	mux.HandleFunc("/memories/search", s.methodOnly(http.MethodGet, s.handleSearch))
	mux.HandleFunc("/memories/prune", s.methodOnly(http.MethodPost, s.handlePrune))
	mux.HandleFunc("/memories/export", s.methodOnly(http.MethodGet, s.handleExport))
	mux.HandleFunc("/memories/import", s.methodOnly(http.MethodPost, s.handleImport))
	return s.recover(mux)
}

// methodOnly rejects every method except the allowed one with a 405 envelope
func (s *Server) methodOnly(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}

// recover converts handler panics into a 500 envelope instead of a dropped
// connection, logging the stack.
func (s *Server) recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Response is the envelope every route answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Error: msg})
}

func writeData(w http.ResponseWriter, data interface{}, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data, Message: message})
}
