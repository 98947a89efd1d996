package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"memorylens/llm"
	"memorylens/store"
	"memorylens/utils"
)

type analyzeRequest struct {
	ImageData string `json:"imageData"`
	APIKey    string `json:"apiKey"`
	PhotoID   string `json:"photoId"`
}

// handleAnalyze runs a photo through the vision provider and records the
// resulting analysis in the store (upserting any prior one for the photo).
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ImageData == "" {
		writeError(w, http.StatusBadRequest, "No image data provided")
		return
	}
	if req.APIKey == "" {
		if s.visionName == "gemini" {
			writeError(w, http.StatusBadRequest, "Gemini API key is required")
		} else {
			writeError(w, http.StatusBadRequest, "API key is required")
		}
		return
	}
	if req.PhotoID == "" {
		writeError(w, http.StatusBadRequest, "Photo ID is required")
		return
	}
	// The key shape check only applies to the backend the factory selects;
	// OpenAI-compatible endpoints accept arbitrary credential formats.
	if s.visionName == "gemini" && !utils.ValidateAPIKey(req.APIKey, utils.ProviderGemini) {
		writeError(w, http.StatusBadRequest, "Invalid Gemini API key format")
		return
	}

	s.store.SetLoadingState("analyze", store.LoadingActive)

	vision := s.newVision(req.APIKey)
	analysis, err := vision.AnalyzePhoto(r.Context(), req.ImageData)
	if err != nil {
		s.store.SetLoadingState("analyze", store.LoadingError)
		s.analyzeError(w, err)
		return
	}

	analysis.PhotoID = req.PhotoID
	s.store.AddAnalysis(*analysis)
	s.store.SetLoadingState("analyze", store.LoadingSuccess)
	s.store.ClearError("analyze")

	writeData(w, map[string]interface{}{"analysis": analysis}, "Photo analyzed successfully")
}

// analyzeError maps a provider failure to the route's status codes and
// records it in the per-key error map.
func (s *Server) analyzeError(w http.ResponseWriter, err error) {
	s.logger.Error("analysis failed: %v", err)

	var status int
	var msg string
	switch {
	case errors.Is(err, llm.ErrInvalidCredential):
		status, msg = http.StatusUnauthorized, "Invalid or expired API key"
	case errors.Is(err, llm.ErrQuotaExceeded):
		status, msg = http.StatusTooManyRequests, "API quota exceeded. Please try again later."
	case errors.Is(err, llm.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, "Rate limit exceeded. Please wait before trying again."
	default:
		status, msg = http.StatusInternalServerError, "Failed to analyze photo. Please check your API key and try again."
	}

	s.store.SetError("analyze", msg)
	writeError(w, status, msg)
}
