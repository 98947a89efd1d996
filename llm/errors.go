package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Failure taxonomy shared by all provider adapters. Provider-specific failure
// signals are translated into these at the adapter boundary; callers match
// with errors.Is.
var (
	ErrInvalidCredential = errors.New("invalid or expired API key")
	ErrQuotaExceeded     = errors.New("provider quota exceeded")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrMalformedResponse = errors.New("provider returned an unparsable response")
)

// classifyStatus maps an HTTP status and response body to the taxonomy.
// A zero return means the failure is unclassified.
func classifyStatus(status int, body string) error {
	switch status {
	case 401, 403:
		return ErrInvalidCredential
	case 402:
		return ErrQuotaExceeded
	case 429:
		if strings.Contains(body, "RESOURCE_EXHAUSTED") || strings.Contains(strings.ToLower(body), "quota") {
			return ErrQuotaExceeded
		}
		return ErrRateLimited
	case 400:
		// Gemini reports bad keys as 400 with a structured reason
		if strings.Contains(body, "API_KEY_INVALID") {
			return ErrInvalidCredential
		}
	}
	return nil
}

// apiError wraps an unclassified provider failure with its status and body
func apiError(provider string, status int, body string) error {
	if err := classifyStatus(status, body); err != nil {
		return fmt.Errorf("%s: %w", provider, err)
	}
	return fmt.Errorf("%s API error (status %d): %s", provider, status, body)
}
