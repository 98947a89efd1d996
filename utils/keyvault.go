package utils

import (
	"encoding/base64"
	"strings"
)

// Provider identifiers accepted by the key vault
const (
	ProviderGemini     = "gemini"
	ProviderElevenLabs = "elevenlabs"
)

const keyMask = "••••••••"

// ObfuscateAPIKey returns a display-only form of a credential: a fixed mask
// followed by the last four characters. Keys shorter than 8 characters get a
// fully masked placeholder with nothing revealed.
func ObfuscateAPIKey(key string) string {
	if len(key) < 8 {
		return keyMask
	}
	return keyMask + key[len(key)-4:]
}

// ValidateAPIKey performs a syntactic sanity check on a credential. It does
// not verify the key against the provider.
func ValidateAPIKey(key, provider string) bool {
	if key == "" {
		return false
	}
	switch provider {
	case ProviderGemini:
		return strings.HasPrefix(key, "AIza") && len(key) > 30
	case ProviderElevenLabs:
		return len(key) > 20
	default:
		return false
	}
}

// EncryptAPIKey encodes a credential for at-rest storage. This is reversible
// base64 obfuscation, not encryption; the stored form must not be treated as
// confidential.
func EncryptAPIKey(key string) string {
	if key == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(key))
}

// DecryptAPIKey decodes a credential stored by EncryptAPIKey. Malformed input
// decodes to the empty string rather than an error.
func DecryptAPIKey(encoded string) string {
	if encoded == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}
	return string(raw)
}
