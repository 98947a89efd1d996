package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the application configuration
type Config struct {
	Server    ServerConfig              `json:"server"`
	Providers map[string]ProviderConfig `json:"providers"`
	Data      DataConfig                `json:"data"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Addr string `json:"addr"`
}

// ProviderConfig describes one AI provider endpoint
type ProviderConfig struct {
	DisplayName string  `json:"display_name,omitempty"`
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	Enabled     bool    `json:"enabled"`
}

// DataConfig controls where durable state lives
type DataConfig struct {
	StatePath string `json:"state_path"` // .json for a file snapshot, .db for SQLite
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Data.StatePath != "" {
		config.Data.StatePath = expandPath(config.Data.StatePath)
	}
	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(configPath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandPath expands ~ and relative paths
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	absPath, err := filepath.Abs(path)
	if err == nil {
		return absPath
	}
	return path
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./config/default.json"
	}
	return filepath.Join(configDir, "memorylens", "config.json")
}

// EnsureDefaultConfig creates a default config file if it doesn't exist
func EnsureDefaultConfig() (string, error) {
	configPath := GetConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	defaultConfig := &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Providers: map[string]ProviderConfig{
			"gemini": {
				DisplayName: "Gemini",
				BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
				Model:       "gemini-2.5-flash-image-preview",
				MaxTokens:   8192,
				Temperature: 0.7,
				Enabled:     true,
			},
			"openai": {
				DisplayName: "OpenAI Compatible",
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4o",
				MaxTokens:   4096,
				Temperature: 0.7,
				Enabled:     false,
			},
			"elevenlabs": {
				DisplayName: "ElevenLabs",
				BaseURL:     "https://api.elevenlabs.io/v1",
				Model:       "eleven_multilingual_v2",
				Enabled:     true,
			},
		},
		Data: DataConfig{
			StatePath: "./data/memorylens-storage.json",
		},
	}

	if err := SaveConfig(configPath, defaultConfig); err != nil {
		return "", err
	}
	return configPath, nil
}
