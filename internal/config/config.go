// Package config provides configuration management for autorun.
// It handles loading and parsing of the YAML configuration file,
// applying defaults for every option the file leaves out.
package config

import (
	"time"

	"github.com/samber/lo"
)

// Namespace is the top-level key all autorun options live under.
const Namespace = "autorun"

// Config holds all autorun options. A Config value is a snapshot: callers that
// need current values ask their Source for a new one instead of caching it.
type Config struct {
	// ShowNotifications controls whether enable/disable notifications are shown.
	ShowNotifications bool `yaml:"showNotifications"`

	// AllowedLanguages restricts reactions to documents with these language ids.
	// Empty means every language is allowed.
	AllowedLanguages []string `yaml:"allowedLanguages"`

	// SuggestionDelay is the pause in milliseconds between triggering and
	// committing an inline suggestion.
	SuggestionDelay int `yaml:"suggestionDelay"`

	// DebounceDelay is the quiet period in milliseconds after the last editor
	// event before a reaction runs.
	DebounceDelay int `yaml:"debounceDelay"`

	// EnableOnStartup enables the controller during activation.
	EnableOnStartup bool `yaml:"enableOnStartup"`

	// TerminalName is the name of the dedicated terminal session.
	TerminalName string `yaml:"terminalName"`

	// RequireShellSyntax only sends lines that parse as a shell statement.
	RequireShellSyntax bool `yaml:"requireShellSyntax"`

	// LogLevel controls logging verbosity.
	LogLevel string `yaml:"logLevel"`

	Predict PredictConfig `yaml:"predict"`
}

// PredictConfig configures the inline suggestion providers of the editor host.
type PredictConfig struct {
	// HistoryLimit bounds how many dispatched commands are scanned for a prefix match.
	HistoryLimit int `yaml:"historyLimit"`

	// Model is the chat model used for suggestions. Empty disables LLM suggestions.
	Model string `yaml:"model"`

	// BaseURL overrides the OpenAI-compatible endpoint.
	BaseURL string `yaml:"baseURL"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"apiKeyEnv"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ShowNotifications: true,
		AllowedLanguages:  []string{},
		SuggestionDelay:   200,
		DebounceDelay:     400,
		EnableOnStartup:   false,
		TerminalName:      "AutoRun",
		LogLevel:          "info",
		Predict: PredictConfig{
			HistoryLimit: 10,
			APIKeyEnv:    "OPENAI_API_KEY",
		},
	}
}

// SuggestionDelayDuration returns SuggestionDelay as a time.Duration.
func (c *Config) SuggestionDelayDuration() time.Duration {
	return time.Duration(c.SuggestionDelay) * time.Millisecond
}

// DebounceDelayDuration returns DebounceDelay as a time.Duration.
func (c *Config) DebounceDelayDuration() time.Duration {
	return time.Duration(c.DebounceDelay) * time.Millisecond
}

// LanguageAllowed reports whether reactions may run for the given language id.
func (c *Config) LanguageAllowed(languageID string) bool {
	if len(c.AllowedLanguages) == 0 {
		return true
	}
	return lo.Contains(c.AllowedLanguages, languageID)
}
