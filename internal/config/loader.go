package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of autorun configuration files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	Errors []error
}

// fileDocument is the on-disk layout: every option lives under Namespace.
type fileDocument struct {
	Autorun *Config `yaml:"autorun"`
}

// LoadFromFile loads configuration from a YAML file.
// Returns the configuration and any non-fatal errors encountered.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromString(string(content))
}

// LoadFromString loads configuration from YAML source.
// Parse errors are reported in LoadResult.Errors and defaults are kept.
func (l *Loader) LoadFromString(source string) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	doc := fileDocument{Autorun: DefaultConfig()}
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		return result, nil
	}

	if doc.Autorun != nil {
		result.Config = doc.Autorun
	}

	l.validate(result)

	return result, nil
}

// validate replaces values that cannot be used with their defaults.
func (l *Loader) validate(result *LoadResult) {
	cfg := result.Config
	defaults := DefaultConfig()

	if cfg.SuggestionDelay < 0 {
		result.Errors = append(result.Errors, fmt.Errorf("%s.suggestionDelay must not be negative, got %d", Namespace, cfg.SuggestionDelay))
		cfg.SuggestionDelay = 0
	}

	if cfg.DebounceDelay < 0 {
		result.Errors = append(result.Errors, fmt.Errorf("%s.debounceDelay must not be negative, got %d", Namespace, cfg.DebounceDelay))
		cfg.DebounceDelay = 0
	}

	if cfg.TerminalName == "" {
		cfg.TerminalName = defaults.TerminalName
	}

	if cfg.AllowedLanguages == nil {
		cfg.AllowedLanguages = []string{}
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("%s.logLevel: %w", Namespace, err))
		cfg.LogLevel = defaults.LogLevel
	}

	if cfg.Predict.HistoryLimit <= 0 {
		cfg.Predict.HistoryLimit = defaults.Predict.HistoryLimit
	}

	if cfg.Predict.APIKeyEnv == "" {
		cfg.Predict.APIKeyEnv = defaults.Predict.APIKeyEnv
	}
}
