package config

import (
	"go.uber.org/zap"
)

// Source hands out configuration snapshots. Every call returns values that
// reflect the backing store at the time of the call.
type Source interface {
	Snapshot() *Config
}

// FileSource re-reads a YAML file on every Snapshot.
type FileSource struct {
	path      string
	loader    *Loader
	logger    *zap.Logger
	overrides []func(*Config)
}

// NewFileSource creates a Source backed by the file at path.
// Overrides are applied to every snapshot after loading.
func NewFileSource(path string, logger *zap.Logger, overrides ...func(*Config)) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{
		path:      path,
		loader:    NewLoader(logger),
		logger:    logger,
		overrides: overrides,
	}
}

// Snapshot loads the file and returns the resulting configuration.
// Read and parse failures are logged and fall back to defaults.
func (s *FileSource) Snapshot() *Config {
	result, err := s.loader.LoadFromFile(s.path)
	if err != nil {
		s.logger.Warn("failed to load configuration, using defaults", zap.String("path", s.path), zap.Error(err))
		result = &LoadResult{Config: DefaultConfig()}
	}

	for _, loadErr := range result.Errors {
		s.logger.Warn("configuration problem", zap.String("path", s.path), zap.Error(loadErr))
	}

	for _, override := range s.overrides {
		override(result.Config)
	}

	return result.Config
}

// StaticSource always returns a copy of the same configuration.
type StaticSource struct {
	Config *Config
}

// Snapshot returns a copy of the wrapped configuration, or defaults when nil.
func (s StaticSource) Snapshot() *Config {
	if s.Config == nil {
		return DefaultConfig()
	}
	cfg := *s.Config
	cfg.AllowedLanguages = append([]string{}, s.Config.AllowedLanguages...)
	return &cfg
}
