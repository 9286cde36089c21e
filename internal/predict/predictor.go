// Package predict provides inline suggestions for the editor host.
// Suggestions come from the history of commands autorun already sent to a
// terminal and, when a model is configured, from an OpenAI-compatible
// chat endpoint. A Router coordinates the two.
package predict

import (
	"context"
	"strings"

	"github.com/atinylittleshell/autorun/internal/state"
	"go.uber.org/zap"
)

// Predictor defines the interface for making line predictions.
type Predictor interface {
	// Predict returns a completed line for the given input, or "" when it has
	// nothing to offer. A non-empty prediction always starts with input.
	Predict(ctx context.Context, input string) (prediction string, err error)
}

// HistorySource is the part of the state store history predictions need.
type HistorySource interface {
	GetRecentEntriesByPrefix(prefix string, limit int) ([]state.DispatchEntry, error)
}

// HistoryPredictor predicts the most recent dispatched command that extends the input.
type HistoryPredictor struct {
	source HistorySource
	limit  int
	logger *zap.Logger
}

// NewHistoryPredictor creates a HistoryPredictor. limit bounds the number of
// history rows scanned and defaults to 10.
func NewHistoryPredictor(source HistorySource, limit int, logger *zap.Logger) *HistoryPredictor {
	if limit <= 0 {
		limit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryPredictor{
		source: source,
		limit:  limit,
		logger: logger,
	}
}

// Predict implements Predictor.
func (p *HistoryPredictor) Predict(ctx context.Context, input string) (string, error) {
	if input == "" || p.source == nil {
		return "", nil
	}

	entries, err := p.source.GetRecentEntriesByPrefix(input, p.limit)
	if err != nil {
		return "", err
	}

	// Suggestions must extend the exact input.
	for _, entry := range entries {
		if entry.Command != input && strings.HasPrefix(entry.Command, input) {
			p.logger.Debug("history prediction", zap.String("input", input), zap.String("prediction", entry.Command))
			return entry.Command, nil
		}
	}

	return "", nil
}
