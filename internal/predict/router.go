package predict

import (
	"context"

	"go.uber.org/zap"
)

// Router tries each predictor in order and returns the first non-empty prediction.
type Router struct {
	predictors []Predictor
	logger     *zap.Logger
}

// RouterConfig holds configuration for creating a Router.
type RouterConfig struct {
	// Predictors are consulted in order. Nil entries are skipped.
	Predictors []Predictor

	// Logger for debug output. If nil, a no-op logger is used.
	Logger *zap.Logger
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	predictors := make([]Predictor, 0, len(cfg.Predictors))
	for _, p := range cfg.Predictors {
		if p != nil {
			predictors = append(predictors, p)
		}
	}

	return &Router{
		predictors: predictors,
		logger:     logger,
	}
}

// Predict implements Predictor. A failing predictor is logged and the next one
// is tried; the last error is returned only if nobody produced a prediction.
func (r *Router) Predict(ctx context.Context, input string) (string, error) {
	var lastErr error
	for i, p := range r.predictors {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		prediction, err := p.Predict(ctx, input)
		if err != nil {
			r.logger.Debug("predictor failed", zap.Int("index", i), zap.Error(err))
			lastErr = err
			continue
		}
		if prediction != "" {
			return prediction, nil
		}
	}
	return "", lastErr
}
