package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/atinylittleshell/autorun/internal/config"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatClient is the subset of the OpenAI client the LLM predictor uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMPredictor predicts line completions with a chat model.
type LLMPredictor struct {
	client ChatClient
	model  string
	logger *zap.Logger
}

// NewLLMPredictor creates an LLMPredictor using client and model.
func NewLLMPredictor(client ChatClient, model string, logger *zap.Logger) *LLMPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMPredictor{
		client: client,
		model:  model,
		logger: logger,
	}
}

// NewLLMPredictorFromConfig builds an LLMPredictor from configuration. It
// returns nil when no model is configured or the API key variable is unset.
func NewLLMPredictorFromConfig(cfg config.PredictConfig, logger *zap.Logger) *LLMPredictor {
	if cfg.Model == "" {
		return nil
	}

	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" && cfg.BaseURL == "" {
		if logger != nil {
			logger.Warn("predict model configured but API key is missing", zap.String("env", cfg.APIKeyEnv))
		}
		return nil
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return NewLLMPredictor(openai.NewClientWithConfig(clientConfig), cfg.Model, logger)
}

// predictedLineResponse is the expected JSON response from the model.
type predictedLineResponse struct {
	PredictedCommand string `json:"predicted_command"`
}

// Predict implements Predictor.
func (p *LLMPredictor) Predict(ctx context.Context, input string) (string, error) {
	if input == "" || p.client == nil {
		return "", nil
	}

	userMessage := fmt.Sprintf(`You complete shell commands typed into an editor.
You will be given the partial line I typed, enclosed in <prefix> tags.

# Instructions
* Your prediction must start with the partial line as a prefix
* Your prediction must be a valid, single-line, complete shell command

Respond with JSON in this format: {"predicted_command": "your prediction here"}

<prefix>%s</prefix>`, input)

	p.logger.Debug("llm prediction request", zap.String("input", input))

	response, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userMessage,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", nil
	}

	var prediction predictedLineResponse
	content := response.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &prediction); err != nil {
		p.logger.Debug("failed to parse prediction JSON", zap.Error(err), zap.String("content", content))
		return "", nil
	}

	predicted := strings.TrimRight(prediction.PredictedCommand, "\r\n")
	if strings.Contains(predicted, "\n") || !strings.HasPrefix(predicted, input) {
		p.logger.Debug("prediction does not extend input, discarding",
			zap.String("input", input),
			zap.String("prediction", predicted))
		return "", nil
	}

	return predicted, nil
}
